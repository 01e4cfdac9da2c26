package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists employees visible to the caller's scope
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee when it is inside the caller's scope
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee creates the login account and the profile (admin+ only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// UpdateEmployee updates organisational fields (admin+ only)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeactivateEmployee disables the employee and their login (admin+ only)
	DeactivateEmployee(ctx context.Context, id string) error

	// ListDirectReports lists employees whose manager is id
	ListDirectReports(ctx context.Context, id string) ([]EmployeeResponse, error)

	GetMyProfile(ctx context.Context) (EmployeeResponse, error)
	UpdateMyProfile(ctx context.Context, req UpdateProfileRequest) (EmployeeResponse, error)
}
