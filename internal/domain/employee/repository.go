package employee

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, scope access.Scope, filter EmployeeFilter) ([]Employee, int64, error)
	ListDirectReports(ctx context.Context, managerID string) ([]Employee, error)
	ExistsByCodeOrEmail(ctx context.Context, companyID, employeeCode, email string) (codeExists bool, emailExists bool, err error)
}
