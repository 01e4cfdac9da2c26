package employee

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// EMPLOYEE DTOs
// ========================================

type EmployeeResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	UserID       *string `json:"user_id,omitempty"`
	EmployeeCode string  `json:"employee_code"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	Department   *string `json:"department,omitempty"`
	Position     *string `json:"position,omitempty"`
	Role         *string `json:"role,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	ManagerName  *string `json:"manager_name,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
	TeamName     *string `json:"team_name,omitempty"`
	HireDate     *string `json:"hire_date,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		UserID:       e.UserID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		Email:        e.Email,
		Phone:        e.Phone,
		Department:   e.Department,
		Position:     e.Position,
		ManagerID:    e.ManagerID,
		ManagerName:  e.ManagerName,
		TeamID:       e.TeamID,
		TeamName:     e.TeamName,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.Role != nil {
		role := string(*e.Role)
		resp.Role = &role
	}
	if e.HireDate != nil {
		hireDate := e.HireDate.Format("2006-01-02")
		resp.HireDate = &hireDate
	}
	return resp
}

// CreateEmployeeRequest is the body of the create-employee function: it
// creates the login account and the employee profile together.
type CreateEmployeeRequest struct {
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Password     *string `json:"password,omitempty"`
	Role         string  `json:"role"`
	EmployeeCode string  `json:"employee_code"`
	Phone        *string `json:"phone,omitempty"`
	Department   *string `json:"department,omitempty"`
	Position     *string `json:"position,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
	HireDate     *string `json:"hire_date,omitempty"` // YYYY-MM-DD
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	} else if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 255 characters",
		})
	}

	if r.Password != nil && len(*r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}
	if !user.Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, reporting_manager, admin, super_admin",
		})
	}

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	} else if len(r.EmployeeCode) > 32 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must not exceed 32 characters",
		})
	}

	errs = append(errs, validateProfileFields(r.Phone, r.ManagerID, r.TeamID, r.HireDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEmployeeRequest struct {
	ID           string  `json:"-"`
	FullName     *string `json:"full_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Department   *string `json:"department,omitempty"`
	Position     *string `json:"position,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
	HireDate     *string `json:"hire_date,omitempty"`
	Role         *string `json:"role,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name cannot be empty",
		})
	}

	if r.EmployeeCode != nil && validator.IsEmpty(*r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code cannot be empty",
		})
	}

	if r.Role != nil && !user.Role(*r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, reporting_manager, admin, super_admin",
		})
	}

	if r.ManagerID != nil && *r.ManagerID == r.ID {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "an employee cannot be their own manager",
		})
	}

	errs = append(errs, validateProfileFields(r.Phone, r.ManagerID, r.TeamID, r.HireDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateProfileRequest is the self-service subset of employee fields.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FullName == nil && r.Phone == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one of full_name, phone is required",
		})
	}
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name cannot be empty",
		})
	}
	errs = append(errs, validateProfileFields(r.Phone, nil, nil, nil)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateProfileFields(phone, managerID, teamID, hireDate *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "invalid phone number",
		})
	}
	if managerID != nil && *managerID != "" && !validator.IsValidUUID(*managerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}
	if teamID != nil && *teamID != "" && !validator.IsValidUUID(*teamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id must be a valid UUID",
		})
	}
	if hireDate != nil && *hireDate != "" {
		if _, ok := validator.IsValidDate(*hireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hire_date",
				Message: "hire_date must be in YYYY-MM-DD format",
			})
		}
	}
	return errs
}

type EmployeeFilter struct {
	Search     *string `json:"search,omitempty"` // name, email or code
	Department *string `json:"department,omitempty"`
	TeamID     *string `json:"team_id,omitempty"`
	ManagerID  *string `json:"manager_id,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // full_name, employee_code, hire_date, created_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *EmployeeFilter) Validate() error {
	errs := validator.ValidatePagination(&f.Page, &f.Limit, &f.SortBy,
		[]string{"full_name", "employee_code", "hire_date", "created_at"}, "full_name", &f.SortOrder)

	if f.TeamID != nil && !validator.IsValidUUID(*f.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id must be a valid UUID",
		})
	}
	if f.ManagerID != nil && !validator.IsValidUUID(*f.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
