package company

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"company_name"`
	Username      string    `json:"company_username"`
	Address       *string   `json:"company_address,omitempty"`
	LogoURL       *string   `json:"logo_url,omitempty"`
	EmployeeCount int64     `json:"employee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToResponse(c Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		Username:      c.Username,
		Address:       c.Address,
		LogoURL:       c.LogoURL,
		EmployeeCount: c.EmployeeCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type CreateCompanyRequest struct {
	Name     string  `json:"company_name"`
	Username string  `json:"company_username"`
	Address  *string `json:"company_address,omitempty"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name is required",
		})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_username",
			Message: "company_username is required",
		})
	} else if !validator.IsValidCompanyUsername(r.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_username",
			Message: "company_username must be 3-50 characters of letters, digits, '.', '_' or '-'",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateCompanyRequest struct {
	Name    *string `json:"company_name,omitempty"`
	Address *string `json:"company_address,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "company_name",
				Message: "company_name cannot be empty",
			})
		} else if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "company_name",
				Message: "company_name must not exceed 255 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
