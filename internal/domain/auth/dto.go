package auth

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

func validateEmail(errs validator.ValidationErrors, email string) validator.ValidationErrors {
	if validator.IsEmpty(email) {
		return append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if len(email) > 254 {
		return append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	}
	if !validator.IsValidEmail(email) {
		return append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address, e.g. user@example.com",
		})
	}
	return errs
}

func validatePassword(errs validator.ValidationErrors, field, password string) validator.ValidationErrors {
	if validator.IsEmpty(password) {
		return append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " is required",
		})
	}
	if len(password) < 8 {
		return append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be at least 8 characters long",
		})
	}
	if len(password) > 72 {
		return append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must not exceed 72 characters",
		})
	}
	return errs
}

func validateConfirmation(errs validator.ValidationErrors, password, confirm string) validator.ValidationErrors {
	if validator.IsEmpty(confirm) {
		return append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password is required",
		})
	}
	if confirm != password {
		return append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}
	return errs
}

// RegisterRequest signs up a new company together with its first admin.
type RegisterRequest struct {
	CompanyName     string `json:"company_name"`
	CompanyUsername string `json:"company_username"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.FullName = strings.TrimSpace(r.FullName)

	// Company
	if validator.IsEmpty(r.CompanyName) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name is required",
		})
	} else if len(r.CompanyName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name must not exceed 255 characters",
		})
	}
	if !validator.IsValidCompanyUsername(r.CompanyUsername) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_username",
			Message: "company_username must be 3-50 characters of letters, numbers, dots, underscores, and hyphens",
		})
	}

	// Admin profile
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

	errs = validateEmail(errs, r.Email)
	errs = validatePassword(errs, "password", r.Password)
	errs = validateConfirmation(errs, r.Password, r.ConfirmPassword)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	errs = validateEmail(errs, r.Email)
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DemoLoginRequest picks one of the seeded demo accounts by role.
type DemoLoginRequest struct {
	Role string `json:"role"`
}

func (r *DemoLoginRequest) Validate() error {
	if !user.Role(r.Role).IsValid() {
		return validator.ValidationErrors{{
			Field:   "role",
			Message: "role must be one of: employee, reporting_manager, admin, super_admin",
		}}
	}
	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}
	if len(r.RefreshToken) > 2048 {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token must not exceed 2048 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	errs = validateEmail(errs, r.Email)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	}
	errs = validatePassword(errs, "password", r.Password)
	errs = validateConfirmation(errs, r.Password, r.ConfirmPassword)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

// MeResponse describes the signed-in account.
type MeResponse struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	CompanyID   *string  `json:"company_id,omitempty"`
	EmployeeID  *string  `json:"employee_id,omitempty"`
	FullName    *string  `json:"full_name,omitempty"`
	IsDemo      bool     `json:"is_demo"`
	Permissions []string `json:"permissions"`
}
