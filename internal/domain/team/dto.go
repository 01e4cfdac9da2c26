package team

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateTeamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	LeadID      *string `json:"lead_id,omitempty"`
}

func (r *CreateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 128 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 128 characters",
		})
	}

	if r.LeadID != nil && !validator.IsValidUUID(*r.LeadID) {
		errs = append(errs, validator.ValidationError{
			Field:   "lead_id",
			Message: "lead_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateTeamRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	LeadID      *string `json:"lead_id,omitempty"`
}

func (r *UpdateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name cannot be empty",
			})
		} else if len(*r.Name) > 128 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 128 characters",
			})
		}
	}

	if r.LeadID != nil && !validator.IsValidUUID(*r.LeadID) {
		errs = append(errs, validator.ValidationError{
			Field:   "lead_id",
			Message: "lead_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MembersRequest adds or removes employees from a team.
type MembersRequest struct {
	TeamID      string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *MembersRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "employee_ids must contain at least one id",
		})
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids",
				Message: "employee_ids must contain valid UUIDs",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TeamResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	LeadID      *string `json:"lead_id,omitempty"`
	LeadName    *string `json:"lead_name,omitempty"`
	MemberCount int64   `json:"member_count"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func ToResponse(t Team) TeamResponse {
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		LeadID:      t.LeadID,
		LeadName:    t.LeadName,
		MemberCount: t.MemberCount,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

type MemberResponse struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeCode string  `json:"employee_code"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Position     *string `json:"position,omitempty"`
	IsActive     bool    `json:"is_active"`
}

func ToMemberResponse(m Member) MemberResponse {
	return MemberResponse{
		EmployeeID:   m.EmployeeID,
		EmployeeCode: m.EmployeeCode,
		FullName:     m.FullName,
		Email:        m.Email,
		Position:     m.Position,
		IsActive:     m.IsActive,
	}
}
