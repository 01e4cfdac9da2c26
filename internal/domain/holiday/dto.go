package holiday

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD

	ParsedDate time.Time `json:"-"`
}

func (r *CreateHolidayRequest) Validate() error {
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

	if date, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	} else {
		r.ParsedDate = date
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateHolidayRequest struct {
	ID   string  `json:"-"`
	Name *string `json:"name,omitempty"`
	Date *string `json:"date,omitempty"`

	ParsedDate *time.Time `json:"-"`
}

func (r *UpdateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name cannot be empty",
			})
		}
	}

	if r.Date != nil {
		if date, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else {
			r.ParsedDate = &date
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HolidayFilter struct {
	Year *int `json:"year,omitempty"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date.Format("2006-01-02"),
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
		UpdatedAt: h.UpdatedAt.Format(time.RFC3339),
	}
}
