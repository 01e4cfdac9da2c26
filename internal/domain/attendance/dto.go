package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	return validateNotes(r.Notes)
}

type CheckOutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	return validateNotes(r.Notes)
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > 1000 {
		return validator.ValidationErrors{{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		}}
	}
	return nil
}

// OverrideStatusRequest forces the status of one (employee, date) record.
type OverrideStatusRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"` // YYYY-MM-DD
	Status     string  `json:"status"`
	Notes      *string `json:"notes,omitempty"`

	ParsedDate time.Time `json:"-"`
}

func (r *OverrideStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
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

	if !validator.IsInSlice(r.Status, AllStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, late, absent, half_day",
		})
	}

	if err := validateNotes(r.Notes); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	Status       string  `json:"status"`
	WorkMinutes  *int    `json:"work_minutes,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	OverriddenBy *string `json:"overridden_by,omitempty"`
	OverriddenAt *string `json:"overridden_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format("2006-01-02"),
		CheckIn:      timePtrToString(a.CheckIn),
		CheckOut:     timePtrToString(a.CheckOut),
		Status:       string(a.Status),
		WorkMinutes:  a.WorkMinutes,
		Notes:        a.Notes,
		OverriddenBy: a.OverriddenBy,
		OverriddenAt: timePtrToString(a.OverriddenAt),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, check_out, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	errs := validator.ValidatePagination(&f.Page, &f.Limit, &f.SortBy,
		[]string{"date", "employee_name", "check_in", "check_out", "status"}, "date", &f.SortOrder)

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, AllStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, late, absent, half_day",
		})
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value == nil || *value == "" {
			continue
		}
		if _, valid := validator.IsValidDate(*value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
