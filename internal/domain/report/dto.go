package report

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE REPORT
// ========================================

type AttendanceReportRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	EmployeeID *string `json:"employee_id,omitempty"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *AttendanceReportRequest) Validate() error {
	errs := validateRange(r.StartDate, r.EndDate, &r.Start, &r.End)

	if r.EmployeeID != nil && !validator.IsValidUUID(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRange parses both dates, defaulting to the current month.
func validateRange(startStr, endStr string, start, end *time.Time) validator.ValidationErrors {
	var errs validator.ValidationErrors

	now := time.Now().UTC()
	*start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	*end = start.AddDate(0, 1, -1)

	if startStr != "" {
		t, ok := validator.IsValidDate(startStr)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		*start = t
	}
	if endStr != "" {
		t, ok := validator.IsValidDate(endStr)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		*end = t
	}
	if len(errs) > 0 {
		return errs
	}

	if end.Before(*start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	} else if end.Sub(*start) > 366*24*time.Hour {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrRangeTooLarge.Error(),
		})
	}
	return errs
}

type AttendanceReport struct {
	PeriodStart string               `json:"period_start"`
	PeriodEnd   string               `json:"period_end"`
	GeneratedAt string               `json:"generated_at"`
	Totals      StatusTotals         `json:"totals"`
	Employees   []EmployeeAttendance `json:"employees"`
}

// ========================================
// LEAVE REPORT
// ========================================

type LeaveReportRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    *string `json:"status,omitempty"` // default approved

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *LeaveReportRequest) Validate() error {
	errs := validateRange(r.StartDate, r.EndDate, &r.Start, &r.End)

	if r.Status == nil {
		approved := string(leave.StatusApproved)
		r.Status = &approved
	} else if !validator.IsInSlice(*r.Status, leave.AllStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, cancelled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveReport struct {
	PeriodStart   string           `json:"period_start"`
	PeriodEnd     string           `json:"period_end"`
	Status        string           `json:"status"`
	GeneratedAt   string           `json:"generated_at"`
	TotalRequests int              `json:"total_requests"`
	TotalDays     int              `json:"total_days"`
	ByType        []LeaveTypeTotal `json:"by_type"`
}
