package leave

import (
	"mime/multipart"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// LEAVE TYPE DTOs
// ========================================

type CreateLeaveTypeRequest struct {
	Name               string          `json:"name"`
	Description        *string         `json:"description,omitempty"`
	DefaultDays        decimal.Decimal `json:"default_days"`
	RequiresAttachment bool            `json:"requires_attachment"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 128 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 128 characters",
		})
	}
	if r.DefaultDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_days",
			Message: "default_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID                 string           `json:"-"`
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	DefaultDays        *decimal.Decimal `json:"default_days,omitempty"`
	RequiresAttachment *bool            `json:"requires_attachment,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 128 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 128 characters",
			})
		}
	}

	if r.DefaultDays != nil && r.DefaultDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_days",
			Message: "default_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveTypeResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        *string         `json:"description,omitempty"`
	DefaultDays        decimal.Decimal `json:"default_days"`
	RequiresAttachment bool            `json:"requires_attachment"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

func ToLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Description:        t.Description,
		DefaultDays:        t.DefaultDays,
		RequiresAttachment: t.RequiresAttachment,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
}

// ========================================
// LEAVE REQUEST DTOs
// ========================================

type CreateLeaveRequestRequest struct {
	LeaveTypeID string  `json:"leave_type_id"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`   // YYYY-MM-DD
	Reason      *string `json:"reason,omitempty"`

	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`

	// Set by Validate
	ParsedStartDate time.Time `json:"-"`
	ParsedEndDate   time.Time `json:"-"`
	TotalDays       int       `json:"-"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	} else if !validator.IsValidUUID(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		days, err := LeaveDays(start, end)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: err.Error(),
			})
		} else {
			r.ParsedStartDate = start
			r.ParsedEndDate = end
			r.TotalDays = days
		}
	}

	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if r.FileHeader != nil && r.FileHeader.Size > 5<<20 {
		errs = append(errs, validator.ValidationError{
			Field:   "attachment",
			Message: "attachment must not exceed 5MB",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectLeaveRequestRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	LeaveTypeID     string  `json:"leave_type_id"`
	LeaveTypeName   string  `json:"leave_type_name,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          *string `json:"reason,omitempty"`
	AttachmentURL   *string `json:"attachment_url,omitempty"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		LeaveTypeID:     r.LeaveTypeID,
		LeaveTypeName:   r.LeaveTypeName,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		TotalDays:       r.TotalDays,
		Reason:          r.Reason,
		AttachmentURL:   r.AttachmentURL,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		approvedAt := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &approvedAt
	}
	return resp
}

type LeaveRequestFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	LeaveTypeID *string `json:"leave_type_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	StartDate   *string `json:"start_date,omitempty"` // requests ending on or after
	EndDate     *string `json:"end_date,omitempty"`   // requests starting on or before

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"` // start_date, created_at, employee_name, status
	SortOrder string `json:"sort_order"`
}

func (f *LeaveRequestFilter) Validate() error {
	errs := validator.ValidatePagination(&f.Page, &f.Limit, &f.SortBy,
		[]string{"start_date", "created_at", "employee_name", "status"}, "created_at", &f.SortOrder)

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if f.LeaveTypeID != nil && !validator.IsValidUUID(*f.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, AllStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, cancelled",
		})
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}

// ========================================
// LEAVE BALANCE DTOs
// ========================================

type UpsertLeaveBalanceRequest struct {
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	Year          int             `json:"year"`
	AllocatedDays decimal.Decimal `json:"allocated_days"`
}

func (r *UpsertLeaveBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if !validator.IsValidUUID(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if r.AllocatedDays.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "allocated_days",
			Message: "allocated_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveBalanceFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	LeaveTypeID *string `json:"leave_type_id,omitempty"`
	Year        int     `json:"year"`
}

func (f *LeaveBalanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Year == 0 {
		f.Year = time.Now().Year()
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if f.LeaveTypeID != nil && !validator.IsValidUUID(*f.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveBalanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name,omitempty"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeName string          `json:"leave_type_name"`
	Year          int             `json:"year"`
	AllocatedDays decimal.Decimal `json:"allocated_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
}

func ToLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		ID:            b.ID,
		EmployeeID:    b.EmployeeID,
		EmployeeName:  b.EmployeeName,
		LeaveTypeID:   b.LeaveTypeID,
		LeaveTypeName: b.LeaveTypeName,
		Year:          b.Year,
		AllocatedDays: b.AllocatedDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.Remaining(),
	}
}
