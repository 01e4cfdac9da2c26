package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID                 string
	CompanyID          string
	Name               string
	Description        *string
	DefaultDays        decimal.Decimal
	RequiresAttachment bool
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

func AllStatuses() []string {
	return []string{string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCancelled)}
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	Reason        *string
	AttachmentURL *string

	Status          RequestStatus
	ApprovedBy      *string // user id
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName  string
	EmployeeName   string
	EmployeeUserID *string
	ManagerID      *string
}

func (r LeaveRequest) Subject() access.Subject {
	return access.Subject{EmployeeID: r.EmployeeID, CompanyID: r.CompanyID, ManagerID: r.ManagerID}
}

// LeaveBalance is the allocation of one leave type to one employee for a year.
type LeaveBalance struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	LeaveTypeID   string
	Year          int
	AllocatedDays decimal.Decimal
	UsedDays      decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships (for responses)
	LeaveTypeName string
	EmployeeName  string
	ManagerID     *string
}

// Remaining returns allocated minus used days.
func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.AllocatedDays.Sub(b.UsedDays)
}

// Covers reports whether the balance has at least days left.
func (b LeaveBalance) Covers(days int) bool {
	return b.Remaining().GreaterThanOrEqual(decimal.NewFromInt(int64(days)))
}

func (b LeaveBalance) Subject() access.Subject {
	return access.Subject{EmployeeID: b.EmployeeID, CompanyID: b.CompanyID, ManagerID: b.ManagerID}
}
