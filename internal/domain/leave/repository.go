package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	ListByCompany(ctx context.Context, companyID string, activeOnly bool) ([]LeaveType, error)
	Update(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveType, error)
	Delete(ctx context.Context, id string) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, scope access.Scope, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	// HasOverlap reports whether the employee has a pending or approved request sharing a day with [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// UpdateStatus moves a pending request to status. It returns
	// ErrLeaveRequestAlreadyProcessed when the row is no longer pending.
	UpdateStatus(ctx context.Context, id string, status RequestStatus, approvedBy *string, rejectionReason *string) (LeaveRequest, error)
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	// Get returns nil when no balance row exists. Inside a transaction the
	// row stays locked until commit.
	Get(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	List(ctx context.Context, scope access.Scope, filter LeaveBalanceFilter) ([]LeaveBalance, error)
	Upsert(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	// AddUsedDays increments used_days of an existing row; a missing row is not an error.
	AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	// SeedForEmployee creates a balance for every active type with default days for the year.
	SeedForEmployee(ctx context.Context, companyID, employeeID string, year int) error
}
