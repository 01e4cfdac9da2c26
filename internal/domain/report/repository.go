package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

type ReportRepository interface {
	// AttendanceInRange returns every scoped attendance row dated within [start, end].
	AttendanceInRange(ctx context.Context, scope access.Scope, start, end time.Time, employeeID *string) ([]attendance.Attendance, error)
	// LeaveRequestsInRange returns scoped requests with the given status overlapping [start, end].
	LeaveRequestsInRange(ctx context.Context, scope access.Scope, start, end time.Time, status leave.RequestStatus) ([]leave.LeaveRequest, error)
}
