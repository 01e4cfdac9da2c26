package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
)

type AttendanceRepository interface {
	// UpsertCheckIn inserts today's row or fills check_in on an existing one.
	// An existing check_in and its status are kept.
	UpsertCheckIn(ctx context.Context, newAttendance Attendance) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	UpdateCheckOut(ctx context.Context, id string, checkOut time.Time, workMinutes int, notes *string) (Attendance, error)
	// UpsertStatus forces the status of (employee, date), creating the row when missing.
	UpsertStatus(ctx context.Context, override Attendance) (Attendance, error)
	List(ctx context.Context, scope access.Scope, filter AttendanceFilter) ([]Attendance, int64, error)
	// MarkAbsent inserts absent rows for active employees of the company without
	// a record or approved leave on date. Returns the number of rows inserted.
	MarkAbsent(ctx context.Context, companyID string, date time.Time) (int64, error)
}
