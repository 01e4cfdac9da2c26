package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// DashboardRepository runs the aggregate queries behind the dashboards. Every
// query is restricted to the scope it is given.
type DashboardRepository interface {
	CountActiveEmployees(ctx context.Context, scope access.Scope) (int64, error)
	StatusCounts(ctx context.Context, scope access.Scope, start, end time.Time) (map[attendance.Status]int, error)
	// CountOnLeave counts active employees with approved leave covering date.
	CountOnLeave(ctx context.Context, scope access.Scope, date time.Time) (int64, error)
	CountPendingLeaveRequests(ctx context.Context, scope access.Scope) (int64, error)
	SumWorkMinutes(ctx context.Context, scope access.Scope, start, end time.Time) (int, error)
}
