package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// CountActiveEmployees implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountActiveEmployees(ctx context.Context, scope access.Scope) (int64, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, _ := scopeCondition(scope, "e.id", "e.company_id", "e.manager_id", 1)
	var count int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees e WHERE e.is_active AND "+scopeSQL, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// StatusCounts implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) StatusCounts(ctx context.Context, scope access.Scope, start, end time.Time) (map[attendance.Status]int, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "a.employee_id", "a.company_id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT a.status, COUNT(*)
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s AND a.date BETWEEN $%d AND $%d
		GROUP BY a.status
	`, scopeSQL, argIdx, argIdx+1)
	args = append(args, start, end)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[attendance.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[attendance.Status(status)] = count
	}
	return counts, rows.Err()
}

// CountOnLeave implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountOnLeave(ctx context.Context, scope access.Scope, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "e.id", "e.company_id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT e.id)
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE %s AND e.is_active AND lr.status = 'approved' AND $%d BETWEEN lr.start_date AND lr.end_date
	`, scopeSQL, argIdx)
	args = append(args, date)

	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees on leave: %w", err)
	}
	return count, nil
}

// CountPendingLeaveRequests implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountPendingLeaveRequests(ctx context.Context, scope access.Scope) (int64, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, _ := scopeCondition(scope, "lr.employee_id", "lr.company_id", "e.manager_id", 1)
	query := `
		SELECT COUNT(*)
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.status = 'pending' AND ` + scopeSQL

	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending leave requests: %w", err)
	}
	return count, nil
}

// SumWorkMinutes implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) SumWorkMinutes(ctx context.Context, scope access.Scope, start, end time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "a.employee_id", "a.company_id", "e.manager_id", 1)
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(a.work_minutes), 0)
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s AND a.date BETWEEN $%d AND $%d
	`, scopeSQL, argIdx, argIdx+1)
	args = append(args, start, end)

	var total int
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum work minutes: %w", err)
	}
	return total, nil
}
