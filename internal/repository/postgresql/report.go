package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// AttendanceInRange implements report.ReportRepository.
func (r *reportRepositoryImpl) AttendanceInRange(ctx context.Context, scope access.Scope, start, end time.Time, employeeID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "a.employee_id", "a.company_id", "e.manager_id", 1)
	query := fmt.Sprintf("SELECT %s %s WHERE %s AND a.date BETWEEN $%d AND $%d",
		attendanceColumns, attendanceFrom, scopeSQL, argIdx, argIdx+1)
	args = append(args, start, end)
	argIdx += 2

	if employeeID != nil {
		query += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *employeeID)
	}
	query += " ORDER BY e.full_name, a.date"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// LeaveRequestsInRange implements report.ReportRepository.
func (r *reportRepositoryImpl) LeaveRequestsInRange(ctx context.Context, scope access.Scope, start, end time.Time, status leave.RequestStatus) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "lr.employee_id", "lr.company_id", "e.manager_id", 1)
	query := fmt.Sprintf("SELECT %s %s WHERE %s AND lr.status = $%d AND lr.start_date <= $%d AND lr.end_date >= $%d ORDER BY lr.start_date",
		leaveRequestColumns, leaveRequestFrom, scopeSQL, argIdx, argIdx+1, argIdx+2)
	args = append(args, status, end, start)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave report: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
