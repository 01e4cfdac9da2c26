package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.company_id, a.employee_id, a.date, a.check_in, a.check_out, a.status,
	a.work_minutes, a.notes, a.overridden_by, a.overridden_at, a.created_at, a.updated_at,
	e.full_name, e.employee_code, e.department, e.manager_id
`

const attendanceFrom = `
	FROM attendance a
	JOIN employees e ON e.id = a.employee_id
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status,
		&a.WorkMinutes, &a.Notes, &a.OverriddenBy, &a.OverriddenAt, &a.CreatedAt, &a.UpdatedAt,
		&a.EmployeeName, &a.EmployeeCode, &a.Department, &a.ManagerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	return scanAttendance(q.QueryRow(ctx, "SELECT "+attendanceColumns+attendanceFrom+where, args...))
}

// UpsertCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpsertCheckIn(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (company_id, employee_id, date, check_in, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = COALESCE(attendance.check_in, EXCLUDED.check_in),
			status = CASE WHEN attendance.check_in IS NULL THEN EXCLUDED.status ELSE attendance.status END,
			notes = COALESCE(EXCLUDED.notes, attendance.notes),
			updated_at = NOW()
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		newAttendance.CompanyID,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.Status,
		newAttendance.Notes,
	).Scan(&id)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to record check-in: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	a, err := r.getOne(ctx, " WHERE a.employee_id = $1 AND a.date = $2", employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.getOne(ctx, " WHERE a.id = $1", id)
}

// UpdateCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpdateCheckOut(ctx context.Context, id string, checkOut time.Time, workMinutes int, notes *string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance
		SET check_out = $1, work_minutes = $2, notes = COALESCE($3, notes), updated_at = NOW()
		WHERE id = $4 AND check_in IS NOT NULL AND check_out IS NULL
	`
	tag, err := q.Exec(ctx, query, checkOut, workMinutes, notes, id)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	return r.GetByID(ctx, id)
}

// UpsertStatus implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpsertStatus(ctx context.Context, override attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (company_id, employee_id, date, status, notes, overridden_by, overridden_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			notes = COALESCE(EXCLUDED.notes, attendance.notes),
			overridden_by = EXCLUDED.overridden_by,
			overridden_at = EXCLUDED.overridden_at,
			updated_at = NOW()
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		override.CompanyID,
		override.EmployeeID,
		override.Date,
		override.Status,
		override.Notes,
		override.OverriddenBy,
	).Scan(&id)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to override attendance: %w", err)
	}
	return r.GetByID(ctx, id)
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, scope access.Scope, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "a.employee_id", "a.company_id", "e.manager_id", 1)
	conditions := []string{scopeSQL}

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+attendanceFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	validSortColumns := map[string]string{
		"date":          "a.date",
		"employee_name": "e.full_name",
		"check_in":      "a.check_in",
		"check_out":     "a.check_out",
		"status":        "a.status",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "a.date"
	}
	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s NULLS LAST, e.full_name ASC LIMIT $%d OFFSET $%d`,
		attendanceColumns, attendanceFrom, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MarkAbsent(ctx context.Context, companyID string, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (company_id, employee_id, date, status)
		SELECT e.company_id, e.id, $2::date, 'absent'
		FROM employees e
		WHERE e.company_id = $1
		  AND e.is_active
		  AND (e.hire_date IS NULL OR e.hire_date <= $2::date)
		  AND NOT EXISTS (
			SELECT 1 FROM leave_requests lr
			WHERE lr.employee_id = e.id
			  AND lr.status = 'approved'
			  AND $2::date BETWEEN lr.start_date AND lr.end_date
		  )
		ON CONFLICT (employee_id, date) DO NOTHING
	`
	tag, err := q.Exec(ctx, query, companyID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to mark absent employees: %w", err)
	}
	return tag.RowsAffected(), nil
}
