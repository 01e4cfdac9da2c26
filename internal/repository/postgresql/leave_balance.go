package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	lb.id, lb.company_id, lb.employee_id, lb.leave_type_id, lb.year,
	lb.allocated_days, lb.used_days, lb.created_at, lb.updated_at,
	lt.name, e.full_name, e.manager_id
`

const leaveBalanceFrom = `
	FROM leave_balances lb
	JOIN leave_types lt ON lt.id = lb.leave_type_id
	JOIN employees e ON e.id = lb.employee_id
`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.AllocatedDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
		&b.LeaveTypeName, &b.EmployeeName, &b.ManagerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// Get implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveBalanceColumns + leaveBalanceFrom +
		" WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3"
	if inTransaction(ctx) {
		query += " FOR UPDATE OF lb"
	}
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, leave.ErrLeaveBalanceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// List implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) List(ctx context.Context, scope access.Scope, filter leave.LeaveBalanceFilter) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "lb.employee_id", "lb.company_id", "e.manager_id", 1)
	conditions := []string{scopeSQL, fmt.Sprintf("lb.year = $%d", argIdx)}
	args = append(args, filter.Year)
	argIdx++

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("lb.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.LeaveTypeID != nil {
		conditions = append(conditions, fmt.Sprintf("lb.leave_type_id = $%d", argIdx))
		args = append(args, *filter.LeaveTypeID)
	}

	query := "SELECT " + leaveBalanceColumns + leaveBalanceFrom +
		" WHERE " + strings.Join(conditions, " AND ") + " ORDER BY e.full_name, lt.name"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Upsert implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Upsert(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (company_id, employee_id, leave_type_id, year, allocated_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, leave_type_id, year) DO UPDATE SET
			allocated_days = EXCLUDED.allocated_days,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query, balance.CompanyID, balance.EmployeeID, balance.LeaveTypeID, balance.Year, balance.AllocatedDays)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to upsert leave balance: %w", err)
	}

	stored, err := r.Get(ctx, balance.EmployeeID, balance.LeaveTypeID, balance.Year)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	if stored == nil {
		return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
	}
	return *stored, nil
}

// AddUsedDays implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days = used_days + $1, updated_at = NOW()
		WHERE employee_id = $2 AND leave_type_id = $3 AND year = $4
	`
	if _, err := q.Exec(ctx, query, days, employeeID, leaveTypeID, year); err != nil {
		return fmt.Errorf("failed to update used leave days: %w", err)
	}
	return nil
}

// SeedForEmployee implements leave.LeaveBalanceRepository. Types with zero
// default days get no row and therefore stay unlimited.
func (r *leaveBalanceRepositoryImpl) SeedForEmployee(ctx context.Context, companyID, employeeID string, year int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (company_id, employee_id, leave_type_id, year, allocated_days)
		SELECT lt.company_id, $2, lt.id, $3, lt.default_days
		FROM leave_types lt
		WHERE lt.company_id = $1 AND lt.is_active AND lt.default_days > 0
		ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, companyID, employeeID, year); err != nil {
		return fmt.Errorf("failed to seed leave balances: %w", err)
	}
	return nil
}
