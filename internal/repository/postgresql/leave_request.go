package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.company_id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
	lr.total_days, lr.reason, lr.attachment_url, lr.status, lr.approved_by, lr.approved_at,
	lr.rejection_reason, lr.created_at, lr.updated_at,
	lt.name, e.full_name, e.user_id, e.manager_id
`

const leaveRequestFrom = `
	FROM leave_requests lr
	JOIN leave_types lt ON lt.id = lr.leave_type_id
	JOIN employees e ON e.id = lr.employee_id
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.CompanyID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate,
		&lr.TotalDays, &lr.Reason, &lr.AttachmentURL, &lr.Status, &lr.ApprovedBy, &lr.ApprovedAt,
		&lr.RejectionReason, &lr.CreatedAt, &lr.UpdatedAt,
		&lr.LeaveTypeName, &lr.EmployeeName, &lr.EmployeeUserID, &lr.ManagerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			company_id, employee_id, leave_type_id, start_date, end_date, total_days,
			reason, attachment_url, status, approved_by, approved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query,
		request.CompanyID,
		request.EmployeeID,
		request.LeaveTypeID,
		request.StartDate,
		request.EndDate,
		request.TotalDays,
		request.Reason,
		request.AttachmentURL,
		request.Status,
		request.ApprovedBy,
		request.ApprovedAt,
	).Scan(&id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveRequest(q.QueryRow(ctx, "SELECT "+leaveRequestColumns+leaveRequestFrom+" WHERE lr.id = $1", id))
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, scope access.Scope, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "lr.employee_id", "lr.company_id", "e.manager_id", 1)
	conditions := []string{scopeSQL}

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.LeaveTypeID != nil {
		conditions = append(conditions, fmt.Sprintf("lr.leave_type_id = $%d", argIdx))
		args = append(args, *filter.LeaveTypeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("lr.end_date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("lr.start_date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+leaveRequestFrom+" WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	validSortColumns := map[string]string{
		"start_date":    "lr.start_date",
		"created_at":    "lr.created_at",
		"employee_name": "e.full_name",
		"status":        "lr.status",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "lr.created_at"
	}
	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s, lr.id LIMIT $%d OFFSET $%d`,
		leaveRequestColumns, leaveRequestFrom, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return exists, nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, approvedBy *string, rejectionReason *string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1,
			approved_by = $2,
			approved_at = CASE WHEN $2::uuid IS NULL THEN NULL ELSE NOW() END,
			rejection_reason = $3,
			updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query, status, approvedBy, rejectionReason, id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request status: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if tag.RowsAffected() == 0 {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return current, nil
}
