package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

const leaveTypeColumns = `
	id, company_id, name, description, default_days, requires_attachment, is_active, created_at, updated_at
`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.CompanyID, &lt.Name, &lt.Description, &lt.DefaultDays,
		&lt.RequiresAttachment, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_types (company_id, name, description, default_days, requires_attachment, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leaveTypeColumns
	created, err := scanLeaveType(q.QueryRow(ctx, query,
		leaveType.CompanyID,
		leaveType.Name,
		leaveType.Description,
		leaveType.DefaultDays,
		leaveType.RequiresAttachment,
		leaveType.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveType(q.QueryRow(ctx, "SELECT "+leaveTypeColumns+" FROM leave_types WHERE id = $1", id))
}

// ListByCompany implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) ListByCompany(ctx context.Context, companyID string, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveTypeColumns + " FROM leave_types WHERE company_id = $1"
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY name"

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

// Update implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1
	set := func(col string, val interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		set("description", nullableText(*req.Description))
	}
	if req.DefaultDays != nil {
		set("default_days", *req.DefaultDays)
	}
	if req.RequiresAttachment != nil {
		set("requires_attachment", *req.RequiresAttachment)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, req.ID)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := "UPDATE leave_types SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", argIdx) + leaveTypeColumns
	args = append(args, req.ID)

	updated, err := scanLeaveType(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err, "") {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		if errors.Is(err, leave.ErrLeaveTypeNotFound) {
			return leave.LeaveType{}, err
		}
		return leave.LeaveType{}, fmt.Errorf("failed to update leave type: %w", err)
	}
	return updated, nil
}

// Delete implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return leave.ErrLeaveTypeInUse
		}
		return fmt.Errorf("failed to delete leave type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveTypeNotFound
	}
	return nil
}
