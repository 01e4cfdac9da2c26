package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, company_id, name, date, created_at, updated_at`

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	if err := row.Scan(&h.ID, &h.CompanyID, &h.Name, &h.Date, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, err
	}
	return h, nil
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, newHoliday holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanHoliday(q.QueryRow(ctx,
		`INSERT INTO holidays (company_id, name, date) VALUES ($1, $2, $3) RETURNING `+holidayColumns,
		newHoliday.CompanyID, newHoliday.Name, newHoliday.Date,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return holiday.Holiday{}, holiday.ErrHolidayDateExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	return scanHoliday(q.QueryRow(ctx, "SELECT "+holidayColumns+" FROM holidays WHERE id = $1", id))
}

// List implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, companyID string, filter holiday.HolidayFilter) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + holidayColumns + " FROM holidays WHERE company_id = $1"
	args := []interface{}{companyID}
	if filter.Year != nil {
		query += " AND EXTRACT(YEAR FROM date) = $2"
		args = append(args, *filter.Year)
	}
	query += " ORDER BY date"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// Update implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Update(ctx context.Context, req holiday.UpdateHolidayRequest) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	if req.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, strings.TrimSpace(*req.Name))
		argIdx++
	}
	if req.ParsedDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", argIdx))
		args = append(args, *req.ParsedDate)
		argIdx++
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, req.ID)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := "UPDATE holidays SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", argIdx) + holidayColumns
	args = append(args, req.ID)

	updated, err := scanHoliday(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err, "") {
			return holiday.Holiday{}, holiday.ErrHolidayDateExists
		}
		if errors.Is(err, holiday.ErrHolidayNotFound) {
			return holiday.Holiday{}, err
		}
		return holiday.Holiday{}, fmt.Errorf("failed to update holiday: %w", err)
	}
	return updated, nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

// IsHoliday implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM holidays WHERE company_id = $1 AND date = $2)`, companyID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return exists, nil
}
