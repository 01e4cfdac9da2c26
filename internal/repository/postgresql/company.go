package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

const companySelect = `
	SELECT c.id, c.name, c.username, c.address, c.logo_url, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM employees e WHERE e.company_id = c.id AND e.is_active) AS employee_count
	FROM companies c
`

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	err := row.Scan(&c.ID, &c.Name, &c.Username, &c.Address, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt, &c.EmployeeCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, err
	}
	return c, nil
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)
	return scanCompany(q.QueryRow(ctx, companySelect+` WHERE c.id = $1`, id))
}

// List implements company.CompanyRepository.
func (c *companyRepositoryImpl) List(ctx context.Context) ([]company.Company, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, companySelect+` ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []company.Company
	for rows.Next() {
		item, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, item)
	}
	return companies, rows.Err()
}

// ListIDs implements company.CompanyRepository.
func (c *companyRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list company ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO companies (name, username, address)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, newCompany.Name, newCompany.Username, newCompany.Address).
		Scan(&newCompany.ID, &newCompany.CreatedAt, &newCompany.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return company.Company{}, company.ErrCompanyUsernameExists
		}
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return newCompany, nil
}

// Update implements company.CompanyRepository.
func (c *companyRepositoryImpl) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) error {
	q := GetQuerier(ctx, c.db)

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	if req.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Address != nil {
		setClauses = append(setClauses, fmt.Sprintf("address = $%d", argIdx))
		args = append(args, *req.Address)
		argIdx++
	}

	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	sql := "UPDATE companies SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, id)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update company with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// UpdateLogo implements company.CompanyRepository.
func (c *companyRepositoryImpl) UpdateLogo(ctx context.Context, id string, logoURL string) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `UPDATE companies SET logo_url = $1, updated_at = NOW() WHERE id = $2`, logoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update company logo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// ExistsByUsername implements company.CompanyRepository.
func (c *companyRepositoryImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	q := GetQuerier(ctx, c.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
