package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.company_id, e.user_id, e.employee_code, e.full_name, e.email, e.phone,
	e.department, e.position, e.manager_id, e.team_id, e.hire_date, e.is_active,
	e.created_at, e.updated_at,
	u.role, m.full_name, t.name
`

const employeeJoins = `
	FROM employees e
	LEFT JOIN users u ON u.id = e.user_id
	LEFT JOIN employees m ON m.id = e.manager_id
	LEFT JOIN teams t ON t.id = e.team_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.Email, &emp.Phone,
		&emp.Department, &emp.Position, &emp.ManagerID, &emp.TeamID, &emp.HireDate, &emp.IsActive,
		&emp.CreatedAt, &emp.UpdatedAt,
		&emp.Role, &emp.ManagerName, &emp.TeamName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func (e *employeeRepositoryImpl) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	return scanEmployee(q.QueryRow(ctx, "SELECT "+employeeColumns+employeeJoins+" WHERE e.id = $1", id))
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	return scanEmployee(q.QueryRow(ctx, "SELECT "+employeeColumns+employeeJoins+" WHERE e.user_id = $1", userID))
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			company_id, user_id, employee_code, full_name, email, phone,
			department, position, manager_id, team_id, hire_date, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newEmployee.CompanyID,
		newEmployee.UserID,
		newEmployee.EmployeeCode,
		newEmployee.FullName,
		newEmployee.Email,
		newEmployee.Phone,
		newEmployee.Department,
		newEmployee.Position,
		newEmployee.ManagerID,
		newEmployee.TeamID,
		newEmployee.HireDate,
		newEmployee.IsActive,
	).Scan(&newEmployee.ID, &newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "employees_company_id_employee_code_key"):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case isUniqueViolation(err, "employees_company_id_email_key"):
			return employee.Employee{}, employee.ErrEmailExists
		case isForeignKeyViolation(err, "employees_manager_id_fkey"):
			return employee.Employee{}, employee.ErrManagerNotFound
		case isForeignKeyViolation(err, "fk_employees_team"):
			return employee.Employee{}, employee.ErrTeamNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

// nullableText maps an explicit empty string to NULL so a field can be cleared.
func nullableText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	q := GetQuerier(ctx, e.db)

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1
	set := func(col string, val interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.FullName != nil {
		set("full_name", strings.TrimSpace(*req.FullName))
	}
	if req.EmployeeCode != nil {
		set("employee_code", strings.TrimSpace(*req.EmployeeCode))
	}
	if req.Phone != nil {
		set("phone", nullableText(*req.Phone))
	}
	if req.Department != nil {
		set("department", nullableText(*req.Department))
	}
	if req.Position != nil {
		set("position", nullableText(*req.Position))
	}
	if req.ManagerID != nil {
		set("manager_id", nullableText(*req.ManagerID))
	}
	if req.TeamID != nil {
		set("team_id", nullableText(*req.TeamID))
	}
	if req.HireDate != nil {
		set("hire_date", nullableText(*req.HireDate))
	}

	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	sql := "UPDATE employees SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, id)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err, "employees_company_id_employee_code_key"):
			return employee.ErrEmployeeCodeExists
		case isForeignKeyViolation(err, "employees_manager_id_fkey"):
			return employee.ErrManagerNotFound
		case isForeignKeyViolation(err, "fk_employees_team"):
			return employee.ErrTeamNotFound
		}
		return fmt.Errorf("failed to update employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdateProfile implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateProfile(ctx context.Context, id string, req employee.UpdateProfileRequest) error {
	return e.Update(ctx, id, employee.UpdateEmployeeRequest{ID: id, FullName: req.FullName, Phone: req.Phone})
}

// SetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, scope access.Scope, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	scopeSQL, args, argIdx := scopeCondition(scope, "e.id", "e.company_id", "e.manager_id", 1)
	conditions := []string{scopeSQL}

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.full_name ILIKE $%d OR e.email ILIKE $%d OR e.employee_code ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("e.team_id = $%d", argIdx))
		args = append(args, *filter.TeamID)
		argIdx++
	}
	if filter.ManagerID != nil {
		conditions = append(conditions, fmt.Sprintf("e.manager_id = $%d", argIdx))
		args = append(args, *filter.ManagerID)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees e WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	validSortColumns := map[string]string{
		"full_name":     "e.full_name",
		"employee_code": "e.employee_code",
		"hire_date":     "e.hire_date",
		"created_at":    "e.created_at",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "e.full_name"
	}
	sortOrder := "ASC"
	if strings.ToUpper(filter.SortOrder) == "DESC" {
		sortOrder = "DESC"
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s, e.id LIMIT $%d OFFSET $%d`,
		employeeColumns, employeeJoins, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	employees, err := e.queryEmployees(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListDirectReports implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListDirectReports(ctx context.Context, managerID string) ([]employee.Employee, error) {
	return e.queryEmployees(ctx,
		"SELECT "+employeeColumns+employeeJoins+" WHERE e.manager_id = $1 ORDER BY e.full_name", managerID)
}

// ExistsByCodeOrEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByCodeOrEmail(ctx context.Context, companyID, employeeCode, email string) (bool, bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT
			EXISTS(SELECT 1 FROM employees WHERE company_id = $1 AND employee_code = $2),
			EXISTS(SELECT 1 FROM employees WHERE company_id = $1 AND email = $3)
	`
	var codeExists, emailExists bool
	if err := q.QueryRow(ctx, query, companyID, employeeCode, email).Scan(&codeExists, &emailExists); err != nil {
		return false, false, err
	}
	return codeExists, emailExists, nil
}
