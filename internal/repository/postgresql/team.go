package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamSelect = `
	SELECT t.id, t.company_id, t.name, t.description, t.lead_id, t.created_at, t.updated_at,
	       l.full_name,
	       (SELECT COUNT(*) FROM employees m WHERE m.team_id = t.id) AS member_count
	FROM teams t
	LEFT JOIN employees l ON l.id = t.lead_id
`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &t.LeadID, &t.CreatedAt, &t.UpdatedAt, &t.LeadName, &t.MemberCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, err
	}
	return t, nil
}

func mapTeamWriteError(err error) error {
	switch {
	case isUniqueViolation(err, ""):
		return team.ErrTeamNameExists
	case isForeignKeyViolation(err, "teams_lead_id_fkey"):
		return team.ErrLeadNotFound
	}
	return err
}

// teamVisibility renders which teams a scope may see. Self sees the team it
// belongs to or leads; team also sees teams of its direct reports.
func teamVisibility(scope access.Scope, argIdx int) (string, []interface{}, int) {
	switch scope.Kind {
	case access.ScopeSelf, access.ScopeTeam:
		cond := fmt.Sprintf(`(t.lead_id = $%[1]d OR t.id = (SELECT team_id FROM employees WHERE id = $%[1]d)`, argIdx)
		if scope.Kind == access.ScopeTeam {
			cond += fmt.Sprintf(` OR EXISTS (SELECT 1 FROM employees r WHERE r.team_id = t.id AND r.manager_id = $%d)`, argIdx)
		}
		return cond + ")", []interface{}{scope.EmployeeID}, argIdx + 1
	default:
		return companyCondition(scope, "t.company_id", argIdx)
	}
}

// Create implements team.TeamRepository.
func (r *teamRepositoryImpl) Create(ctx context.Context, newTeam team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx,
		`INSERT INTO teams (company_id, name, description, lead_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		newTeam.CompanyID, newTeam.Name, newTeam.Description, newTeam.LeadID,
	).Scan(&id)
	if err != nil {
		if mapped := mapTeamWriteError(err); mapped != err {
			return team.Team{}, mapped
		}
		return team.Team{}, fmt.Errorf("failed to create team: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)
	return scanTeam(q.QueryRow(ctx, teamSelect+" WHERE t.id = $1", id))
}

// List implements team.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context, scope access.Scope) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	cond, args, _ := teamVisibility(scope, 1)
	rows, err := q.Query(ctx, teamSelect+" WHERE "+cond+" ORDER BY t.name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Update implements team.TeamRepository.
func (r *teamRepositoryImpl) Update(ctx context.Context, req team.UpdateTeamRequest) (team.Team, error) {
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
	if req.LeadID != nil {
		set("lead_id", nullableText(*req.LeadID))
	}

	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = NOW()")
		sql := "UPDATE teams SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argIdx)
		args = append(args, req.ID)

		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			if mapped := mapTeamWriteError(err); mapped != err {
				return team.Team{}, mapped
			}
			return team.Team{}, fmt.Errorf("failed to update team: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return team.Team{}, team.ErrTeamNotFound
		}
	}
	return r.GetByID(ctx, req.ID)
}

// Delete implements team.TeamRepository. Members keep their rows with team_id cleared.
func (r *teamRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrTeamNotFound
	}
	return nil
}

// ListMembers implements team.TeamRepository.
func (r *teamRepositoryImpl) ListMembers(ctx context.Context, teamID string) ([]team.Member, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_code, full_name, email, position, is_active
		FROM employees
		WHERE team_id = $1
		ORDER BY full_name
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []team.Member
	for rows.Next() {
		var m team.Member
		if err := rows.Scan(&m.EmployeeID, &m.EmployeeCode, &m.FullName, &m.Email, &m.Position, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AssignMembers implements team.TeamRepository.
func (r *teamRepositoryImpl) AssignMembers(ctx context.Context, companyID, teamID string, employeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET team_id = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = ANY($3)
	`, teamID, companyID, employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to assign team members: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RemoveMembers implements team.TeamRepository.
func (r *teamRepositoryImpl) RemoveMembers(ctx context.Context, teamID string, employeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET team_id = NULL, updated_at = NOW()
		WHERE team_id = $1 AND id = ANY($2)
	`, teamID, employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to remove team members: %w", err)
	}
	return tag.RowsAffected(), nil
}

// IsVisible implements team.TeamRepository.
func (r *teamRepositoryImpl) IsVisible(ctx context.Context, scope access.Scope, teamID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	cond, args, argIdx := teamVisibility(scope, 1)
	args = append(args, teamID)

	var visible bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM teams t WHERE t.id = $%d AND %s)`, argIdx, cond)
	if err := q.QueryRow(ctx, query, args...).Scan(&visible); err != nil {
		return false, fmt.Errorf("failed to check team visibility: %w", err)
	}
	return visible, nil
}
