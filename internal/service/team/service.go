package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
)

type TeamServiceImpl struct {
	tx postgresql.Transactor
	team.TeamRepository
	employeeRepo employee.EmployeeRepository
}

func NewTeamService(tx postgresql.Transactor, teamRepository team.TeamRepository, employeeRepository employee.EmployeeRepository) team.TeamService {
	return &TeamServiceImpl{
		tx:             tx,
		TeamRepository: teamRepository,
		employeeRepo:   employeeRepository,
	}
}

// managed loads a team the caller administers.
func (s *TeamServiceImpl) managed(ctx context.Context, id string) (access.Actor, team.Team, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, team.Team{}, err
	}
	if !actor.Can(user.PermissionTeamManage) {
		return access.Actor{}, team.Team{}, user.ErrInsufficientPermissions
	}
	t, err := s.TeamRepository.GetByID(ctx, id)
	if err != nil {
		return access.Actor{}, team.Team{}, err
	}
	if !access.ScopeFor(actor).AllowsCompany(t.CompanyID) {
		return access.Actor{}, team.Team{}, team.ErrTeamNotFound
	}
	return actor, t, nil
}

// readable loads a team the caller may see: any team of the company for
// admins, own or led teams otherwise.
func (s *TeamServiceImpl) readable(ctx context.Context, id string) (team.Team, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return team.Team{}, err
	}
	t, err := s.TeamRepository.GetByID(ctx, id)
	if err != nil {
		return team.Team{}, err
	}

	scope := access.ScopeFor(actor)
	if !scope.AllowsCompany(t.CompanyID) {
		return team.Team{}, team.ErrTeamNotFound
	}
	if scope.Kind == access.ScopeSelf || scope.Kind == access.ScopeTeam {
		ok, err := s.TeamRepository.IsVisible(ctx, scope, id)
		if err != nil {
			return team.Team{}, fmt.Errorf("failed to check team visibility: %w", err)
		}
		if !ok {
			return team.Team{}, access.ErrOutOfScope
		}
	}
	return t, nil
}

func (s *TeamServiceImpl) checkLead(ctx context.Context, companyID string, leadID *string) error {
	if leadID == nil || *leadID == "" {
		return nil
	}
	lead, err := s.employeeRepo.GetByID(ctx, *leadID)
	if errors.Is(err, employee.ErrEmployeeNotFound) || (err == nil && lead.CompanyID != companyID) {
		return team.ErrLeadNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get team lead: %w", err)
	}
	return nil
}

// ListTeams implements team.TeamService.
func (s *TeamServiceImpl) ListTeams(ctx context.Context) ([]team.TeamResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	teams, err := s.TeamRepository.List(ctx, access.ScopeFor(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	result := make([]team.TeamResponse, 0, len(teams))
	for _, t := range teams {
		result = append(result, team.ToResponse(t))
	}
	return result, nil
}

// GetTeam implements team.TeamService.
func (s *TeamServiceImpl) GetTeam(ctx context.Context, id string) (team.TeamResponse, error) {
	t, err := s.readable(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return team.ToResponse(t), nil
}

// CreateTeam implements team.TeamService.
func (s *TeamServiceImpl) CreateTeam(ctx context.Context, req team.CreateTeamRequest) (team.TeamResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !actor.Can(user.PermissionTeamManage) {
		return team.TeamResponse{}, user.ErrInsufficientPermissions
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.checkLead(ctx, companyID, req.LeadID); err != nil {
		return team.TeamResponse{}, err
	}

	created, err := s.TeamRepository.Create(ctx, team.Team{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		LeadID:      req.LeadID,
	})
	if err != nil {
		return team.TeamResponse{}, err
	}

	slog.Info("Team created", "team_id", created.ID, "company_id", companyID)
	return team.ToResponse(created), nil
}

// UpdateTeam implements team.TeamService.
func (s *TeamServiceImpl) UpdateTeam(ctx context.Context, req team.UpdateTeamRequest) (team.TeamResponse, error) {
	_, current, err := s.managed(ctx, req.ID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.checkLead(ctx, current.CompanyID, req.LeadID); err != nil {
		return team.TeamResponse{}, err
	}

	updated, err := s.TeamRepository.Update(ctx, req)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return team.ToResponse(updated), nil
}

// DeleteTeam implements team.TeamService. Members keep their profile and
// simply lose the team.
func (s *TeamServiceImpl) DeleteTeam(ctx context.Context, id string) error {
	actor, t, err := s.managed(ctx, id)
	if err != nil {
		return err
	}
	if err := s.TeamRepository.Delete(ctx, t.ID); err != nil {
		return err
	}
	slog.Info("Team deleted", "team_id", t.ID, "deleted_by", actor.UserID)
	return nil
}

// ListMembers implements team.TeamService.
func (s *TeamServiceImpl) ListMembers(ctx context.Context, teamID string) ([]team.MemberResponse, error) {
	t, err := s.readable(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.members(ctx, t.ID)
}

func (s *TeamServiceImpl) members(ctx context.Context, teamID string) ([]team.MemberResponse, error) {
	members, err := s.TeamRepository.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	result := make([]team.MemberResponse, 0, len(members))
	for _, m := range members {
		result = append(result, team.ToMemberResponse(m))
	}
	return result, nil
}

// AddMembers implements team.TeamService. Either every employee is assigned
// or none is.
func (s *TeamServiceImpl) AddMembers(ctx context.Context, req team.MembersRequest) ([]team.MemberResponse, error) {
	_, t, err := s.managed(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := unique(req.EmployeeIDs)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.TeamRepository.AssignMembers(ctx, t.CompanyID, t.ID, ids)
		if err != nil {
			return fmt.Errorf("failed to assign members: %w", err)
		}
		if n != int64(len(ids)) {
			return team.ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.members(ctx, t.ID)
}

// RemoveMembers implements team.TeamService.
func (s *TeamServiceImpl) RemoveMembers(ctx context.Context, req team.MembersRequest) ([]team.MemberResponse, error) {
	_, t, err := s.managed(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := unique(req.EmployeeIDs)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.TeamRepository.RemoveMembers(ctx, t.ID, ids)
		if err != nil {
			return fmt.Errorf("failed to remove members: %w", err)
		}
		if n != int64(len(ids)) {
			return team.ErrMemberNotInTeam
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.members(ctx, t.ID)
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
