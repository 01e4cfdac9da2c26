package team

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
)

type TeamRepository interface {
	Create(ctx context.Context, newTeam Team) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	// List returns the teams visible to scope: the caller's own team for
	// self, own and led teams for team, every team of the company otherwise.
	List(ctx context.Context, scope access.Scope) ([]Team, error)
	Update(ctx context.Context, req UpdateTeamRequest) (Team, error)
	Delete(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]Member, error)
	// AssignMembers sets team_id on employees of companyID; returns how many rows changed.
	AssignMembers(ctx context.Context, companyID, teamID string, employeeIDs []string) (int64, error)
	RemoveMembers(ctx context.Context, teamID string, employeeIDs []string) (int64, error)
	// IsVisible reports whether scope can see the team (membership or leadership for self/team scopes).
	IsVisible(ctx context.Context, scope access.Scope, teamID string) (bool, error)
}
