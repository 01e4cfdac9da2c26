package team

import "context"

type TeamService interface {
	ListTeams(ctx context.Context) ([]TeamResponse, error)
	GetTeam(ctx context.Context, id string) (TeamResponse, error)
	CreateTeam(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	UpdateTeam(ctx context.Context, req UpdateTeamRequest) (TeamResponse, error)
	DeleteTeam(ctx context.Context, id string) error
	ListMembers(ctx context.Context, teamID string) ([]MemberResponse, error)
	AddMembers(ctx context.Context, req MembersRequest) ([]MemberResponse, error)
	RemoveMembers(ctx context.Context, req MembersRequest) ([]MemberResponse, error)
}
