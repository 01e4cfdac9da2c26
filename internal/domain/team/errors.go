package team

import "errors"

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrTeamNameExists  = errors.New("team name already exists")
	ErrLeadNotFound    = errors.New("team lead not found in this company")
	ErrMemberNotFound  = errors.New("employee not found in this company")
	ErrMemberNotInTeam = errors.New("employee is not a member of this team")
)
