package team

import "time"

type Team struct {
	ID          string
	CompanyID   string
	Name        string
	Description *string
	LeadID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	LeadName    *string
	MemberCount int64
}

// Member is an employee assigned to a team.
type Member struct {
	EmployeeID   string
	EmployeeCode string
	FullName     string
	Email        string
	Position     *string
	IsActive     bool
}
