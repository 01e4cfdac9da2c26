package user

import "time"

type Role string

const (
	RoleEmployee         Role = "employee"          // Regular employee, sees own rows
	RoleReportingManager Role = "reporting_manager" // Sees self and direct reports
	RoleAdmin            Role = "admin"             // Company-wide access
	RoleSuperAdmin       Role = "super_admin"       // Every company
)

// AllRoles returns the roles in ascending order of privilege.
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleReportingManager, RoleAdmin, RoleSuperAdmin}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, role := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID                     string
	CompanyID              *string
	Email                  string
	PasswordHash           *string
	Role                   Role
	GoogleID               *string
	IsActive               bool
	IsDemo                 bool
	PasswordResetTokenHash *string
	PasswordResetExpiresAt *time.Time
	LastLoginAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time

	// DTO / Join
	EmployeeID *string
	FullName   *string
}

// IsAdmin checks if user manages a whole company or more
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsManager checks if user can approve for others
func (u *User) IsManager() bool {
	return u.Role == RoleReportingManager || u.IsAdmin()
}
