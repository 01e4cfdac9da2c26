// Package access decides which rows a caller may see or change.
//
// Every role-scoped read in the service (attendance, leave, employees,
// teams, reports) goes through a Scope built here, so the four-way
// employee / reporting_manager / admin / super_admin rule lives in one place.
package access

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID     string
	Email      string
	EmployeeID string // empty for accounts without an employee profile
	CompanyID  string // empty for a super_admin without a tenant selected
	Role       user.Role
}

// HasEmployee reports whether the actor has an employee profile.
func (a Actor) HasEmployee() bool {
	return a.EmployeeID != ""
}

// Can reports whether the actor's role grants permission p.
func (a Actor) Can(p user.Permission) bool {
	return user.HasPermission(a.Role, p)
}

type ScopeKind int

const (
	ScopeNone    ScopeKind = iota // matches nothing
	ScopeSelf                     // employee_id = EmployeeID
	ScopeTeam                     // self or manager_id = EmployeeID, inside CompanyID
	ScopeCompany                  // company_id = CompanyID
	ScopeAll                      // every company
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeSelf:
		return "self"
	case ScopeTeam:
		return "team"
	case ScopeCompany:
		return "company"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// Scope is the set of rows an actor may read.
type Scope struct {
	Kind       ScopeKind
	EmployeeID string
	CompanyID  string
}

// Subject is the ownership data of one row being checked against a scope.
type Subject struct {
	EmployeeID string
	CompanyID  string
	ManagerID  *string // manager of EmployeeID
}

// ScopeFor derives the read scope of an actor from its role.
func ScopeFor(a Actor) Scope {
	switch a.Role {
	case user.RoleEmployee:
		if !a.HasEmployee() {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeSelf, EmployeeID: a.EmployeeID, CompanyID: a.CompanyID}
	case user.RoleReportingManager:
		if !a.HasEmployee() {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeTeam, EmployeeID: a.EmployeeID, CompanyID: a.CompanyID}
	case user.RoleAdmin:
		if a.CompanyID == "" {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeCompany, CompanyID: a.CompanyID}
	case user.RoleSuperAdmin:
		if a.CompanyID != "" {
			return Scope{Kind: ScopeCompany, CompanyID: a.CompanyID}
		}
		return Scope{Kind: ScopeAll}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// SelfScope narrows any actor to their own rows.
func SelfScope(a Actor) Scope {
	if !a.HasEmployee() {
		return Scope{Kind: ScopeNone}
	}
	return Scope{Kind: ScopeSelf, EmployeeID: a.EmployeeID, CompanyID: a.CompanyID}
}

// Allows reports whether a single row owned by s falls inside the scope.
func (sc Scope) Allows(s Subject) bool {
	switch sc.Kind {
	case ScopeSelf:
		return s.EmployeeID == sc.EmployeeID
	case ScopeTeam:
		if s.EmployeeID == sc.EmployeeID {
			return true
		}
		if sc.CompanyID != "" && s.CompanyID != sc.CompanyID {
			return false
		}
		return s.ManagerID != nil && *s.ManagerID == sc.EmployeeID
	case ScopeCompany:
		return s.CompanyID == sc.CompanyID
	case ScopeAll:
		return true
	default:
		return false
	}
}

// AllowsCompany reports whether the scope can touch company-level records
// (leave types, holidays, settings) of companyID.
func (sc Scope) AllowsCompany(companyID string) bool {
	switch sc.Kind {
	case ScopeAll:
		return true
	case ScopeNone:
		return false
	default:
		return sc.CompanyID == companyID
	}
}
