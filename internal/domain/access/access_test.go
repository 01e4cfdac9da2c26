package access

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestScopeFor(t *testing.T) {
	cases := []struct {
		name  string
		actor Actor
		want  Scope
	}{
		{
			name:  "employee sees self",
			actor: Actor{Role: user.RoleEmployee, EmployeeID: "e1", CompanyID: "c1"},
			want:  Scope{Kind: ScopeSelf, EmployeeID: "e1", CompanyID: "c1"},
		},
		{
			name:  "employee without profile sees nothing",
			actor: Actor{Role: user.RoleEmployee, CompanyID: "c1"},
			want:  Scope{Kind: ScopeNone},
		},
		{
			name:  "manager sees team",
			actor: Actor{Role: user.RoleReportingManager, EmployeeID: "m1", CompanyID: "c1"},
			want:  Scope{Kind: ScopeTeam, EmployeeID: "m1", CompanyID: "c1"},
		},
		{
			name:  "admin sees company",
			actor: Actor{Role: user.RoleAdmin, EmployeeID: "a1", CompanyID: "c1"},
			want:  Scope{Kind: ScopeCompany, CompanyID: "c1"},
		},
		{
			name:  "super admin sees all",
			actor: Actor{Role: user.RoleSuperAdmin},
			want:  Scope{Kind: ScopeAll},
		},
		{
			name:  "super admin with tenant sees tenant",
			actor: Actor{Role: user.RoleSuperAdmin, CompanyID: "c2"},
			want:  Scope{Kind: ScopeCompany, CompanyID: "c2"},
		},
		{
			name:  "unknown role sees nothing",
			actor: Actor{Role: user.Role("owner"), EmployeeID: "x", CompanyID: "c1"},
			want:  Scope{Kind: ScopeNone},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ScopeFor(c.actor))
		})
	}
}

func TestScopeAllows(t *testing.T) {
	own := Subject{EmployeeID: "e1", CompanyID: "c1", ManagerID: strPtr("m1")}
	report := Subject{EmployeeID: "e2", CompanyID: "c1", ManagerID: strPtr("m1")}
	peer := Subject{EmployeeID: "e3", CompanyID: "c1", ManagerID: strPtr("m2")}
	manager := Subject{EmployeeID: "m1", CompanyID: "c1"}
	foreign := Subject{EmployeeID: "e9", CompanyID: "c2", ManagerID: strPtr("m1")}

	self := Scope{Kind: ScopeSelf, EmployeeID: "e1", CompanyID: "c1"}
	assert.True(t, self.Allows(own))
	assert.False(t, self.Allows(report))

	team := Scope{Kind: ScopeTeam, EmployeeID: "m1", CompanyID: "c1"}
	assert.True(t, team.Allows(manager), "manager sees own rows")
	assert.True(t, team.Allows(own), "direct report")
	assert.True(t, team.Allows(report), "direct report")
	assert.False(t, team.Allows(peer), "someone else's report")
	assert.False(t, team.Allows(foreign), "other company")

	company := Scope{Kind: ScopeCompany, CompanyID: "c1"}
	assert.True(t, company.Allows(peer))
	assert.False(t, company.Allows(foreign))

	assert.True(t, Scope{Kind: ScopeAll}.Allows(foreign))
	assert.False(t, Scope{Kind: ScopeNone}.Allows(own))
}

func TestScopeAllowsCompany(t *testing.T) {
	assert.True(t, Scope{Kind: ScopeAll}.AllowsCompany("c9"))
	assert.True(t, Scope{Kind: ScopeCompany, CompanyID: "c1"}.AllowsCompany("c1"))
	assert.False(t, Scope{Kind: ScopeCompany, CompanyID: "c1"}.AllowsCompany("c2"))
	assert.True(t, Scope{Kind: ScopeSelf, EmployeeID: "e1", CompanyID: "c1"}.AllowsCompany("c1"))
	assert.False(t, Scope{Kind: ScopeNone}.AllowsCompany(""))
}

func TestSelfScope(t *testing.T) {
	a := Actor{Role: user.RoleAdmin, EmployeeID: "a1", CompanyID: "c1"}
	assert.Equal(t, Scope{Kind: ScopeSelf, EmployeeID: "a1", CompanyID: "c1"}, SelfScope(a))
	assert.Equal(t, ScopeNone, SelfScope(Actor{Role: user.RoleSuperAdmin}).Kind)
}
