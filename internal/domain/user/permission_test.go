package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleEmployee, PermissionAttendanceRecord, true},
		{RoleEmployee, PermissionLeaveApprove, false},
		{RoleEmployee, PermissionAttendanceOverride, false},
		{RoleReportingManager, PermissionLeaveApprove, true},
		{RoleReportingManager, PermissionAttendanceOverride, true},
		{RoleReportingManager, PermissionEmployeeManage, false},
		{RoleAdmin, PermissionEmployeeManage, true},
		{RoleAdmin, PermissionCompanyCreate, false},
		{RoleSuperAdmin, PermissionCompanyCreate, true},
		{RoleSuperAdmin, PermissionLeaveCreate, true},
		{Role("pending"), PermissionViewOwnProfile, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.role, c.permission), "%s / %s", c.role, c.permission)
	}
}

func TestRolePermissionsAreIndependent(t *testing.T) {
	// appending to one role's slice must not leak into another
	assert.NotContains(t, RolePermissions[RoleEmployee], PermissionAttendanceOverride)
	assert.NotContains(t, RolePermissions[RoleReportingManager], PermissionEmployeeManage)
	assert.NotContains(t, RolePermissions[RoleAdmin], PermissionCompanyCreate)
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, CanAssignRole(RoleSuperAdmin, RoleSuperAdmin))
	assert.True(t, CanAssignRole(RoleAdmin, RoleReportingManager))
	assert.True(t, CanAssignRole(RoleAdmin, RoleAdmin))
	assert.False(t, CanAssignRole(RoleAdmin, RoleSuperAdmin))
	assert.False(t, CanAssignRole(RoleReportingManager, RoleEmployee))
	assert.False(t, CanAssignRole(RoleSuperAdmin, Role("owner")))
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleReportingManager.IsValid())
	assert.False(t, Role("manager").IsValid())
}
