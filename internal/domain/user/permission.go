package user

type Permission string

const (
	// Self service
	PermissionViewOwnProfile   Permission = "profile.view_own"
	PermissionEditOwnProfile   Permission = "profile.edit_own"
	PermissionAttendanceRecord Permission = "attendance.record"
	PermissionLeaveCreate      Permission = "leave.create"

	// Oversight
	PermissionAttendanceOverride Permission = "attendance.override"
	PermissionLeaveApprove       Permission = "leave.approve"
	PermissionReportsView        Permission = "reports.view"
	PermissionDashboardView      Permission = "dashboard.view"

	// Company administration
	PermissionEmployeeManage      Permission = "employee.manage"
	PermissionLeaveManageTypes    Permission = "leave.manage_types"
	PermissionLeaveManageBalances Permission = "leave.manage_balances"
	PermissionTeamManage          Permission = "team.manage"
	PermissionHolidayManage       Permission = "holiday.manage"
	PermissionSettingsManage      Permission = "settings.manage"
	PermissionCompanyManage       Permission = "company.manage"

	// Platform
	PermissionCompanyCreate Permission = "company.create"
)

var employeePermissions = []Permission{
	PermissionViewOwnProfile,
	PermissionEditOwnProfile,
	PermissionAttendanceRecord,
	PermissionLeaveCreate,
}

var managerPermissions = append(append([]Permission{}, employeePermissions...),
	PermissionAttendanceOverride,
	PermissionLeaveApprove,
	PermissionReportsView,
	PermissionDashboardView,
)

var adminPermissions = append(append([]Permission{}, managerPermissions...),
	PermissionEmployeeManage,
	PermissionLeaveManageTypes,
	PermissionLeaveManageBalances,
	PermissionTeamManage,
	PermissionHolidayManage,
	PermissionSettingsManage,
	PermissionCompanyManage,
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee:         employeePermissions,
	RoleReportingManager: managerPermissions,
	RoleAdmin:            adminPermissions,
	RoleSuperAdmin:       append(append([]Permission{}, adminPermissions...), PermissionCompanyCreate),
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// CanAssignRole reports whether actor may create or promote a user into target.
// Admins manage everyone below super_admin; only super_admin creates super_admins.
func CanAssignRole(actor, target Role) bool {
	switch actor {
	case RoleSuperAdmin:
		return target.IsValid()
	case RoleAdmin:
		return target == RoleEmployee || target == RoleReportingManager || target == RoleAdmin
	default:
		return false
	}
}
