package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrUserInactive            = errors.New("user account is disabled")
	ErrInvalidRole             = errors.New("invalid role")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrSuperAdminRequired      = errors.New("super admin access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrEmployeeProfileRequired = errors.New("an employee profile is required for this action")
)
