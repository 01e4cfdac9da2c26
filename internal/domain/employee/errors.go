package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeCodeExists      = errors.New("employee code already exists")
	ErrEmailExists             = errors.New("email already registered in this company")
	ErrManagerNotFound         = errors.New("manager not found in this company")
	ErrTeamNotFound            = errors.New("team not found in this company")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrCannotDeactivateSelf    = errors.New("cannot deactivate your own employee record")
	ErrRoleNotAssignable       = errors.New("you cannot assign this role")
)
