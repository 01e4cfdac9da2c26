package leave

import "errors"

var (
	ErrLeaveTypeNotFound            = errors.New("leave type not found")
	ErrLeaveTypeNameExists          = errors.New("leave type name already exists")
	ErrLeaveTypeInactive            = errors.New("leave type is not active")
	ErrLeaveTypeInUse               = errors.New("leave type is used by existing requests")
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveBalanceNotFound         = errors.New("leave balance not found")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrOverlappingLeave             = errors.New("leave request overlaps an existing request")
	ErrAttachmentRequired           = errors.New("this leave type requires an attachment")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrCannotApproveOwnRequest      = errors.New("you cannot approve or reject your own leave request")
	ErrNotRequestOwner              = errors.New("only the requester can cancel this leave request")
)
