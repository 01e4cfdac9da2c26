package leave

import (
	"context"
)

type LeaveService interface {
	// Type
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	UpdateLeaveType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetLeaveType(ctx context.Context, id string) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)
	DeleteLeaveType(ctx context.Context, id string) error
	// Request
	SubmitLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, req RejectLeaveRequestRequest) (LeaveRequestResponse, error)
	CancelLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	// Balance
	GetMyBalances(ctx context.Context, year int) ([]LeaveBalanceResponse, error)
	ListBalances(ctx context.Context, filter LeaveBalanceFilter) ([]LeaveBalanceResponse, error)
	UpsertBalance(ctx context.Context, req UpsertLeaveBalanceRequest) (LeaveBalanceResponse, error)
}
