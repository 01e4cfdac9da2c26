package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

// GetMyBalances implements leave.LeaveService.
func (s *LeaveServiceImpl) GetMyBalances(ctx context.Context, year int) ([]leave.LeaveBalanceResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = time.Now().Year()
	}
	return s.listBalances(ctx, access.SelfScope(actor), leave.LeaveBalanceFilter{Year: year})
}

// ListBalances implements leave.LeaveService.
func (s *LeaveServiceImpl) ListBalances(ctx context.Context, filter leave.LeaveBalanceFilter) ([]leave.LeaveBalanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.listBalances(ctx, access.ScopeFor(actor), filter)
}

func (s *LeaveServiceImpl) listBalances(ctx context.Context, scope access.Scope, filter leave.LeaveBalanceFilter) ([]leave.LeaveBalanceResponse, error) {
	balances, err := s.LeaveBalanceRepository.List(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.ToLeaveBalanceResponse(b))
	}
	return responses, nil
}

// UpsertBalance implements leave.LeaveService. Used days are kept.
func (s *LeaveServiceImpl) UpsertBalance(ctx context.Context, req leave.UpsertLeaveBalanceRequest) (leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionLeaveManageBalances)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	target, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}
	if !access.ScopeFor(actor).Allows(target.Subject()) {
		return leave.LeaveBalanceResponse{}, access.ErrOutOfScope
	}

	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}
	if leaveType.CompanyID != target.CompanyID {
		return leave.LeaveBalanceResponse{}, leave.ErrLeaveTypeNotFound
	}

	balance, err := s.LeaveBalanceRepository.Upsert(ctx, leave.LeaveBalance{
		CompanyID:     target.CompanyID,
		EmployeeID:    target.ID,
		LeaveTypeID:   leaveType.ID,
		Year:          req.Year,
		AllocatedDays: req.AllocatedDays,
	})
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	return leave.ToLeaveBalanceResponse(balance), nil
}
