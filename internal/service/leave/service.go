package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

type LeaveServiceImpl struct {
	tx postgresql.Transactor
	leave.LeaveTypeRepository
	leave.LeaveRequestRepository
	leave.LeaveBalanceRepository
	employee.EmployeeRepository
	fileService  file.FileService
	notification notification.Service
	email        email.EmailService
}

func NewLeaveService(
	tx postgresql.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	employeeRepository employee.EmployeeRepository,
	fileService file.FileService,
	notificationService notification.Service,
	emailService email.EmailService,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveRequestRepository: leaveRequestRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		EmployeeRepository:     employeeRepository,
		fileService:            fileService,
		notification:           notificationService,
		email:                  emailService,
	}
}

// authorize returns the actor when its role grants p.
func authorize(ctx context.Context, p user.Permission) (access.Actor, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, err
	}
	if !actor.Can(p) {
		return access.Actor{}, user.ErrInsufficientPermissions
	}
	return actor, nil
}

// typeInScope loads a leave type the actor's company owns.
func (s *LeaveServiceImpl) typeInScope(ctx context.Context, actor access.Actor, id string) (leave.LeaveType, error) {
	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveType{}, err
	}
	if !access.ScopeFor(actor).AllowsCompany(leaveType.CompanyID) {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return leaveType, nil
}

// CreateLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionLeaveManageTypes)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	created, err := s.LeaveTypeRepository.Create(ctx, leave.LeaveType{
		CompanyID:          companyID,
		Name:               req.Name,
		Description:        req.Description,
		DefaultDays:        req.DefaultDays,
		RequiresAttachment: req.RequiresAttachment,
		IsActive:           true,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	return leave.ToLeaveTypeResponse(created), nil
}

// UpdateLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionLeaveManageTypes)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	if _, err := s.typeInScope(ctx, actor, req.ID); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	updated, err := s.LeaveTypeRepository.Update(ctx, req)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	return leave.ToLeaveTypeResponse(updated), nil
}

// GetLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveType(ctx context.Context, id string) (leave.LeaveTypeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	leaveType, err := s.typeInScope(ctx, actor, id)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	return leave.ToLeaveTypeResponse(leaveType), nil
}

// ListLeaveTypes implements leave.LeaveService. Inactive types are only
// listed for callers who manage them.
func (s *LeaveServiceImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return nil, err
	}

	types, err := s.LeaveTypeRepository.ListByCompany(ctx, companyID, !actor.Can(user.PermissionLeaveManageTypes))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, leave.ToLeaveTypeResponse(t))
	}
	return responses, nil
}

// DeleteLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) DeleteLeaveType(ctx context.Context, id string) error {
	actor, err := authorize(ctx, user.PermissionLeaveManageTypes)
	if err != nil {
		return err
	}
	if _, err := s.typeInScope(ctx, actor, id); err != nil {
		return err
	}
	return s.LeaveTypeRepository.Delete(ctx, id)
}
