package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/shopspring/decimal"
)

// SubmitLeaveRequest implements leave.LeaveService. A super_admin's own
// request is approved on insert.
func (s *LeaveServiceImpl) SubmitLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionLeaveCreate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.HasEmployee() || actor.CompanyID == "" {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeProfileRequired
	}

	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if leaveType.CompanyID != actor.CompanyID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeNotFound
	}
	if !leaveType.IsActive {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeInactive
	}
	if leaveType.RequiresAttachment && req.File == nil {
		return leave.LeaveRequestResponse{}, leave.ErrAttachmentRequired
	}

	overlap, err := s.LeaveRequestRepository.HasOverlap(ctx, actor.EmployeeID, req.ParsedStartDate, req.ParsedEndDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	year := req.ParsedStartDate.Year()
	balance, err := s.LeaveBalanceRepository.Get(ctx, actor.EmployeeID, leaveType.ID, year)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if balance != nil && !balance.Covers(req.TotalDays) {
		return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
	}

	var attachmentPath *string
	if req.File != nil {
		p, err := s.fileService.UploadLeaveAttachment(ctx, actor.EmployeeID, req.File, req.FileHeader.Filename)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		attachmentPath = &p
	}

	newRequest := leave.LeaveRequest{
		CompanyID:     actor.CompanyID,
		EmployeeID:    actor.EmployeeID,
		LeaveTypeID:   leaveType.ID,
		StartDate:     req.ParsedStartDate,
		EndDate:       req.ParsedEndDate,
		TotalDays:     req.TotalDays,
		Reason:        req.Reason,
		AttachmentURL: attachmentPath,
		Status:        leave.StatusPending,
	}
	autoApprove := actor.Role == user.RoleSuperAdmin
	if autoApprove {
		now := time.Now()
		newRequest.Status = leave.StatusApproved
		newRequest.ApprovedBy = &actor.UserID
		newRequest.ApprovedAt = &now
	}

	var created leave.LeaveRequest
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.LeaveRequestRepository.Create(ctx, newRequest)
		if err != nil {
			return err
		}
		if autoApprove {
			return s.LeaveBalanceRepository.AddUsedDays(ctx, created.EmployeeID, created.LeaveTypeID, year, decimal.NewFromInt(int64(created.TotalDays)))
		}
		return nil
	})
	if err != nil {
		if attachmentPath != nil {
			if delErr := s.fileService.DeleteFile(ctx, *attachmentPath); delErr != nil {
				slog.Warn("Failed to remove orphaned leave attachment", "path", *attachmentPath, "error", delErr)
			}
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to submit leave request: %w", err)
	}

	slog.Info("Leave request submitted", "leave_request_id", created.ID, "employee_id", created.EmployeeID, "status", created.Status)

	if !autoApprove {
		s.notifyManager(ctx, actor, created, notification.TypeLeaveSubmitted, "New leave request",
			fmt.Sprintf("%s requested %d day(s) of %s", created.EmployeeName, created.TotalDays, created.LeaveTypeName))
	}

	return s.toResponse(ctx, created), nil
}

// ApproveLeaveRequest implements leave.LeaveService. Pending requests do not
// reserve days, so the balance is checked again under the row lock.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	actor, request, err := s.decidable(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var approved leave.LeaveRequest
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		balance, err := s.LeaveBalanceRepository.Get(ctx, request.EmployeeID, request.LeaveTypeID, request.StartDate.Year())
		if err != nil {
			return err
		}
		if balance != nil && !balance.Covers(request.TotalDays) {
			return leave.ErrInsufficientBalance
		}

		approved, err = s.LeaveRequestRepository.UpdateStatus(ctx, request.ID, leave.StatusApproved, &actor.UserID, nil)
		if err != nil {
			return err
		}
		return s.LeaveBalanceRepository.AddUsedDays(ctx, approved.EmployeeID, approved.LeaveTypeID, approved.StartDate.Year(), decimal.NewFromInt(int64(approved.TotalDays)))
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request approved", "leave_request_id", approved.ID, "by", actor.UserID)
	s.notifyDecision(ctx, actor, approved)

	return s.toResponse(ctx, approved), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.RejectLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	actor, request, err := s.decidable(ctx, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	rejected, err := s.LeaveRequestRepository.UpdateStatus(ctx, request.ID, leave.StatusRejected, &actor.UserID, &req.Reason)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request rejected", "leave_request_id", rejected.ID, "by", actor.UserID)
	s.notifyDecision(ctx, actor, rejected)

	return s.toResponse(ctx, rejected), nil
}

// decidable loads a request the actor may approve or reject.
func (s *LeaveServiceImpl) decidable(ctx context.Context, requestID string) (access.Actor, leave.LeaveRequest, error) {
	actor, err := authorize(ctx, user.PermissionLeaveApprove)
	if err != nil {
		return access.Actor{}, leave.LeaveRequest{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return access.Actor{}, leave.LeaveRequest{}, err
	}
	if !access.ScopeFor(actor).Allows(request.Subject()) {
		return access.Actor{}, leave.LeaveRequest{}, access.ErrOutOfScope
	}
	if actor.HasEmployee() && request.EmployeeID == actor.EmployeeID {
		return access.Actor{}, leave.LeaveRequest{}, leave.ErrCannotApproveOwnRequest
	}
	if request.Status != leave.StatusPending {
		return access.Actor{}, leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return actor, request, nil
}

// CancelLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CancelLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.HasEmployee() || request.EmployeeID != actor.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrNotRequestOwner
	}
	if request.Status != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	cancelled, err := s.LeaveRequestRepository.UpdateStatus(ctx, request.ID, leave.StatusCancelled, nil, nil)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifyManager(ctx, actor, cancelled, notification.TypeLeaveCancelled, "Leave request cancelled",
		fmt.Sprintf("%s cancelled a %s request", cancelled.EmployeeName, cancelled.LeaveTypeName))

	return s.toResponse(ctx, cancelled), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	actor, err := session.FromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, access.ScopeFor(actor), filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, s.toResponse(ctx, r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		LeaveRequests: responses,
	}, nil
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !access.ScopeFor(actor).Allows(request.Subject()) {
		return leave.LeaveRequestResponse{}, access.ErrOutOfScope
	}

	return s.toResponse(ctx, request), nil
}

// toResponse maps a request and resolves its attachment path to a URL.
func (s *LeaveServiceImpl) toResponse(ctx context.Context, r leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.ToLeaveRequestResponse(r)
	if r.AttachmentURL != nil && *r.AttachmentURL != "" {
		if url, err := s.fileService.GetFileURL(ctx, *r.AttachmentURL, 0); err == nil {
			resp.AttachmentURL = &url
		}
	}
	return resp
}

// notifyManager tells the employee's reporting manager about a request.
func (s *LeaveServiceImpl) notifyManager(ctx context.Context, actor access.Actor, r leave.LeaveRequest, kind notification.NotificationType, title, message string) {
	if r.ManagerID == nil {
		return
	}
	manager, err := s.EmployeeRepository.GetByID(ctx, *r.ManagerID)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("Failed to load manager for notification", "manager_id", *r.ManagerID, "error", err)
		}
		return
	}
	if manager.UserID == nil {
		return
	}

	err = s.notification.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   r.CompanyID,
		RecipientID: *manager.UserID,
		SenderID:    &actor.UserID,
		Type:        kind,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"leave_request_id": r.ID},
	})
	if err != nil {
		slog.Warn("Failed to queue leave notification", "leave_request_id", r.ID, "error", err)
	}
}

// notifyDecision tells the employee in-app and by email that the request was
// approved or rejected.
func (s *LeaveServiceImpl) notifyDecision(ctx context.Context, actor access.Actor, r leave.LeaveRequest) {
	approved := r.Status == leave.StatusApproved
	kind, title := notification.TypeLeaveRejected, "Leave request rejected"
	if approved {
		kind, title = notification.TypeLeaveApproved, "Leave request approved"
	}

	if r.EmployeeUserID != nil {
		err := s.notification.QueueNotification(ctx, notification.CreateNotificationRequest{
			CompanyID:   r.CompanyID,
			RecipientID: *r.EmployeeUserID,
			SenderID:    &actor.UserID,
			Type:        kind,
			Title:       title,
			Message:     fmt.Sprintf("Your %s request from %s to %s", r.LeaveTypeName, r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02")),
			Data:        map[string]interface{}{"leave_request_id": r.ID, "status": string(r.Status)},
		})
		if err != nil {
			slog.Warn("Failed to queue leave notification", "leave_request_id", r.ID, "error", err)
		}
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, r.EmployeeID)
	if err != nil || emp.Email == "" {
		return
	}
	data := email.LeaveDecisionData{
		EmployeeName:  emp.FullName,
		LeaveTypeName: r.LeaveTypeName,
		StartDate:     r.StartDate.Format("2006-01-02"),
		EndDate:       r.EndDate.Format("2006-01-02"),
		TotalDays:     r.TotalDays,
		Approved:      approved,
	}
	if r.RejectionReason != nil {
		data.Reason = *r.RejectionReason
	}
	go func() {
		if err := s.email.SendLeaveDecision(emp.Email, data); err != nil {
			slog.Error("Failed to send leave decision email", "leave_request_id", r.ID, "error", err)
		}
	}()
}
