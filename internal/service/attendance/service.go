package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

// SettingsReader loads the raw settings of a company.
type SettingsReader interface {
	Values(ctx context.Context, companyID string) (map[string]string, error)
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	settings     SettingsReader
	notification notification.Service
	now          func() time.Time
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	settingsReader SettingsReader,
	notificationService notification.Service,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		settings:             settingsReader,
		notification:         notificationService,
		now:                  time.Now,
	}
}

func (s *AttendanceServiceImpl) rules(ctx context.Context, companyID string) (settings.AttendanceRules, error) {
	values, err := s.settings.Values(ctx, companyID)
	if err != nil {
		return settings.AttendanceRules{}, fmt.Errorf("failed to load attendance settings: %w", err)
	}
	return settings.RulesFrom(values), nil
}

// recorder returns the caller when it may record its own attendance.
func recorder(ctx context.Context) (access.Actor, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, err
	}
	if !actor.Can(user.PermissionAttendanceRecord) {
		return access.Actor{}, user.ErrInsufficientPermissions
	}
	if !actor.HasEmployee() || actor.CompanyID == "" {
		return access.Actor{}, user.ErrEmployeeProfileRequired
	}
	return actor, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor, err := recorder(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rules, err := s.rules(ctx, actor.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	record, err := s.AttendanceRepository.UpsertCheckIn(ctx, attendance.Attendance{
		CompanyID:  actor.CompanyID,
		EmployeeID: actor.EmployeeID,
		Date:       rules.Today(now),
		CheckIn:    &now,
		Status:     attendance.DeriveStatus(&now, rules.Cutoff, rules.Location),
		Notes:      req.Notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-in: %w", err)
	}

	return attendance.ToResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor, err := recorder(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rules, err := s.rules(ctx, actor.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.EmployeeID, rules.Today(now))
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if today == nil || today.CheckIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if today.CheckOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	record, err := s.AttendanceRepository.UpdateCheckOut(ctx, today.ID, now, attendance.WorkMinutes(*today.CheckIn, now), req.Notes)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	return attendance.ToResponse(record), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context) (*attendance.AttendanceResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.HasEmployee() || actor.CompanyID == "" {
		return nil, nil
	}

	rules, err := s.rules(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	today, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, actor.EmployeeID, rules.Today(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if today == nil {
		return nil, nil
	}

	resp := attendance.ToResponse(*today)
	return &resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, access.SelfScope(actor), filter)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, access.ScopeFor(actor), filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, scope access.Scope, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, scope, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToResponse(r))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !access.ScopeFor(actor).Allows(record.Subject()) {
		return attendance.AttendanceResponse{}, access.ErrOutOfScope
	}

	return attendance.ToResponse(record), nil
}

// OverrideStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) OverrideStatus(ctx context.Context, req attendance.OverrideStatusRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor, err := session.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.Can(user.PermissionAttendanceOverride) {
		return attendance.AttendanceResponse{}, user.ErrInsufficientPermissions
	}

	target, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !access.ScopeFor(actor).Allows(target.Subject()) {
		return attendance.AttendanceResponse{}, access.ErrOutOfScope
	}

	record, err := s.AttendanceRepository.UpsertStatus(ctx, attendance.Attendance{
		CompanyID:    target.CompanyID,
		EmployeeID:   target.ID,
		Date:         req.ParsedDate,
		Status:       attendance.Status(req.Status),
		Notes:        req.Notes,
		OverriddenBy: &actor.UserID,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to override attendance status: %w", err)
	}

	slog.Info("Attendance status overridden",
		"attendance_id", record.ID, "employee_id", target.ID, "status", record.Status, "by", actor.UserID)

	if target.UserID != nil && *target.UserID != actor.UserID {
		err := s.notification.QueueNotification(ctx, notification.CreateNotificationRequest{
			CompanyID:   target.CompanyID,
			RecipientID: *target.UserID,
			SenderID:    &actor.UserID,
			Type:        notification.TypeAttendanceOverridden,
			Title:       "Attendance updated",
			Message:     fmt.Sprintf("Your attendance on %s was set to %s", req.Date, req.Status),
			Data: map[string]interface{}{
				"attendance_id": record.ID,
				"date":          req.Date,
				"status":        req.Status,
			},
		})
		if err != nil {
			slog.Warn("Failed to queue attendance notification", "attendance_id", record.ID, "error", err)
		}
	}

	return attendance.ToResponse(record), nil
}
