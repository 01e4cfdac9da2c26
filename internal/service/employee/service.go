package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	tx                  postgresql.Transactor
	employeeRepo        employee.EmployeeRepository
	userRepo            user.UserRepository
	teamRepo            team.TeamRepository
	companyRepo         company.CompanyRepository
	leaveBalanceRepo    leave.LeaveBalanceRepository
	notificationService notification.Service
	emailService        email.EmailService
	frontendURL         string
	now                 func() time.Time
}

func NewEmployeeService(
	tx postgresql.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	teamRepo team.TeamRepository,
	companyRepo company.CompanyRepository,
	leaveBalanceRepo leave.LeaveBalanceRepository,
	notificationService notification.Service,
	emailService email.EmailService,
	frontendURL string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:                  tx,
		employeeRepo:        employeeRepo,
		userRepo:            userRepo,
		teamRepo:            teamRepo,
		companyRepo:         companyRepo,
		leaveBalanceRepo:    leaveBalanceRepo,
		notificationService: notificationService,
		emailService:        emailService,
		frontendURL:         frontendURL,
		now:                 time.Now,
	}
}

func (s *EmployeeServiceImpl) manager(ctx context.Context) (access.Actor, string, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, "", err
	}
	if !actor.Can(user.PermissionEmployeeManage) {
		return access.Actor{}, "", user.ErrInsufficientPermissions
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return access.Actor{}, "", err
	}
	return actor, companyID, nil
}

// visible loads an employee and checks it against the caller's scope.
func (s *EmployeeServiceImpl) visible(ctx context.Context, actor access.Actor, id string) (employee.Employee, error) {
	target, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !access.ScopeFor(actor).Allows(target.Subject()) {
		return employee.Employee{}, access.ErrOutOfScope
	}
	return target, nil
}

// checkRelations verifies that a manager and a team belong to companyID.
// Empty strings clear the relation and are always allowed.
func (s *EmployeeServiceImpl) checkRelations(ctx context.Context, companyID string, managerID, teamID *string) error {
	if managerID != nil && *managerID != "" {
		mgr, err := s.employeeRepo.GetByID(ctx, *managerID)
		if errors.Is(err, employee.ErrEmployeeNotFound) || (err == nil && (mgr.CompanyID != companyID || !mgr.IsActive)) {
			return employee.ErrManagerNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get manager: %w", err)
		}
	}
	if teamID != nil && *teamID != "" {
		t, err := s.teamRepo.GetByID(ctx, *teamID)
		if errors.Is(err, team.ErrTeamNotFound) || (err == nil && t.CompanyID != companyID) {
			return employee.ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get team: %w", err)
		}
	}
	return nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, access.ScopeFor(actor), filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}
	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	target, err := s.visible(ctx, actor, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(target), nil
}

// CreateEmployee implements employee.EmployeeService. Without a password the
// new user receives a welcome email with a link to set one.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	actor, companyID, err := s.manager(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	role := user.Role(req.Role)
	if !user.CanAssignRole(actor.Role, role) {
		return employee.EmployeeResponse{}, employee.ErrRoleNotAssignable
	}

	codeExists, emailExists, err := s.employeeRepo.ExistsByCodeOrEmail(ctx, companyID, req.EmployeeCode, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee uniqueness: %w", err)
	}
	if codeExists {
		return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
	}
	if emailExists {
		return employee.EmployeeResponse{}, employee.ErrEmailExists
	}
	userExists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check user email: %w", err)
	}
	if userExists {
		return employee.EmployeeResponse{}, user.ErrUserEmailExists
	}
	if err := s.checkRelations(ctx, companyID, req.ManagerID, req.TeamID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var passwordHash *string
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	var hireDate *time.Time
	if req.HireDate != nil && *req.HireDate != "" {
		d, _ := validator.IsValidDate(*req.HireDate)
		hireDate = &d
	}
	year := s.now().Year()
	if hireDate != nil && hireDate.Year() > year {
		year = hireDate.Year()
	}

	var (
		created      employee.Employee
		resetToken   string
		resetExpires time.Time
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		account, err := s.userRepo.Create(ctx, user.User{
			CompanyID:    &companyID,
			Email:        req.Email,
			PasswordHash: passwordHash,
			Role:         role,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			CompanyID:    companyID,
			UserID:       &account.ID,
			EmployeeCode: req.EmployeeCode,
			FullName:     req.FullName,
			Email:        req.Email,
			Phone:        req.Phone,
			Department:   req.Department,
			Position:     req.Position,
			ManagerID:    emptyToNil(req.ManagerID),
			TeamID:       emptyToNil(req.TeamID),
			HireDate:     hireDate,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		if err := s.leaveBalanceRepo.SeedForEmployee(ctx, companyID, created.ID, year); err != nil {
			return fmt.Errorf("failed to seed leave balances: %w", err)
		}

		if passwordHash == nil {
			raw, hash, err := auth.NewResetToken()
			if err != nil {
				return err
			}
			resetExpires = s.now().Add(auth.SetPasswordLinkTTL)
			if err := s.userRepo.SetPasswordResetToken(ctx, account.ID, hash, resetExpires); err != nil {
				return fmt.Errorf("failed to store set-password token: %w", err)
			}
			resetToken = raw
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "company_id", companyID, "role", role, "created_by", actor.UserID)

	if resetToken != "" {
		s.sendWelcome(ctx, companyID, created, resetToken, resetExpires)
	}
	s.notifyManager(ctx, actor, created)

	full, err := s.employeeRepo.GetByID(ctx, created.ID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to reload employee: %w", err)
	}
	return employee.ToResponse(full), nil
}

func (s *EmployeeServiceImpl) sendWelcome(ctx context.Context, companyID string, e employee.Employee, token string, expiresAt time.Time) {
	companyName := ""
	if c, err := s.companyRepo.GetByID(ctx, companyID); err == nil {
		companyName = c.Name
	}
	link := auth.PasswordLink(s.frontendURL, "/set-password", token)
	go func() {
		if err := s.emailService.SendWelcome(e.Email, e.FullName, companyName, link, expiresAt.Format(time.RFC1123)); err != nil {
			slog.Error("Failed to send welcome email", "employee_id", e.ID, "error", err)
		}
	}()
}

func (s *EmployeeServiceImpl) notifyManager(ctx context.Context, actor access.Actor, e employee.Employee) {
	if e.ManagerID == nil {
		return
	}
	mgr, err := s.employeeRepo.GetByID(ctx, *e.ManagerID)
	if err != nil || mgr.UserID == nil || *mgr.UserID == actor.UserID {
		return
	}
	err = s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   e.CompanyID,
		RecipientID: *mgr.UserID,
		SenderID:    &actor.UserID,
		Type:        notification.TypeEmployeeCreated,
		Title:       "New direct report",
		Message:     fmt.Sprintf("%s now reports to you", e.FullName),
		Data:        map[string]interface{}{"employee_id": e.ID},
	})
	if err != nil {
		slog.Warn("Failed to queue notification", "employee_id", e.ID, "error", err)
	}
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	actor, companyID, err := s.manager(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	target, err := s.visible(ctx, actor, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	// Nobody edits an account above what they could have created
	if target.Role != nil && !user.CanAssignRole(actor.Role, *target.Role) {
		return employee.EmployeeResponse{}, employee.ErrRoleNotAssignable
	}
	if req.Role != nil && !user.CanAssignRole(actor.Role, user.Role(*req.Role)) {
		return employee.EmployeeResponse{}, employee.ErrRoleNotAssignable
	}
	if err := s.checkRelations(ctx, companyID, req.ManagerID, req.TeamID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.Update(ctx, target.ID, req); err != nil {
			return err
		}
		if req.Role != nil && target.UserID != nil {
			if err := s.userRepo.UpdateRole(ctx, *target.UserID, user.Role(*req.Role)); err != nil {
				return fmt.Errorf("failed to update role: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, target.ID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to reload employee: %w", err)
	}
	return employee.ToResponse(updated), nil
}

// DeactivateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, id string) error {
	actor, _, err := s.manager(ctx)
	if err != nil {
		return err
	}
	if actor.EmployeeID == id {
		return employee.ErrCannotDeactivateSelf
	}

	target, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return employee.ErrEmployeeAlreadyInactive
	}
	if target.Role != nil && !user.CanAssignRole(actor.Role, *target.Role) {
		return employee.ErrRoleNotAssignable
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.SetActive(ctx, target.ID, false); err != nil {
			return err
		}
		if target.UserID != nil {
			if err := s.userRepo.SetActive(ctx, *target.UserID, false); err != nil {
				return fmt.Errorf("failed to deactivate user: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Employee deactivated", "employee_id", target.ID, "deactivated_by", actor.UserID)
	return nil
}

// ListDirectReports implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListDirectReports(ctx context.Context, id string) ([]employee.EmployeeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.visible(ctx, actor, id); err != nil {
		return nil, err
	}

	reports, err := s.employeeRepo.ListDirectReports(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct reports: %w", err)
	}

	scope := access.ScopeFor(actor)
	result := make([]employee.EmployeeResponse, 0, len(reports))
	for _, r := range reports {
		if scope.Allows(r.Subject()) {
			result = append(result, employee.ToResponse(r))
		}
	}
	return result, nil
}

// GetMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyProfile(ctx context.Context) (employee.EmployeeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !actor.HasEmployee() {
		return employee.EmployeeResponse{}, user.ErrEmployeeProfileRequired
	}

	me, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(me), nil
}

// UpdateMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !actor.Can(user.PermissionEditOwnProfile) {
		return employee.EmployeeResponse{}, user.ErrInsufficientPermissions
	}
	if !actor.HasEmployee() {
		return employee.EmployeeResponse{}, user.ErrEmployeeProfileRequired
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateProfile(ctx, actor.EmployeeID, req); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetMyProfile(ctx)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
