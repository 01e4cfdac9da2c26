package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	companyservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/company"
	"golang.org/x/crypto/bcrypt"
)

var ErrAlreadySeeded = errors.New("demo company already exists")

// Service creates the accounts that cannot be created through the API: the
// first super_admin and the development demo tenant.
type Service struct {
	tx               postgresql.Transactor
	userRepo         user.UserRepository
	companyRepo      company.CompanyRepository
	employeeRepo     employee.EmployeeRepository
	leaveTypeRepo    leave.LeaveTypeRepository
	leaveBalanceRepo leave.LeaveBalanceRepository
	settingsRepo     settings.SettingsRepository
	now              func() time.Time
}

func NewService(
	tx postgresql.Transactor,
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	leaveTypeRepo leave.LeaveTypeRepository,
	leaveBalanceRepo leave.LeaveBalanceRepository,
	settingsRepo settings.SettingsRepository,
) *Service {
	return &Service{
		tx:               tx,
		userRepo:         userRepo,
		companyRepo:      companyRepo,
		employeeRepo:     employeeRepo,
		leaveTypeRepo:    leaveTypeRepo,
		leaveBalanceRepo: leaveBalanceRepo,
		settingsRepo:     settingsRepo,
		now:              time.Now,
	}
}

// CreateSuperAdmin creates a super_admin login without a company or profile.
func (s *Service) CreateSuperAdmin(ctx context.Context, email, password string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var errs validator.ValidationErrors
	if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if len(password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(errs) > 0 {
		return user.User{}, errs
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.User{}, user.ErrUserEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	created, err := s.userRepo.Create(ctx, user.User{
		Email:        email,
		PasswordHash: &passwordHash,
		Role:         user.RoleSuperAdmin,
		IsActive:     true,
	})
	if err != nil {
		return user.User{}, fmt.Errorf("failed to create super admin: %w", err)
	}

	slog.Info("Super admin created", "user_id", created.ID, "email", email)
	return created, nil
}

// DemoResult summarises what SeedDemo created.
type DemoResult struct {
	CompanyID string
	Accounts  []string
}

// SeedDemo creates the demo company with one demo account per role, all
// sharing fixtures.DemoPassword. It fails with ErrAlreadySeeded when the
// demo company exists.
func (s *Service) SeedDemo(ctx context.Context) (DemoResult, error) {
	exists, err := s.companyRepo.ExistsByUsername(ctx, fixtures.DemoCompanyUsername)
	if err != nil {
		return DemoResult{}, fmt.Errorf("failed to check demo company: %w", err)
	}
	if exists {
		return DemoResult{}, ErrAlreadySeeded
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(fixtures.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return DemoResult{}, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	var result DemoResult
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		demoCompany, err := s.companyRepo.Create(ctx, company.Company{
			Name:     fixtures.DemoCompanyName,
			Username: fixtures.DemoCompanyUsername,
		})
		if err != nil {
			return fmt.Errorf("failed to create demo company: %w", err)
		}
		if err := companyservice.SeedDefaults(ctx, s.leaveTypeRepo, s.settingsRepo, demoCompany.ID); err != nil {
			return err
		}
		result.CompanyID = demoCompany.ID

		hireDate := s.now().UTC().Truncate(24 * time.Hour)
		idByCode := make(map[string]string)
		for _, account := range fixtures.GetDemoAccounts() {
			newUser := user.User{
				Email:        account.Email,
				PasswordHash: &passwordHash,
				Role:         account.Role,
				IsActive:     true,
				IsDemo:       true,
			}
			if account.Role != user.RoleSuperAdmin {
				newUser.CompanyID = &demoCompany.ID
			}
			created, err := s.userRepo.Create(ctx, newUser)
			if err != nil {
				return fmt.Errorf("failed to create demo user %s: %w", account.Email, err)
			}
			result.Accounts = append(result.Accounts, account.Email)

			if account.EmployeeCode == "" {
				continue
			}
			profile := employee.Employee{
				CompanyID:    demoCompany.ID,
				UserID:       &created.ID,
				EmployeeCode: account.EmployeeCode,
				FullName:     account.FullName,
				Email:        account.Email,
				Department:   &account.Department,
				Position:     &account.Position,
				HireDate:     &hireDate,
				IsActive:     true,
			}
			if managerID, ok := idByCode[account.ManagerCode]; ok {
				profile.ManagerID = &managerID
			}
			profile, err = s.employeeRepo.Create(ctx, profile)
			if err != nil {
				return fmt.Errorf("failed to create demo employee %s: %w", account.EmployeeCode, err)
			}
			idByCode[account.EmployeeCode] = profile.ID

			if err := s.leaveBalanceRepo.SeedForEmployee(ctx, demoCompany.ID, profile.ID, hireDate.Year()); err != nil {
				return fmt.Errorf("failed to seed leave balances: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return DemoResult{}, err
	}

	slog.Info("Demo company seeded", "company_id", result.CompanyID, "accounts", len(result.Accounts))
	return result, nil
}
