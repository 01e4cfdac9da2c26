package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	companyservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/company"
	"golang.org/x/crypto/bcrypt"
)

// founderEmployeeCode is the employee code of the admin created on registration.
const founderEmployeeCode = "EMP-0001"

type AuthServiceImpl struct {
	tx postgresql.Transactor
	user.UserRepository
	company.CompanyRepository
	employee.EmployeeRepository
	jwt.Service
	postgresql.JWTRepository

	leaveTypeRepo    leave.LeaveTypeRepository
	leaveBalanceRepo leave.LeaveBalanceRepository
	settingsRepo     settings.SettingsRepository
	email            email.EmailService

	frontendURL   string
	demoEnabled   bool
	googleEnabled bool
	now           func() time.Time
}

func NewAuthService(
	tx postgresql.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	employeeRepository employee.EmployeeRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	leaveBalanceRepository leave.LeaveBalanceRepository,
	settingsRepository settings.SettingsRepository,
	jwtService jwt.Service,
	jwtRepository postgresql.JWTRepository,
	emailService email.EmailService,
	cfg *config.Config,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:                 tx,
		UserRepository:     userRepository,
		CompanyRepository:  companyRepository,
		EmployeeRepository: employeeRepository,
		Service:            jwtService,
		JWTRepository:      jwtRepository,
		leaveTypeRepo:      leaveTypeRepository,
		leaveBalanceRepo:   leaveBalanceRepository,
		settingsRepo:       settingsRepository,
		email:              emailService,
		frontendURL:        cfg.App.FrontendURL,
		demoEnabled:        cfg.Demo.Enabled,
		googleEnabled:      cfg.OAuth2Google.Enabled(),
		now:                time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// issueTokens signs a token pair for u and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.CompanyID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := a.JWTRepository.CreateRefreshToken(ctx, u.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, sessionTrackReq); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := a.UserRepository.TouchLastLogin(ctx, u.ID); err != nil {
		slog.Warn("Failed to update last login", "user_id", u.ID, "error", err)
	}
	return resp, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	usernameTaken, err := a.CompanyRepository.ExistsByUsername(ctx, req.CompanyUsername)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check company username: %w", err)
	}
	if usernameTaken {
		return auth.TokenResponse{}, company.ErrCompanyUsernameExists
	}
	emailTaken, err := a.UserRepository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if emailTaken {
		return auth.TokenResponse{}, auth.ErrEmailAlreadyExists
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	var tokens auth.TokenResponse
	err = a.tx.InTx(ctx, func(ctx context.Context) error {
		newCompany, err := a.CompanyRepository.Create(ctx, company.Company{
			Name:     req.CompanyName,
			Username: req.CompanyUsername,
		})
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		if err := companyservice.SeedDefaults(ctx, a.leaveTypeRepo, a.settingsRepo, newCompany.ID); err != nil {
			return err
		}

		admin, err := a.UserRepository.Create(ctx, user.User{
			CompanyID:    &newCompany.ID,
			Email:        req.Email,
			PasswordHash: &passwordHash,
			Role:         user.RoleAdmin,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		hireDate := a.now().UTC().Truncate(24 * time.Hour)
		profile, err := a.EmployeeRepository.Create(ctx, employee.Employee{
			CompanyID:    newCompany.ID,
			UserID:       &admin.ID,
			EmployeeCode: founderEmployeeCode,
			FullName:     req.FullName,
			Email:        req.Email,
			HireDate:     &hireDate,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create admin employee: %w", err)
		}
		if err := a.leaveBalanceRepo.SeedForEmployee(ctx, newCompany.ID, profile.ID, hireDate.Year()); err != nil {
			return fmt.Errorf("failed to seed leave balances: %w", err)
		}

		admin.EmployeeID = &profile.ID
		admin.FullName = &profile.FullName
		tokens, err = a.issueTokens(ctx, admin, sessionTrackReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("Company registered", "company_username", req.CompanyUsername, "email", req.Email)
	return tokens, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// LoginWithGoogle signs in an existing account by Google ID, linking it on
// first use by email. It never creates users.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string, googleID string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if !a.googleEnabled {
		return auth.TokenResponse{}, auth.ErrGoogleDisabled
	}

	userData, err := a.UserRepository.GetByGoogleID(ctx, googleID)
	if errors.Is(err, user.ErrUserNotFound) {
		userData, err = a.UserRepository.GetByEmail(ctx, email)
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleNotLinked
		}
		if err == nil && userData.GoogleID == nil {
			if linkErr := a.UserRepository.LinkGoogleAccount(ctx, userData.ID, googleID); linkErr != nil {
				return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", linkErr)
			}
			userData.GoogleID = &googleID
		}
	}
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user for google login: %w", err)
	}
	if userData.GoogleID == nil || *userData.GoogleID != googleID {
		return auth.TokenResponse{}, auth.ErrGoogleNotLinked
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// DemoLogin implements auth.AuthService.
func (a *AuthServiceImpl) DemoLogin(ctx context.Context, req auth.DemoLoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if !a.demoEnabled {
		return auth.TokenResponse{}, auth.ErrDemoLoginDisabled
	}
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetDemoUser(ctx, user.Role(req.Role))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrDemoUserNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get demo user: %w", err)
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// Logout implements auth.AuthService. Logging out twice is not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := a.JWTRepository.RevokeRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken rotates a refresh token. Presenting a token that was already
// rotated revokes every session of its user.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userID, err := a.Service.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	var tokens auth.TokenResponse
	err = a.tx.InTx(ctx, func(ctx context.Context) error {
		if err := a.JWTRepository.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return err
		}

		userData, err := a.UserRepository.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrInvalidToken
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if !userData.IsActive {
			return auth.ErrAccountInactive
		}

		tokens, err = a.issueTokens(ctx, userData, sessionTrackReq)
		return err
	})
	if errors.Is(err, auth.ErrRefreshTokenRevoked) {
		slog.Warn("Revoked refresh token presented, revoking all sessions", "user_id", userID)
		if revokeErr := a.JWTRepository.RevokeAllForUser(ctx, userID); revokeErr != nil {
			slog.Error("Failed to revoke sessions", "user_id", userID, "error", revokeErr)
		}
		return auth.TokenResponse{}, err
	}
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokens, nil
}

// ForgotPassword emails a reset link. Unknown or inactive emails succeed
// silently so the endpoint cannot be used to probe accounts.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if !userData.IsActive {
		return nil
	}

	raw, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expiresAt := a.now().Add(auth.ResetTokenTTL)
	if err := a.UserRepository.SetPasswordResetToken(ctx, userData.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := auth.PasswordLink(a.frontendURL, "/reset-password", raw)
	go func(to string) {
		if err := a.email.SendPasswordReset(to, link, expiresAt.Format(time.RFC1123)); err != nil {
			slog.Error("Failed to send password reset email", "user_id", userData.ID, "error", err)
		}
	}(userData.Email)

	return nil
}

// ResetPassword implements auth.AuthService. A successful reset ends every
// session of the user.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByPasswordResetToken(ctx, auth.HashResetToken(req.Token))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidToken
		}
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}
	if userData.PasswordResetExpiresAt == nil || a.now().After(*userData.PasswordResetExpiresAt) {
		return auth.ErrInvalidToken
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}

	return a.tx.InTx(ctx, func(ctx context.Context) error {
		if err := a.UserRepository.UpdatePassword(ctx, userData.ID, passwordHash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.UserRepository.ClearPasswordResetToken(ctx, userData.ID); err != nil {
			return fmt.Errorf("failed to clear reset token: %w", err)
		}
		if err := a.JWTRepository.RevokeAllForUser(ctx, userData.ID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, err
	}

	userData, err := a.UserRepository.GetByID(ctx, actor.UserID)
	if err != nil {
		return auth.MeResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	permissions := make([]string, 0, len(user.RolePermissions[userData.Role]))
	for _, p := range user.RolePermissions[userData.Role] {
		permissions = append(permissions, string(p))
	}

	resp := auth.MeResponse{
		UserID:      userData.ID,
		Email:       userData.Email,
		Role:        string(userData.Role),
		CompanyID:   userData.CompanyID,
		EmployeeID:  userData.EmployeeID,
		FullName:    userData.FullName,
		IsDemo:      userData.IsDemo,
		Permissions: permissions,
	}
	// A super_admin working inside a selected tenant sees that company
	if actor.CompanyID != "" && (resp.CompanyID == nil || *resp.CompanyID != actor.CompanyID) {
		resp.CompanyID = &actor.CompanyID
	}
	return resp, nil
}
