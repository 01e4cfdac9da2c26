package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type memoryUsers struct {
	user.UserRepository
	byID map[string]user.User
	seq  int
}

func (m *memoryUsers) find(match func(user.User) bool) (user.User, error) {
	for _, u := range m.byID {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.Email == email })
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.ID == id })
}

func (m *memoryUsers) GetByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (m *memoryUsers) GetDemoUser(ctx context.Context, role user.Role) (user.User, error) {
	return m.find(func(u user.User) bool { return u.IsDemo && u.Role == role })
}

func (m *memoryUsers) GetByPasswordResetToken(ctx context.Context, hash string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == hash })
}

func (m *memoryUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	m.byID[u.ID] = u
	return u, nil
}

func (m *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryUsers) update(id string, fn func(*user.User)) error {
	u, ok := m.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&u)
	m.byID[id] = u
	return nil
}

func (m *memoryUsers) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	return m.update(userID, func(u *user.User) { u.GoogleID = &googleID })
}

func (m *memoryUsers) UpdatePassword(ctx context.Context, userID, hash string) error {
	return m.update(userID, func(u *user.User) { u.PasswordHash = &hash })
}

func (m *memoryUsers) SetPasswordResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	return m.update(userID, func(u *user.User) {
		u.PasswordResetTokenHash = &hash
		u.PasswordResetExpiresAt = &expiresAt
	})
}

func (m *memoryUsers) ClearPasswordResetToken(ctx context.Context, userID string) error {
	return m.update(userID, func(u *user.User) {
		u.PasswordResetTokenHash = nil
		u.PasswordResetExpiresAt = nil
	})
}

func (m *memoryUsers) TouchLastLogin(ctx context.Context, userID string) error { return nil }

type memoryCompanies struct {
	company.CompanyRepository
	created []company.Company
}

func (m *memoryCompanies) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, c := range m.created {
		if c.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryCompanies) Create(ctx context.Context, c company.Company) (company.Company, error) {
	c.ID = fmt.Sprintf("company-%d", len(m.created)+1)
	m.created = append(m.created, c)
	return c, nil
}

type memoryEmployees struct {
	employee.EmployeeRepository
	created []employee.Employee
}

func (m *memoryEmployees) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = fmt.Sprintf("emp-%d", len(m.created)+1)
	m.created = append(m.created, e)
	return e, nil
}

type memoryTypes struct {
	leave.LeaveTypeRepository
	created int
}

func (m *memoryTypes) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	m.created++
	return lt, nil
}

type memoryBalances struct {
	leave.LeaveBalanceRepository
	seeded []string
}

func (m *memoryBalances) SeedForEmployee(ctx context.Context, companyID, employeeID string, year int) error {
	m.seeded = append(m.seeded, employeeID)
	return nil
}

type memorySettings struct {
	settings.SettingsRepository
}

func (memorySettings) Upsert(ctx context.Context, s settings.Setting) (settings.Setting, error) {
	return s, nil
}

type memoryTokens struct {
	active map[string]string // token -> user
}

func (m *memoryTokens) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt int64, sess auth.SessionTrackingRequest) error {
	m.active[token] = userID
	return nil
}

func (m *memoryTokens) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	_, ok := m.active[token]
	return !ok, nil
}

func (m *memoryTokens) RevokeRefreshToken(ctx context.Context, token string) error {
	if _, ok := m.active[token]; !ok {
		return auth.ErrRefreshTokenRevoked
	}
	delete(m.active, token)
	return nil
}

func (m *memoryTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	for token, owner := range m.active {
		if owner == userID {
			delete(m.active, token)
		}
	}
	return nil
}

func (m *memoryTokens) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type recordingMailer struct {
	email.EmailService
	resets chan string
}

func (r *recordingMailer) SendPasswordReset(to, resetLink, expiresAt string) error {
	r.resets <- resetLink
	return nil
}

type fixture struct {
	svc       *AuthServiceImpl
	users     *memoryUsers
	companies *memoryCompanies
	employees *memoryEmployees
	types     *memoryTypes
	balances  *memoryBalances
	tokens    *memoryTokens
	mailer    *recordingMailer
}

func newFixture(t *testing.T, cfg *config.Config) fixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{App: config.AppConfig{FrontendURL: "http://app.test"}}
	}
	f := fixture{
		users:     &memoryUsers{byID: map[string]user.User{}},
		companies: &memoryCompanies{},
		employees: &memoryEmployees{},
		types:     &memoryTypes{},
		balances:  &memoryBalances{},
		tokens:    &memoryTokens{active: map[string]string{}},
		mailer:    &recordingMailer{resets: make(chan string, 1)},
	}
	jwtService := jwt.NewJWTService("test-secret", "1h", "24h", false)
	f.svc = NewAuthService(inlineTx{}, f.users, f.companies, f.employees, f.types, f.balances, memorySettings{},
		jwtService, f.tokens, f.mailer, cfg).(*AuthServiceImpl)
	return f
}

func (f fixture) addUser(t *testing.T, u user.User, password string) user.User {
	t.Helper()
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		h := string(hash)
		u.PasswordHash = &h
	}
	created, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func TestRegister_CreatesCompanyAdminAndEmployee(t *testing.T) {
	f := newFixture(t, nil)
	req := auth.RegisterRequest{
		CompanyName:     "Acme",
		CompanyUsername: "acme",
		FullName:        "Ada Admin",
		Email:           "Ada@Acme.test",
		Password:        "password123",
		ConfirmPassword: "password123",
	}

	tokens, err := f.svc.Register(context.Background(), req, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Contains(t, f.tokens.active, tokens.RefreshToken)

	require.Len(t, f.companies.created, 1)
	assert.Equal(t, 3, f.types.created)

	admin, err := f.users.GetByEmail(context.Background(), "ada@acme.test")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.Equal(t, "company-1", *admin.CompanyID)

	require.Len(t, f.employees.created, 1)
	assert.Equal(t, admin.ID, *f.employees.created[0].UserID)
	assert.Equal(t, []string{"emp-1"}, f.balances.seeded)

	_, err = f.svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName: "Other", CompanyUsername: "other", FullName: "Ada", Email: "ada@acme.test",
		Password: "password123", ConfirmPassword: "password123",
	}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)

	_, err = f.svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName: "Acme", CompanyUsername: "acme", FullName: "Bo", Email: "bo@acme.test",
		Password: "password123", ConfirmPassword: "password123",
	}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, company.ErrCompanyUsernameExists)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "password123")
	f.addUser(t, user.User{Email: "gone@acme.test", CompanyID: &companyID, Role: user.RoleEmployee}, "password123")

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "emp@acme.test", Password: "wrong-password"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@acme.test", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "gone@acme.test", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)

	tokens, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: " EMP@acme.test ", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestRefreshToken_RotatesAndDetectsReuse(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "password123")

	first, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "emp@acme.test", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	second, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotContains(t, f.tokens.active, first.RefreshToken)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	assert.Empty(t, f.tokens.active)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "password123")
	tokens, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "emp@acme.test", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), tokens.RefreshToken))
	assert.Empty(t, f.tokens.active)
	require.NoError(t, f.svc.Logout(context.Background(), tokens.RefreshToken))
}

func TestDemoLogin(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.DemoLogin(context.Background(), auth.DemoLoginRequest{Role: "employee"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrDemoLoginDisabled)

	f = newFixture(t, &config.Config{Demo: config.DemoConfig{Enabled: true}})
	_, err = f.svc.DemoLogin(context.Background(), auth.DemoLoginRequest{Role: "employee"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrDemoUserNotFound)

	companyID := "c1"
	f.addUser(t, user.User{Email: "employee@demo.local", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true, IsDemo: true}, "")
	tokens, err := f.svc.DemoLogin(context.Background(), auth.DemoLoginRequest{Role: "employee"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginWithGoogle(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.LoginWithGoogle(context.Background(), "emp@acme.test", "g-1", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrGoogleDisabled)

	f = newFixture(t, &config.Config{OAuth2Google: config.OAuth2GoogleConfig{ClientID: "client"}})
	_, err = f.svc.LoginWithGoogle(context.Background(), "stranger@acme.test", "g-9", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrGoogleNotLinked)

	companyID := "c1"
	u := f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "")
	_, err = f.svc.LoginWithGoogle(context.Background(), "emp@acme.test", "g-1", auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "g-1", *f.users.byID[u.ID].GoogleID)

	// Same email with a different Google identity is rejected
	_, err = f.svc.LoginWithGoogle(context.Background(), "emp@acme.test", "g-2", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrGoogleNotLinked)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	u := f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "password123")
	f.tokens.active["old-session"] = u.ID

	require.NoError(t, f.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{Email: "nobody@acme.test"}))
	require.NoError(t, f.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{Email: "emp@acme.test"}))

	var link string
	select {
	case link = <-f.mailer.resets:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was not sent")
	}
	require.True(t, strings.HasPrefix(link, "http://app.test/reset-password?token="))
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get("token")

	req := auth.ResetPasswordRequest{Token: token, Password: "new-password", ConfirmPassword: "new-password"}
	require.NoError(t, f.svc.ResetPassword(context.Background(), req))
	assert.Empty(t, f.tokens.active)
	assert.Nil(t, f.users.byID[u.ID].PasswordResetTokenHash)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "emp@acme.test", Password: "new-password"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), req), auth.ErrInvalidToken)
}

func TestResetPassword_Expired(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	u := f.addUser(t, user.User{Email: "emp@acme.test", CompanyID: &companyID, Role: user.RoleEmployee, IsActive: true}, "password123")

	raw, hash, err := auth.NewResetToken()
	require.NoError(t, err)
	require.NoError(t, f.users.SetPasswordResetToken(context.Background(), u.ID, hash, time.Now().Add(-time.Minute)))

	err = f.svc.ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: raw, Password: "new-password", ConfirmPassword: "new-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMe(t *testing.T) {
	f := newFixture(t, nil)
	companyID := "c1"
	u := f.addUser(t, user.User{Email: "mgr@acme.test", CompanyID: &companyID, Role: user.RoleReportingManager, IsActive: true}, "")

	ctx := session.WithActor(context.Background(), access.Actor{UserID: u.ID, CompanyID: companyID, Role: user.RoleReportingManager})
	me, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reporting_manager", me.Role)
	assert.Contains(t, me.Permissions, string(user.PermissionLeaveApprove))
	assert.NotContains(t, me.Permissions, string(user.PermissionEmployeeManage))

	_, err = f.svc.Me(context.Background())
	assert.ErrorIs(t, err, access.ErrNoSession)
}
