package employee

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type memoryEmployees struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
	seq  int
}

func (m *memoryEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployees) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	m.seq++
	e.ID = fmt.Sprintf("new-%d", m.seq)
	m.byID[e.ID] = e
	return e, nil
}

func (m *memoryEmployees) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	e := m.byID[id]
	if req.FullName != nil {
		e.FullName = *req.FullName
	}
	if req.Role != nil {
		r := user.Role(*req.Role)
		e.Role = &r
	}
	m.byID[id] = e
	return nil
}

func (m *memoryEmployees) UpdateProfile(ctx context.Context, id string, req employee.UpdateProfileRequest) error {
	e := m.byID[id]
	if req.Phone != nil {
		e.Phone = req.Phone
	}
	m.byID[id] = e
	return nil
}

func (m *memoryEmployees) SetActive(ctx context.Context, id string, active bool) error {
	e := m.byID[id]
	e.IsActive = active
	m.byID[id] = e
	return nil
}

func (m *memoryEmployees) ListDirectReports(ctx context.Context, managerID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range m.byID {
		if e.ManagerID != nil && *e.ManagerID == managerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryEmployees) ExistsByCodeOrEmail(ctx context.Context, companyID, code, email string) (bool, bool, error) {
	var codeExists, emailExists bool
	for _, e := range m.byID {
		if e.CompanyID != companyID {
			continue
		}
		codeExists = codeExists || e.EmployeeCode == code
		emailExists = emailExists || e.Email == email
	}
	return codeExists, emailExists, nil
}

type memoryUsers struct {
	user.UserRepository
	byID       map[string]user.User
	resetHash  map[string]string
	deactivate []string
	roles      map[string]user.Role
}

func (m *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	u.ID = fmt.Sprintf("user-%d", len(m.byID)+1)
	m.byID[u.ID] = u
	return u, nil
}

func (m *memoryUsers) SetPasswordResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	m.resetHash[userID] = hash
	return nil
}

func (m *memoryUsers) SetActive(ctx context.Context, userID string, active bool) error {
	m.deactivate = append(m.deactivate, userID)
	return nil
}

func (m *memoryUsers) UpdateRole(ctx context.Context, userID string, role user.Role) error {
	m.roles[userID] = role
	return nil
}

type memoryTeams struct {
	team.TeamRepository
}

func (memoryTeams) GetByID(ctx context.Context, id string) (team.Team, error) {
	switch id {
	case "0190a000-0000-7000-8000-0000000004d1":
		return team.Team{ID: id, CompanyID: "c1"}, nil
	case "0190a000-0000-7000-8000-0000000004d2":
		return team.Team{ID: id, CompanyID: "c2"}, nil
	}
	return team.Team{}, team.ErrTeamNotFound
}

type memoryCompanies struct {
	company.CompanyRepository
}

func (memoryCompanies) GetByID(ctx context.Context, id string) (company.Company, error) {
	return company.Company{ID: id, Name: "Acme"}, nil
}

type memoryBalances struct {
	leave.LeaveBalanceRepository
	seeded []string
}

func (m *memoryBalances) SeedForEmployee(ctx context.Context, companyID, employeeID string, year int) error {
	m.seeded = append(m.seeded, employeeID)
	return nil
}

type recordingNotifier struct {
	notification.Service
	queued []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	r.queued = append(r.queued, req)
	return nil
}

type welcome struct{ to, link string }

type recordingMailer struct {
	email.EmailService
	welcomes chan welcome
}

func (r *recordingMailer) SendWelcome(to, fullName, companyName, link, expiresAt string) error {
	r.welcomes <- welcome{to: to, link: link}
	return nil
}

// UUIDv7 ids because the DTO validators check manager and team IDs.
const (
	adminID   = "0190a000-0000-7000-8000-0000000004a1"
	managerID = "0190a000-0000-7000-8000-0000000004a2"
	staffID   = "0190a000-0000-7000-8000-0000000004a3"
	otherID   = "0190a000-0000-7000-8000-0000000004a4"
)

type fixture struct {
	svc       *EmployeeServiceImpl
	employees *memoryEmployees
	users     *memoryUsers
	balances  *memoryBalances
	notifier  *recordingNotifier
	mailer    *recordingMailer
}

func ptr[T any](v T) *T { return &v }

func newFixture() fixture {
	admin, mgr, emp := user.RoleAdmin, user.RoleReportingManager, user.RoleEmployee
	employees := &memoryEmployees{byID: map[string]employee.Employee{
		adminID:   {ID: adminID, CompanyID: "c1", UserID: ptr("u-admin"), EmployeeCode: "E1", Email: "admin@acme.test", Role: &admin, IsActive: true},
		managerID: {ID: managerID, CompanyID: "c1", UserID: ptr("u-mgr"), EmployeeCode: "E2", Email: "mgr@acme.test", Role: &mgr, ManagerID: ptr(adminID), IsActive: true},
		staffID:   {ID: staffID, CompanyID: "c1", UserID: ptr("u-staff"), EmployeeCode: "E3", Email: "staff@acme.test", Role: &emp, ManagerID: ptr(managerID), IsActive: true},
		otherID:   {ID: otherID, CompanyID: "c2", UserID: ptr("u-other"), EmployeeCode: "X1", Email: "other@globex.test", Role: &emp, IsActive: true},
	}}
	f := fixture{
		employees: employees,
		users:     &memoryUsers{byID: map[string]user.User{}, resetHash: map[string]string{}, roles: map[string]user.Role{}},
		balances:  &memoryBalances{},
		notifier:  &recordingNotifier{},
		mailer:    &recordingMailer{welcomes: make(chan welcome, 1)},
	}
	f.svc = NewEmployeeService(inlineTx{}, employees, f.users, memoryTeams{}, memoryCompanies{}, f.balances,
		f.notifier, f.mailer, "http://app.test").(*EmployeeServiceImpl)
	return f
}

func actorCtx(role user.Role, userID, employeeID, companyID string) context.Context {
	return session.WithActor(context.Background(), access.Actor{
		UserID: userID, EmployeeID: employeeID, CompanyID: companyID, Role: role,
	})
}

func adminCtx() context.Context {
	return actorCtx(user.RoleAdmin, "u-admin", adminID, "c1")
}

func TestCreateEmployee_WithoutPasswordSendsWelcome(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email:        "New.Hire@acme.test",
		FullName:     "New Hire",
		EmployeeCode: "E9",
		ManagerID:    ptr(managerID),
		HireDate:     ptr("2026-01-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@acme.test", resp.Email)
	assert.Equal(t, "2026-01-05", *resp.HireDate)

	require.Len(t, f.users.byID, 1)
	for id, u := range f.users.byID {
		assert.Equal(t, user.RoleEmployee, u.Role)
		assert.Nil(t, u.PasswordHash)
		assert.NotEmpty(t, f.users.resetHash[id])
	}
	assert.Equal(t, []string{resp.ID}, f.balances.seeded)

	select {
	case w := <-f.mailer.welcomes:
		assert.Equal(t, "new.hire@acme.test", w.to)
		assert.True(t, strings.HasPrefix(w.link, "http://app.test/set-password?token="))
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}

	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "u-mgr", f.notifier.queued[0].RecipientID)
	assert.Equal(t, notification.TypeEmployeeCreated, f.notifier.queued[0].Type)
}

func TestCreateEmployee_WithPasswordSkipsWelcome(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email: "pw@acme.test", FullName: "Has Password", EmployeeCode: "E10", Password: ptr("password123"),
	})
	require.NoError(t, err)
	assert.Empty(t, f.users.resetHash)
	assert.Empty(t, f.mailer.welcomes)
}

func TestCreateEmployee_Rules(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateEmployee(actorCtx(user.RoleReportingManager, "u-mgr", managerID, "c1"), employee.CreateEmployeeRequest{
		Email: "x@acme.test", FullName: "X", EmployeeCode: "E11",
	})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email: "x@acme.test", FullName: "X", EmployeeCode: "E11", Role: "super_admin",
	})
	assert.ErrorIs(t, err, employee.ErrRoleNotAssignable)

	_, err = f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email: "x@acme.test", FullName: "X", EmployeeCode: "E1",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email: "x@acme.test", FullName: "X", EmployeeCode: "E11", ManagerID: ptr(otherID),
	})
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	_, err = f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{
		Email: "x@acme.test", FullName: "X", EmployeeCode: "E11", TeamID: ptr("0190a000-0000-7000-8000-0000000004d2"),
	})
	assert.ErrorIs(t, err, employee.ErrTeamNotFound)

	assert.Empty(t, f.users.byID)
}

func TestGetEmployee_Scope(t *testing.T) {
	f := newFixture()
	staffCtx := actorCtx(user.RoleEmployee, "u-staff", staffID, "c1")
	mgrCtx := actorCtx(user.RoleReportingManager, "u-mgr", managerID, "c1")

	_, err := f.svc.GetEmployee(staffCtx, staffID)
	require.NoError(t, err)
	_, err = f.svc.GetEmployee(staffCtx, managerID)
	assert.ErrorIs(t, err, access.ErrOutOfScope)

	_, err = f.svc.GetEmployee(mgrCtx, staffID)
	require.NoError(t, err)
	_, err = f.svc.GetEmployee(mgrCtx, adminID)
	assert.ErrorIs(t, err, access.ErrOutOfScope)

	_, err = f.svc.GetEmployee(adminCtx(), otherID)
	assert.ErrorIs(t, err, access.ErrOutOfScope)
}

func TestUpdateEmployee_ChangesRole(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: staffID, Role: ptr("reporting_manager")})
	require.NoError(t, err)
	assert.Equal(t, "reporting_manager", *resp.Role)
	assert.Equal(t, user.RoleReportingManager, f.users.roles["u-staff"])
}

func TestDeactivateEmployee(t *testing.T) {
	f := newFixture()

	assert.ErrorIs(t, f.svc.DeactivateEmployee(adminCtx(), adminID), employee.ErrCannotDeactivateSelf)

	require.NoError(t, f.svc.DeactivateEmployee(adminCtx(), staffID))
	assert.False(t, f.employees.byID[staffID].IsActive)
	assert.Equal(t, []string{"u-staff"}, f.users.deactivate)

	assert.ErrorIs(t, f.svc.DeactivateEmployee(adminCtx(), staffID), employee.ErrEmployeeAlreadyInactive)
}

func TestListDirectReports(t *testing.T) {
	f := newFixture()

	reports, err := f.svc.ListDirectReports(actorCtx(user.RoleReportingManager, "u-mgr", managerID, "c1"), managerID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, staffID, reports[0].ID)

	_, err = f.svc.ListDirectReports(actorCtx(user.RoleEmployee, "u-staff", staffID, "c1"), managerID)
	assert.ErrorIs(t, err, access.ErrOutOfScope)
}

func TestMyProfile(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetMyProfile(actorCtx(user.RoleSuperAdmin, "u-root", "", "c1"))
	assert.ErrorIs(t, err, user.ErrEmployeeProfileRequired)

	resp, err := f.svc.UpdateMyProfile(actorCtx(user.RoleEmployee, "u-staff", staffID, "c1"), employee.UpdateProfileRequest{Phone: ptr("+6281234567890")})
	require.NoError(t, err)
	assert.Equal(t, "+6281234567890", *resp.Phone)
}
