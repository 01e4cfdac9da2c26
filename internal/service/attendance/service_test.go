package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAttendance struct {
	attendance.AttendanceRepository
	rows map[string]*attendance.Attendance
}

func newMemoryAttendance() *memoryAttendance {
	return &memoryAttendance{rows: map[string]*attendance.Attendance{}}
}

func key(employeeID string, date time.Time) string {
	return employeeID + "/" + date.Format("2006-01-02")
}

func (m *memoryAttendance) UpsertCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	k := key(a.EmployeeID, a.Date)
	if existing, ok := m.rows[k]; ok {
		if existing.CheckIn == nil {
			existing.CheckIn = a.CheckIn
			existing.Status = a.Status
		}
		return *existing, nil
	}
	a.ID = "att-" + k
	m.rows[k] = &a
	return a, nil
}

func (m *memoryAttendance) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	row, ok := m.rows[key(employeeID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memoryAttendance) UpdateCheckOut(ctx context.Context, id string, checkOut time.Time, workMinutes int, notes *string) (attendance.Attendance, error) {
	for _, row := range m.rows {
		if row.ID == id {
			row.CheckOut = &checkOut
			row.WorkMinutes = &workMinutes
			return *row, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memoryAttendance) UpsertStatus(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	k := key(a.EmployeeID, a.Date)
	if existing, ok := m.rows[k]; ok {
		existing.Status = a.Status
		existing.OverriddenBy = a.OverriddenBy
		return *existing, nil
	}
	a.ID = "att-" + k
	m.rows[k] = &a
	return a, nil
}

type memoryEmployees struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func (m *memoryEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type staticSettings map[string]string

func (s staticSettings) Values(ctx context.Context, companyID string) (map[string]string, error) {
	return s, nil
}

type recordingNotifier struct {
	notification.Service
	sent []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	r.sent = append(r.sent, req)
	return nil
}

func strPtr(s string) *string { return &s }

type fixture struct {
	svc      *AttendanceServiceImpl
	rows     *memoryAttendance
	notifier *recordingNotifier
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	rows := newMemoryAttendance()
	notifier := &recordingNotifier{}
	employees := &memoryEmployees{byID: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", CompanyID: "c1", UserID: strPtr("user-1"), ManagerID: strPtr("mgr-1")},
		"emp-2": {ID: "emp-2", CompanyID: "c1", UserID: strPtr("user-2")},
		"emp-9": {ID: "emp-9", CompanyID: "c2", UserID: strPtr("user-9")},
	}}
	svc := NewAttendanceService(rows, employees, staticSettings{
		"attendance_cutoff_time": "09:00",
		"timezone":               "Asia/Jakarta",
	}, notifier).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return now }
	return fixture{svc: svc, rows: rows, notifier: notifier}
}

func employeeCtx() context.Context {
	return session.WithActor(context.Background(), access.Actor{
		UserID: "user-1", EmployeeID: "emp-1", CompanyID: "c1", Role: user.RoleEmployee,
	})
}

func managerCtx() context.Context {
	return session.WithActor(context.Background(), access.Actor{
		UserID: "user-m", EmployeeID: "mgr-1", CompanyID: "c1", Role: user.RoleReportingManager,
	})
}

func TestCheckIn_DerivesStatusInCompanyTimezone(t *testing.T) {
	// 02:05 UTC is 09:05 in Jakarta
	f := newFixture(t, time.Date(2024, 3, 11, 2, 5, 0, 0, time.UTC))

	resp, err := f.svc.CheckIn(employeeCtx(), attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "late", resp.Status)
	assert.Equal(t, "2024-03-11", resp.Date)
}

func TestCheckIn_OnTimeAndIdempotent(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC))

	first, err := f.svc.CheckIn(employeeCtx(), attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "present", first.Status)

	f.svc.now = func() time.Time { return time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC) }
	second, err := f.svc.CheckIn(employeeCtx(), attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CheckIn, second.CheckIn)
	assert.Equal(t, "present", second.Status)
	assert.Len(t, f.rows.rows, 1)
}

func TestCheckIn_RequiresEmployeeProfile(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := session.WithActor(context.Background(), access.Actor{UserID: "root", Role: user.RoleSuperAdmin})

	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, user.ErrEmployeeProfileRequired)
}

func TestCheckOut(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC))

	_, err := f.svc.CheckOut(employeeCtx(), attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = f.svc.CheckIn(employeeCtx(), attendance.CheckInRequest{})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC) }
	resp, err := f.svc.CheckOut(employeeCtx(), attendance.CheckOutRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.WorkMinutes)
	assert.Equal(t, 510, *resp.WorkMinutes)

	_, err = f.svc.CheckOut(employeeCtx(), attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestGetToday_NilWithoutRecord(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC))

	today, err := f.svc.GetToday(employeeCtx())
	require.NoError(t, err)
	assert.Nil(t, today)

	_, err = f.svc.CheckIn(employeeCtx(), attendance.CheckInRequest{})
	require.NoError(t, err)
	today, err = f.svc.GetToday(employeeCtx())
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, "present", today.Status)
}

func TestOverrideStatus(t *testing.T) {
	f := newFixture(t, time.Now())

	req := attendance.OverrideStatusRequest{
		EmployeeID: "0190a000-0000-7000-8000-0000000000e0",
		Date:       "2024-03-11",
		Status:     "half_day",
	}

	t.Run("employee lacks permission", func(t *testing.T) {
		_, err := f.svc.OverrideStatus(employeeCtx(), req)
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := f.svc.OverrideStatus(managerCtx(), req)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})
}

func TestOverrideStatus_ScopeAndNotification(t *testing.T) {
	f := newFixture(t, time.Now())
	employees := f.svc.EmployeeRepository.(*memoryEmployees)
	direct := "0190a000-0000-7000-8000-0000000000d1"
	other := "0190a000-0000-7000-8000-0000000000d2"
	employees.byID[direct] = employee.Employee{ID: direct, CompanyID: "c1", UserID: strPtr("user-d"), ManagerID: strPtr("mgr-1")}
	employees.byID[other] = employee.Employee{ID: other, CompanyID: "c1", UserID: strPtr("user-o")}

	resp, err := f.svc.OverrideStatus(managerCtx(), attendance.OverrideStatusRequest{EmployeeID: direct, Date: "2024-03-11", Status: "half_day"})
	require.NoError(t, err)
	assert.Equal(t, "half_day", resp.Status)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "user-d", f.notifier.sent[0].RecipientID)
	assert.Equal(t, notification.TypeAttendanceOverridden, f.notifier.sent[0].Type)

	_, err = f.svc.OverrideStatus(managerCtx(), attendance.OverrideStatusRequest{EmployeeID: other, Date: "2024-03-11", Status: "absent"})
	assert.ErrorIs(t, err, access.ErrOutOfScope)
}
