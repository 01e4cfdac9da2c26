package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository_UpsertCheckInKeepsFirst(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	c := createCompany(t, db, "acme")
	emp := createEmployee(t, db, c.ID, "E-1", user.RoleEmployee, nil)
	repo := postgresql.NewAttendanceRepository(db)

	day := date(2024, 3, 11)
	first := time.Date(2024, 3, 11, 8, 55, 0, 0, time.UTC)
	second := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)

	a, err := repo.UpsertCheckIn(ctx, attendance.Attendance{CompanyID: c.ID, EmployeeID: emp.ID, Date: day, CheckIn: &first, Status: attendance.StatusPresent})
	require.NoError(t, err)

	b, err := repo.UpsertCheckIn(ctx, attendance.Attendance{CompanyID: c.ID, EmployeeID: emp.ID, Date: day, CheckIn: &second, Status: attendance.StatusLate})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.CheckIn.Equal(first))
	assert.Equal(t, attendance.StatusPresent, b.Status)

	out := time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC)
	done, err := repo.UpdateCheckOut(ctx, a.ID, out, 485, nil)
	require.NoError(t, err)
	require.NotNil(t, done.WorkMinutes)
	assert.Equal(t, 485, *done.WorkMinutes)

	_, err = repo.UpdateCheckOut(ctx, a.ID, out, 485, nil)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestAttendanceRepository_ListRespectsTeamScope(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	c := createCompany(t, db, "acme")
	manager := createEmployee(t, db, c.ID, "M-1", user.RoleReportingManager, nil)
	report := createEmployee(t, db, c.ID, "E-1", user.RoleEmployee, &manager.ID)
	other := createEmployee(t, db, c.ID, "E-2", user.RoleEmployee, nil)
	repo := postgresql.NewAttendanceRepository(db)

	day := date(2024, 3, 11)
	for _, id := range []string{manager.ID, report.ID, other.ID} {
		_, err := repo.UpsertStatus(ctx, attendance.Attendance{CompanyID: c.ID, EmployeeID: id, Date: day, Status: attendance.StatusPresent})
		require.NoError(t, err)
	}

	filter := attendance.AttendanceFilter{}
	require.NoError(t, filter.Validate())

	rows, total, err := repo.List(ctx, access.Scope{Kind: access.ScopeTeam, EmployeeID: manager.ID, CompanyID: c.ID}, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	ids := []string{rows[0].EmployeeID, rows[1].EmployeeID}
	assert.ElementsMatch(t, []string{manager.ID, report.ID}, ids)

	_, total, err = repo.List(ctx, access.Scope{Kind: access.ScopeSelf, EmployeeID: other.ID, CompanyID: c.ID}, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAttendanceRepository_MarkAbsentSkipsRecordedAndOnLeave(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	c := createCompany(t, db, "acme")
	checkedIn := createEmployee(t, db, c.ID, "E-1", user.RoleEmployee, nil)
	onLeave := createEmployee(t, db, c.ID, "E-2", user.RoleEmployee, nil)
	missing := createEmployee(t, db, c.ID, "E-3", user.RoleEmployee, nil)
	repo := postgresql.NewAttendanceRepository(db)

	day := date(2024, 3, 11)
	in := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	_, err := repo.UpsertCheckIn(ctx, attendance.Attendance{CompanyID: c.ID, EmployeeID: checkedIn.ID, Date: day, CheckIn: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)

	lt, err := postgresql.NewLeaveTypeRepository(db).Create(ctx, leave.LeaveType{CompanyID: c.ID, Name: "Annual", IsActive: true})
	require.NoError(t, err)
	_, err = postgresql.NewLeaveRequestRepository(db).Create(ctx, leave.LeaveRequest{
		CompanyID: c.ID, EmployeeID: onLeave.ID, LeaveTypeID: lt.ID,
		StartDate: day, EndDate: day, TotalDays: 1, Status: leave.StatusApproved,
	})
	require.NoError(t, err)

	marked, err := repo.MarkAbsent(ctx, c.ID, day)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)

	row, err := repo.GetByEmployeeAndDate(ctx, missing.ID, day)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, attendance.StatusAbsent, row.Status)

	again, err := repo.MarkAbsent(ctx, c.ID, day)
	require.NoError(t, err)
	assert.Zero(t, again)
}
