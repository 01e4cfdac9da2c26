package report

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRate(t *testing.T) {
	assert.Equal(t, 0, AttendanceRate(0, 0))
	assert.Equal(t, 0, AttendanceRate(5, 0))
	assert.Equal(t, 100, AttendanceRate(4, 4))
	assert.Equal(t, 67, AttendanceRate(2, 3))
	assert.Equal(t, 33, AttendanceRate(1, 3))
	assert.Equal(t, 50, AttendanceRate(1, 2))
	assert.Equal(t, 13, AttendanceRate(1, 8)) // 12.5 rounds up
}

func TestSummarizeAttendance(t *testing.T) {
	records := []attendance.Attendance{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusLate},
		{Status: attendance.StatusAbsent},
		{Status: attendance.StatusHalfDay},
	}

	got := SummarizeAttendance(records)
	assert.Equal(t, StatusTotals{Present: 2, Late: 1, Absent: 1, HalfDay: 1, Total: 5, AttendanceRate: 40}, got)
}

func TestSummarizeAttendance_Empty(t *testing.T) {
	got := SummarizeAttendance(nil)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.AttendanceRate)
}

func TestTotalsFromCounts(t *testing.T) {
	got := TotalsFromCounts(map[attendance.Status]int{
		attendance.StatusPresent: 3,
		attendance.StatusLate:    1,
		"unknown":                7,
	})
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 75, got.AttendanceRate)
}

func TestSummarizeByEmployee(t *testing.T) {
	minutes := 480
	records := []attendance.Attendance{
		{EmployeeID: "b", EmployeeName: "Budi", Status: attendance.StatusPresent, WorkMinutes: &minutes},
		{EmployeeID: "a", EmployeeName: "Ayu", Status: attendance.StatusLate, WorkMinutes: &minutes},
		{EmployeeID: "b", EmployeeName: "Budi", Status: attendance.StatusAbsent},
	}

	got := SummarizeByEmployee(records)
	require.Len(t, got, 2)
	assert.Equal(t, "Ayu", got[0].EmployeeName)
	assert.Equal(t, 0, got[0].Totals.AttendanceRate)
	assert.Equal(t, "Budi", got[1].EmployeeName)
	assert.Equal(t, 2, got[1].Totals.Total)
	assert.Equal(t, 50, got[1].Totals.AttendanceRate)
	assert.Equal(t, 480, got[1].WorkMinutes)
}

func TestLeaveTotalsByType(t *testing.T) {
	requests := []leave.LeaveRequest{
		{LeaveTypeName: "Sick Leave", TotalDays: 2},
		{LeaveTypeName: "Annual Leave", TotalDays: 3},
		{LeaveTypeName: "Annual Leave", TotalDays: 1},
	}

	got := LeaveTotalsByType(requests)
	assert.Equal(t, []LeaveTypeTotal{
		{LeaveTypeName: "Annual Leave", Requests: 2, Days: 4},
		{LeaveTypeName: "Sick Leave", Requests: 1, Days: 2},
	}, got)
	assert.Empty(t, LeaveTotalsByType(nil))
}
