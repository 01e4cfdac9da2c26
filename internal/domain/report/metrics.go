package report

import (
	"math"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

// StatusTotals counts attendance rows per status.
type StatusTotals struct {
	Present        int `json:"present"`
	Late           int `json:"late"`
	Absent         int `json:"absent"`
	HalfDay        int `json:"half_day"`
	Total          int `json:"total"`
	AttendanceRate int `json:"attendance_rate"` // percent, present / total
}

func (t *StatusTotals) add(status attendance.Status, n int) {
	switch status {
	case attendance.StatusPresent:
		t.Present += n
	case attendance.StatusLate:
		t.Late += n
	case attendance.StatusAbsent:
		t.Absent += n
	case attendance.StatusHalfDay:
		t.HalfDay += n
	default:
		return
	}
	t.Total += n
}

// AttendanceRate returns present/total as a rounded percentage, 0 when total is 0.
func AttendanceRate(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// SummarizeAttendance reduces rows to per-status totals.
func SummarizeAttendance(records []attendance.Attendance) StatusTotals {
	var t StatusTotals
	for _, r := range records {
		t.add(r.Status, 1)
	}
	t.AttendanceRate = AttendanceRate(t.Present, t.Total)
	return t
}

// TotalsFromCounts builds totals from a status -> count map returned by an aggregate query.
func TotalsFromCounts(counts map[attendance.Status]int) StatusTotals {
	var t StatusTotals
	for status, n := range counts {
		t.add(status, n)
	}
	t.AttendanceRate = AttendanceRate(t.Present, t.Total)
	return t
}

// EmployeeAttendance is the per-employee line of an attendance report.
type EmployeeAttendance struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeCode string       `json:"employee_code"`
	EmployeeName string       `json:"employee_name"`
	Department   *string      `json:"department,omitempty"`
	WorkMinutes  int          `json:"work_minutes"`
	Totals       StatusTotals `json:"totals"`
}

// SummarizeByEmployee groups rows per employee, sorted by name.
func SummarizeByEmployee(records []attendance.Attendance) []EmployeeAttendance {
	byID := make(map[string]*EmployeeAttendance)
	for _, r := range records {
		e, ok := byID[r.EmployeeID]
		if !ok {
			e = &EmployeeAttendance{
				EmployeeID:   r.EmployeeID,
				EmployeeCode: r.EmployeeCode,
				EmployeeName: r.EmployeeName,
				Department:   r.Department,
			}
			byID[r.EmployeeID] = e
		}
		e.Totals.add(r.Status, 1)
		if r.WorkMinutes != nil {
			e.WorkMinutes += *r.WorkMinutes
		}
	}

	result := make([]EmployeeAttendance, 0, len(byID))
	for _, e := range byID {
		e.Totals.AttendanceRate = AttendanceRate(e.Totals.Present, e.Totals.Total)
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeName != result[j].EmployeeName {
			return result[i].EmployeeName < result[j].EmployeeName
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result
}

// LeaveTypeTotal is the number of requests and days taken for one leave type.
type LeaveTypeTotal struct {
	LeaveTypeName string `json:"leave_type_name"`
	Requests      int    `json:"requests"`
	Days          int    `json:"days"`
}

// LeaveTotalsByType buckets requests by leave type name, sorted by name.
func LeaveTotalsByType(requests []leave.LeaveRequest) []LeaveTypeTotal {
	byName := make(map[string]*LeaveTypeTotal)
	for _, r := range requests {
		t, ok := byName[r.LeaveTypeName]
		if !ok {
			t = &LeaveTypeTotal{LeaveTypeName: r.LeaveTypeName}
			byName[r.LeaveTypeName] = t
		}
		t.Requests++
		t.Days += r.TotalDays
	}

	result := make([]LeaveTypeTotal, 0, len(byName))
	for _, t := range byName {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveTypeName < result[j].LeaveTypeName })
	return result
}
