package dashboard

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
)

// ========== OVERVIEW (reporting_manager and above) ==========

// OverviewResponse summarizes the rows the caller can see.
type OverviewResponse struct {
	Date                 string              `json:"date"`  // YYYY-MM-DD, company local
	Month                string              `json:"month"` // YYYY-MM
	TotalEmployees       int64               `json:"total_employees"`
	Today                TodayStatsResponse  `json:"today"`
	PendingLeaveRequests int64               `json:"pending_leave_requests"`
	MonthAttendance      report.StatusTotals `json:"month_attendance"`
	UpdatedAt            string              `json:"updated_at"`
}

// TodayStatsResponse counts today's attendance of active employees in scope.
type TodayStatsResponse struct {
	Present      int64 `json:"present"`
	Late         int64 `json:"late"`
	Absent       int64 `json:"absent"`
	HalfDay      int64 `json:"half_day"`
	OnLeave      int64 `json:"on_leave"`
	NotCheckedIn int64 `json:"not_checked_in"`
}

// ========== MY DASHBOARD ==========

type MyDashboardResponse struct {
	Date                 string                         `json:"date"`
	Month                string                         `json:"month"`
	Today                *attendance.AttendanceResponse `json:"today"`
	MonthAttendance      report.StatusTotals            `json:"month_attendance"`
	MonthWorkMinutes     int                            `json:"month_work_minutes"`
	MonthWorkHours       string                         `json:"month_work_hours"` // "120h 54m"
	LeaveBalances        []leave.LeaveBalanceResponse   `json:"leave_balances"`
	PendingLeaveRequests int64                          `json:"pending_leave_requests"`
}

// FormatWorkHours renders minutes as "Xh Ym".
func FormatWorkHours(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
