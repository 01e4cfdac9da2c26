package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

type ReportServiceImpl struct {
	report.ReportRepository
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewReportService(reportRepository report.ReportRepository, employeeRepository employee.EmployeeRepository) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepository,
		employeeRepo:     employeeRepository,
		now:              time.Now,
	}
}

// scope returns the caller's read scope after the permission check. A
// requested employee must be inside it.
func (s *ReportServiceImpl) scope(ctx context.Context, employeeID *string) (access.Scope, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Scope{}, err
	}
	if !actor.Can(user.PermissionReportsView) {
		return access.Scope{}, user.ErrInsufficientPermissions
	}

	scope := access.ScopeFor(actor)
	if employeeID != nil {
		target, err := s.employeeRepo.GetByID(ctx, *employeeID)
		if err != nil {
			return access.Scope{}, err
		}
		if !scope.Allows(target.Subject()) {
			return access.Scope{}, access.ErrOutOfScope
		}
	}
	return scope, nil
}

func (s *ReportServiceImpl) buildAttendance(req report.AttendanceReportRequest, records []attendance.Attendance) report.AttendanceReport {
	return report.AttendanceReport{
		PeriodStart: req.Start.Format(dateLayout),
		PeriodEnd:   req.End.Format(dateLayout),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Totals:      report.SummarizeAttendance(records),
		Employees:   report.SummarizeByEmployee(records),
	}
}

// AttendanceReport implements report.ReportService.
func (s *ReportServiceImpl) AttendanceReport(ctx context.Context, req report.AttendanceReportRequest) (report.AttendanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceReport{}, err
	}
	scope, err := s.scope(ctx, req.EmployeeID)
	if err != nil {
		return report.AttendanceReport{}, err
	}

	records, err := s.ReportRepository.AttendanceInRange(ctx, scope, req.Start, req.End, req.EmployeeID)
	if err != nil {
		return report.AttendanceReport{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	return s.buildAttendance(req, records), nil
}

// ExportAttendanceReport implements report.ReportService. The workbook holds
// the summary, the per-employee breakdown, the daily rows and the approved
// leave of the same period.
func (s *ReportServiceImpl) ExportAttendanceReport(ctx context.Context, req report.AttendanceReportRequest) ([]byte, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	scope, err := s.scope(ctx, req.EmployeeID)
	if err != nil {
		return nil, "", err
	}

	var (
		records  []attendance.Attendance
		requests []leave.LeaveRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.ReportRepository.AttendanceInRange(gctx, scope, req.Start, req.End, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		requests, err = s.ReportRepository.LeaveRequestsInRange(gctx, scope, req.Start, req.End, leave.StatusApproved)
		if err != nil {
			return fmt.Errorf("failed to load leave requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	if req.EmployeeID != nil {
		requests = filterEmployee(requests, *req.EmployeeID)
	}

	summary := s.buildAttendance(req, records)
	data, err := export.Workbook(
		summarySheet(summary),
		employeeSheet(summary.Employees),
		dailySheet(records),
		leaveSheet(requests),
	)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance-report_%s_%s.xlsx", summary.PeriodStart, summary.PeriodEnd)
	return data, filename, nil
}

// LeaveReport implements report.ReportService.
func (s *ReportServiceImpl) LeaveReport(ctx context.Context, req report.LeaveReportRequest) (report.LeaveReport, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveReport{}, err
	}
	scope, err := s.scope(ctx, nil)
	if err != nil {
		return report.LeaveReport{}, err
	}

	status := leave.RequestStatus(*req.Status)
	requests, err := s.ReportRepository.LeaveRequestsInRange(ctx, scope, req.Start, req.End, status)
	if err != nil {
		return report.LeaveReport{}, fmt.Errorf("failed to load leave requests: %w", err)
	}

	totalDays := 0
	for _, r := range requests {
		totalDays += r.TotalDays
	}
	return report.LeaveReport{
		PeriodStart:   req.Start.Format(dateLayout),
		PeriodEnd:     req.End.Format(dateLayout),
		Status:        string(status),
		GeneratedAt:   s.now().UTC().Format(time.RFC3339),
		TotalRequests: len(requests),
		TotalDays:     totalDays,
		ByType:        report.LeaveTotalsByType(requests),
	}, nil
}

func filterEmployee(requests []leave.LeaveRequest, employeeID string) []leave.LeaveRequest {
	out := requests[:0]
	for _, r := range requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out
}

func summarySheet(r report.AttendanceReport) export.Sheet {
	t := r.Totals
	return export.Sheet{
		Name:    "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Period start", r.PeriodStart},
			{"Period end", r.PeriodEnd},
			{"Generated at", r.GeneratedAt},
			{"Present", t.Present},
			{"Late", t.Late},
			{"Absent", t.Absent},
			{"Half day", t.HalfDay},
			{"Total records", t.Total},
			{"Attendance rate (%)", t.AttendanceRate},
		},
		Widths: []float64{24, 24},
	}
}

func employeeSheet(lines []report.EmployeeAttendance) export.Sheet {
	rows := make([][]any, 0, len(lines))
	for _, e := range lines {
		rows = append(rows, []any{
			e.EmployeeCode, e.EmployeeName, deref(e.Department),
			e.Totals.Present, e.Totals.Late, e.Totals.Absent, e.Totals.HalfDay,
			e.Totals.AttendanceRate, e.WorkMinutes,
		})
	}
	return export.Sheet{
		Name:    "Employees",
		Headers: []string{"Code", "Name", "Department", "Present", "Late", "Absent", "Half day", "Rate (%)", "Work minutes"},
		Rows:    rows,
		Widths:  []float64{12, 28, 18},
	}
}

func dailySheet(records []attendance.Attendance) export.Sheet {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		minutes := ""
		if r.WorkMinutes != nil {
			minutes = fmt.Sprint(*r.WorkMinutes)
		}
		rows = append(rows, []any{
			r.Date.Format(dateLayout), r.EmployeeCode, r.EmployeeName, string(r.Status),
			clock(r.CheckIn), clock(r.CheckOut), minutes,
		})
	}
	return export.Sheet{
		Name:    "Daily",
		Headers: []string{"Date", "Code", "Name", "Status", "Check in", "Check out", "Work minutes"},
		Rows:    rows,
		Widths:  []float64{12, 12, 28, 10, 22, 22},
	}
}

func leaveSheet(requests []leave.LeaveRequest) export.Sheet {
	rows := make([][]any, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []any{
			r.EmployeeName, r.LeaveTypeName, r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout), r.TotalDays,
		})
	}
	return export.Sheet{
		Name:    "Leave",
		Headers: []string{"Name", "Leave type", "Start", "End", "Days"},
		Rows:    rows,
		Widths:  []float64{28, 18, 12, 12},
	}
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
