package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"golang.org/x/sync/errgroup"
)

// SettingsReader loads the raw settings of a company.
type SettingsReader interface {
	Values(ctx context.Context, companyID string) (map[string]string, error)
}

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	attendanceRepo   attendance.AttendanceRepository
	leaveBalanceRepo leave.LeaveBalanceRepository
	settings         SettingsReader
	now              func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveBalanceRepo leave.LeaveBalanceRepository,
	settingsReader SettingsReader,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		attendanceRepo:      attendanceRepo,
		leaveBalanceRepo:    leaveBalanceRepo,
		settings:            settingsReader,
		now:                 time.Now,
	}
}

// today returns the company-local date and the first day of its month. A
// super_admin without a tenant uses UTC.
func (s *DashboardServiceImpl) today(ctx context.Context, companyID string) (time.Time, time.Time, error) {
	rules := settings.RulesFrom(nil)
	if companyID != "" {
		values, err := s.settings.Values(ctx, companyID)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to load settings: %w", err)
		}
		rules = settings.RulesFrom(values)
	}
	today := rules.Today(s.now())
	return today, time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// Overview implements dashboard.DashboardService.
func (s *DashboardServiceImpl) Overview(ctx context.Context) (dashboard.OverviewResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return dashboard.OverviewResponse{}, err
	}
	if !actor.Can(user.PermissionDashboardView) {
		return dashboard.OverviewResponse{}, user.ErrInsufficientPermissions
	}
	scope := access.ScopeFor(actor)

	today, monthStart, err := s.today(ctx, actor.CompanyID)
	if err != nil {
		return dashboard.OverviewResponse{}, err
	}

	var (
		totalEmployees int64
		todayCounts    map[attendance.Status]int
		monthCounts    map[attendance.Status]int
		onLeave        int64
		pending        int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalEmployees, err = s.DashboardRepository.CountActiveEmployees(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		todayCounts, err = s.DashboardRepository.StatusCounts(gctx, scope, today, today)
		return err
	})
	g.Go(func() error {
		var err error
		monthCounts, err = s.DashboardRepository.StatusCounts(gctx, scope, monthStart, today)
		return err
	})
	g.Go(func() error {
		var err error
		onLeave, err = s.DashboardRepository.CountOnLeave(gctx, scope, today)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.DashboardRepository.CountPendingLeaveRequests(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.OverviewResponse{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	stats := dashboard.TodayStatsResponse{
		Present: int64(todayCounts[attendance.StatusPresent]),
		Late:    int64(todayCounts[attendance.StatusLate]),
		Absent:  int64(todayCounts[attendance.StatusAbsent]),
		HalfDay: int64(todayCounts[attendance.StatusHalfDay]),
		OnLeave: onLeave,
	}
	recorded := stats.Present + stats.Late + stats.Absent + stats.HalfDay
	stats.NotCheckedIn = max(totalEmployees-recorded-onLeave, 0)

	return dashboard.OverviewResponse{
		Date:                 today.Format("2006-01-02"),
		Month:                today.Format("2006-01"),
		TotalEmployees:       totalEmployees,
		Today:                stats,
		PendingLeaveRequests: pending,
		MonthAttendance:      report.TotalsFromCounts(monthCounts),
		UpdatedAt:            s.now().UTC().Format(time.RFC3339),
	}, nil
}

// My implements dashboard.DashboardService.
func (s *DashboardServiceImpl) My(ctx context.Context) (dashboard.MyDashboardResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return dashboard.MyDashboardResponse{}, err
	}
	if !actor.HasEmployee() {
		return dashboard.MyDashboardResponse{}, user.ErrEmployeeProfileRequired
	}
	scope := access.SelfScope(actor)

	today, monthStart, err := s.today(ctx, actor.CompanyID)
	if err != nil {
		return dashboard.MyDashboardResponse{}, err
	}

	var (
		record      *attendance.Attendance
		monthCounts map[attendance.Status]int
		minutes     int
		balances    []leave.LeaveBalance
		pending     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.attendanceRepo.GetByEmployeeAndDate(gctx, actor.EmployeeID, today)
		return err
	})
	g.Go(func() error {
		var err error
		monthCounts, err = s.DashboardRepository.StatusCounts(gctx, scope, monthStart, today)
		return err
	})
	g.Go(func() error {
		var err error
		minutes, err = s.DashboardRepository.SumWorkMinutes(gctx, scope, monthStart, today)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = s.leaveBalanceRepo.List(gctx, scope, leave.LeaveBalanceFilter{Year: today.Year()})
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.DashboardRepository.CountPendingLeaveRequests(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.MyDashboardResponse{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	resp := dashboard.MyDashboardResponse{
		Date:                 today.Format("2006-01-02"),
		Month:                today.Format("2006-01"),
		MonthAttendance:      report.TotalsFromCounts(monthCounts),
		MonthWorkMinutes:     minutes,
		MonthWorkHours:       dashboard.FormatWorkHours(minutes),
		LeaveBalances:        make([]leave.LeaveBalanceResponse, 0, len(balances)),
		PendingLeaveRequests: pending,
	}
	if record != nil {
		r := attendance.ToResponse(*record)
		resp.Today = &r
	}
	for _, b := range balances {
		resp.LeaveBalances = append(resp.LeaveBalances, leave.ToLeaveBalanceResponse(b))
	}
	return resp, nil
}
