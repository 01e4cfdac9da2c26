package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
)

// CompanyLister returns the ids of every company.
type CompanyLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// SettingsReader returns the stored settings of a company.
type SettingsReader interface {
	Values(ctx context.Context, companyID string) (map[string]string, error)
}

// HolidayChecker reports company holidays.
type HolidayChecker interface {
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
}

// AbsenceMarker inserts absent rows for employees without attendance on date.
type AbsenceMarker interface {
	MarkAbsent(ctx context.Context, companyID string, date time.Time) (int64, error)
}

type AttendanceJobs struct {
	companies  CompanyLister
	settings   SettingsReader
	holidays   HolidayChecker
	attendance AbsenceMarker
	interval   time.Duration
	now        func() time.Time
}

func NewAttendanceJobs(
	companies CompanyLister,
	settingsReader SettingsReader,
	holidays HolidayChecker,
	attendance AbsenceMarker,
	interval time.Duration,
) *AttendanceJobs {
	return &AttendanceJobs{
		companies:  companies,
		settings:   settingsReader,
		holidays:   holidays,
		attendance: attendance,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent", j.interval, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees records absent for every active employee who neither
// checked in nor was on approved leave during the previous local working
// day of their company. Re-running is harmless since existing rows are kept.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	slog.Info("Cron: Starting mark absent employees job")

	companyIDs, err := j.companies.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var total int64
	var failed int
	for _, companyID := range companyIDs {
		marked, err := j.markCompany(ctx, companyID)
		if err != nil {
			failed++
			slog.Error("Cron: Failed to mark absent employees", "company_id", companyID, "error", err)
			continue
		}
		total += marked
	}

	slog.Info("Cron: Mark absent employees completed", "companies", len(companyIDs), "marked", total, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("mark absent failed for %d of %d companies", failed, len(companyIDs))
	}
	return nil
}

func (j *AttendanceJobs) markCompany(ctx context.Context, companyID string) (int64, error) {
	values, err := j.settings.Values(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	rules := settings.RulesFrom(values)

	date := rules.Today(j.now()).AddDate(0, 0, -1)
	if !rules.IsWorkingDay(date) {
		return 0, nil
	}

	holiday, err := j.holidays.IsHoliday(ctx, companyID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to check holiday: %w", err)
	}
	if holiday {
		return 0, nil
	}

	marked, err := j.attendance.MarkAbsent(ctx, companyID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to insert absent rows: %w", err)
	}
	if marked > 0 {
		slog.Info("Cron: Marked employees absent", "company_id", companyID, "date", date.Format("2006-01-02"), "count", marked)
	}
	return marked, nil
}
