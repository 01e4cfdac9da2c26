package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompanies struct{ ids []string }

func (f fakeCompanies) ListIDs(ctx context.Context) ([]string, error) { return f.ids, nil }

type fakeSettings map[string]map[string]string

func (f fakeSettings) Values(ctx context.Context, companyID string) (map[string]string, error) {
	return f[companyID], nil
}

type fakeHolidays map[string]string // company -> YYYY-MM-DD

func (f fakeHolidays) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	return f[companyID] == date.Format("2006-01-02"), nil
}

type fakeMarker struct {
	calls map[string]time.Time
	fail  string
}

func (f *fakeMarker) MarkAbsent(ctx context.Context, companyID string, date time.Time) (int64, error) {
	if companyID == f.fail {
		return 0, errors.New("boom")
	}
	f.calls[companyID] = date
	return 2, nil
}

func newJobs(marker *fakeMarker, cfg fakeSettings, holidays fakeHolidays, now time.Time, ids ...string) *AttendanceJobs {
	j := NewAttendanceJobs(fakeCompanies{ids: ids}, cfg, holidays, marker, time.Hour)
	j.now = func() time.Time { return now }
	return j
}

func TestMarkAbsent_UsesPreviousLocalWorkingDay(t *testing.T) {
	marker := &fakeMarker{calls: map[string]time.Time{}}
	// Tuesday 2024-03-12 01:00 UTC
	now := time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC)
	cfg := fakeSettings{
		"utc":  nil,
		"west": {"timezone": "America/Los_Angeles"}, // still Monday evening there
	}
	j := newJobs(marker, cfg, nil, now, "utc", "west")

	require.NoError(t, j.MarkAbsentEmployees(context.Background()))

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), marker.calls["utc"])
	// previous day in Los Angeles is Sunday, not a working day
	_, called := marker.calls["west"]
	assert.False(t, called)
}

func TestMarkAbsent_SkipsHolidays(t *testing.T) {
	marker := &fakeMarker{calls: map[string]time.Time{}}
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	j := newJobs(marker, fakeSettings{}, fakeHolidays{"acme": "2024-03-11"}, now, "acme", "globex")

	require.NoError(t, j.MarkAbsentEmployees(context.Background()))

	_, called := marker.calls["acme"]
	assert.False(t, called)
	assert.Contains(t, marker.calls, "globex")
}

func TestMarkAbsent_ContinuesAfterCompanyFailure(t *testing.T) {
	marker := &fakeMarker{calls: map[string]time.Time{}, fail: "broken"}
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	j := newJobs(marker, fakeSettings{}, nil, now, "broken", "ok")

	err := j.MarkAbsentEmployees(context.Background())
	require.Error(t, err)
	assert.Contains(t, marker.calls, "ok")
}

type fakePurger struct{ before time.Time }

func (f *fakePurger) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	f.before = before
	return 3, nil
}

func TestScheduler_RunJobAndRunOnce(t *testing.T) {
	s := NewScheduler()
	purger := &fakePurger{}
	NewTokenJobs(purger, time.Hour).RegisterJobs(s)
	s.AddJob("failing", time.Hour, func(ctx context.Context) error { return errors.New("nope") })

	assert.Equal(t, []string{"expire_refresh_tokens", "failing"}, s.JobNames())

	require.NoError(t, s.RunJob(context.Background(), "expire_refresh_tokens"))
	assert.False(t, purger.before.IsZero())

	assert.Error(t, s.RunJob(context.Background(), "missing"))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
