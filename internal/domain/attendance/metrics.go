package attendance

import (
	"fmt"
	"math"
	"time"
)

// DefaultCutoff is used when a company has no attendance_cutoff_time setting.
var DefaultCutoff = Cutoff{Hour: 9, Minute: 0}

// Cutoff is the time of day after which a check-in counts as late.
type Cutoff struct {
	Hour   int
	Minute int
}

// ParseCutoff parses "HH:MM".
func ParseCutoff(s string) (Cutoff, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Cutoff{}, fmt.Errorf("invalid cutoff time %q: expected HH:MM", s)
	}
	return Cutoff{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DeriveStatus classifies a check-in: absent without one, late when its
// local time of day is strictly after the cutoff, present otherwise.
func DeriveStatus(checkIn *time.Time, cutoff Cutoff, loc *time.Location) Status {
	if checkIn == nil {
		return StatusAbsent
	}
	if loc == nil {
		loc = time.UTC
	}

	h, m, s := checkIn.In(loc).Clock()
	ns := checkIn.Nanosecond()
	switch {
	case h != cutoff.Hour:
		if h > cutoff.Hour {
			return StatusLate
		}
		return StatusPresent
	case m != cutoff.Minute:
		if m > cutoff.Minute {
			return StatusLate
		}
		return StatusPresent
	case s > 0 || ns > 0:
		return StatusLate
	default:
		return StatusPresent
	}
}

// LocalDate returns the calendar date of t in loc as midnight UTC, the
// representation stored in DATE columns.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkMinutes returns whole minutes between check-in and check-out, never negative.
func WorkMinutes(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Minutes()))
}
