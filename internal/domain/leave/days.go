package leave

import (
	"errors"
	"time"
)

var errEndBeforeStart = errors.New("end_date must not be before start_date")

// LeaveDays returns the inclusive number of calendar days between start and
// end: 2024-01-15 to 2024-01-17 is 3 days. Only the calendar dates count.
func LeaveDays(start, end time.Time) (int, error) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0, errEndBeforeStart
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
