package settings

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// Known setting keys
const (
	KeyAttendanceCutoff = "attendance_cutoff_time"
	KeyTimezone         = "timezone"
	KeyWorkingDays      = "working_days"
)

// Defaults seeded for new companies and used when a key is missing.
var Defaults = map[string]string{
	KeyAttendanceCutoff: "09:00",
	KeyTimezone:         "UTC",
	KeyWorkingDays:      "1,2,3,4,5",
}

// Setting is one key/value pair of a company.
type Setting struct {
	CompanyID string
	Key       string
	Value     string
	UpdatedBy *string
	UpdatedAt time.Time
}

// AttendanceRules are the settings attendance derivation depends on.
type AttendanceRules struct {
	Cutoff      attendance.Cutoff
	Location    *time.Location
	WorkingDays map[time.Weekday]bool
}

// IsWorkingDay reports whether the weekday of date is a working day.
func (r AttendanceRules) IsWorkingDay(date time.Time) bool {
	return r.WorkingDays[date.Weekday()]
}

// Today returns the current local date of the company as midnight UTC.
func (r AttendanceRules) Today(now time.Time) time.Time {
	return attendance.LocalDate(now, r.Location)
}
