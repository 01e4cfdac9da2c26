package settings

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ValidateValue checks the value of a known key. Unknown keys accept any
// non-empty value.
func ValidateValue(key, value string) error {
	switch key {
	case KeyAttendanceCutoff:
		if !validator.IsValidClock(value) {
			return fmt.Errorf("%s must be a time of day in HH:MM format", key)
		}
	case KeyTimezone:
		if !validator.IsValidTimezone(value) {
			return fmt.Errorf("%s must be a valid IANA timezone such as Asia/Jakarta", key)
		}
	case KeyWorkingDays:
		if _, ok := validator.ParseWeekdays(value); !ok {
			return fmt.Errorf("%s must be a comma separated list of weekdays 1-7", key)
		}
	default:
		if validator.IsEmpty(value) {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	return nil
}

// RulesFrom builds attendance rules from stored values. Missing or invalid
// values fall back to Defaults so a bad row never blocks check-in.
func RulesFrom(values map[string]string) AttendanceRules {
	get := func(key string) string {
		if v, ok := values[key]; ok && ValidateValue(key, v) == nil {
			return v
		}
		if v, ok := values[key]; ok {
			slog.Warn("Invalid setting value, using default", "key", key, "value", v)
		}
		return Defaults[key]
	}

	cutoff, err := attendance.ParseCutoff(get(KeyAttendanceCutoff))
	if err != nil {
		cutoff = attendance.DefaultCutoff
	}

	loc, err := time.LoadLocation(get(KeyTimezone))
	if err != nil {
		loc = time.UTC
	}

	days, _ := validator.ParseWeekdays(get(KeyWorkingDays))
	working := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		working[d] = true
	}

	return AttendanceRules{Cutoff: cutoff, Location: loc, WorkingDays: working}
}
