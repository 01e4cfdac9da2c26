package settings

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(KeyAttendanceCutoff, "08:30"))
	assert.Error(t, ValidateValue(KeyAttendanceCutoff, "8:30am"))
	assert.NoError(t, ValidateValue(KeyTimezone, "Asia/Jakarta"))
	assert.Error(t, ValidateValue(KeyTimezone, "Mars/Base"))
	assert.NoError(t, ValidateValue(KeyWorkingDays, "1,2,3,4,5,6"))
	assert.Error(t, ValidateValue(KeyWorkingDays, "0,1"))
	assert.NoError(t, ValidateValue("company_motto", "be on time"))
	assert.Error(t, ValidateValue("company_motto", "  "))
}

func TestRulesFrom_Defaults(t *testing.T) {
	rules := RulesFrom(nil)

	assert.Equal(t, attendance.Cutoff{Hour: 9}, rules.Cutoff)
	assert.Equal(t, time.UTC, rules.Location)
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.True(t, rules.IsWorkingDay(monday))
	assert.False(t, rules.IsWorkingDay(monday.AddDate(0, 0, 5))) // saturday
}

func TestRulesFrom_CustomAndInvalid(t *testing.T) {
	rules := RulesFrom(map[string]string{
		KeyAttendanceCutoff: "08:15",
		KeyTimezone:         "not/a-zone",
		KeyWorkingDays:      "6,7",
	})

	assert.Equal(t, attendance.Cutoff{Hour: 8, Minute: 15}, rules.Cutoff)
	assert.Equal(t, time.UTC, rules.Location)
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, rules.IsWorkingDay(sunday))
	assert.False(t, rules.IsWorkingDay(sunday.AddDate(0, 0, 1)))
}

func TestAttendanceRules_Today(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata not available")
	}
	rules := AttendanceRules{Location: jakarta}

	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC) // 01:00 on the 11th in Jakarta
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), rules.Today(now))
}
