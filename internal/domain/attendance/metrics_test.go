package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min, sec int, loc *time.Location) *time.Time {
	t := time.Date(2024, 3, 11, hour, min, sec, 0, loc)
	return &t
}

func TestDeriveStatus(t *testing.T) {
	cutoff := Cutoff{Hour: 9, Minute: 0}
	cases := []struct {
		name    string
		checkIn *time.Time
		want    Status
	}{
		{"no check-in is absent", nil, StatusAbsent},
		{"early is present", at(8, 15, 0, time.UTC), StatusPresent},
		{"exactly at cutoff is present", at(9, 0, 0, time.UTC), StatusPresent},
		{"one second after cutoff is late", at(9, 0, 1, time.UTC), StatusLate},
		{"one minute after cutoff is late", at(9, 1, 0, time.UTC), StatusLate},
		{"afternoon is late", at(14, 0, 0, time.UTC), StatusLate},
		{"just after midnight is present", at(0, 5, 0, time.UTC), StatusPresent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DeriveStatus(c.checkIn, cutoff, time.UTC))
		})
	}
}

func TestDeriveStatus_UsesCompanyTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 01:30 UTC is 08:30 in UTC+7
	checkIn := time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, StatusPresent, DeriveStatus(&checkIn, DefaultCutoff, jakarta))
	assert.Equal(t, StatusPresent, DeriveStatus(&checkIn, DefaultCutoff, nil))

	// 02:30 UTC is 09:30 in UTC+7
	lateCheckIn := time.Date(2024, 3, 11, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, StatusLate, DeriveStatus(&lateCheckIn, DefaultCutoff, jakarta))
}

func TestDeriveStatus_SubSecond(t *testing.T) {
	checkIn := time.Date(2024, 3, 11, 9, 0, 0, 1, time.UTC)
	assert.Equal(t, StatusLate, DeriveStatus(&checkIn, DefaultCutoff, time.UTC))
}

func TestParseCutoff(t *testing.T) {
	c, err := ParseCutoff("08:45")
	require.NoError(t, err)
	assert.Equal(t, Cutoff{Hour: 8, Minute: 45}, c)
	assert.Equal(t, "08:45", c.String())

	_, err = ParseCutoff("8.45")
	assert.Error(t, err)
	_, err = ParseCutoff("25:00")
	assert.Error(t, err)
}

func TestLocalDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 20:00 UTC on the 10th is already the 11th in UTC+7
	ts := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), LocalDate(ts, jakarta))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), LocalDate(ts, time.UTC))
}

func TestWorkMinutes(t *testing.T) {
	in := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 510, WorkMinutes(in, in.Add(8*time.Hour+30*time.Minute+59*time.Second)))
	assert.Equal(t, 0, WorkMinutes(in, in.Add(-time.Minute)))
}
