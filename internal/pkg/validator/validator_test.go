package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(" \t "))
	assert.False(t, IsEmpty(" abc "))
}

func TestIsValidEmail(t *testing.T) {
	for _, email := range []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"} {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""} {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"0190a000-0000-7000-8000-000000000001", true},
		{"0190A000-0000-7000-B000-000000000001", true},
		{"550e8400-e29b-41d4-a716-446655440000", false}, // v4
		{"0190a000-0000-7000-c000-000000000001", false}, // bad variant
		{"0190a000000070008000000000000001", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidUUID(tt.id), tt.id)
	}
}

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2026-02-28")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"2026-02-30", "28-02-2026", "2026-2-28", ""} {
		_, ok := IsValidDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	assert.True(t, IsValidPhoneNumber("+62 812-3456-7890"))
	assert.True(t, IsValidPhoneNumber("0812345678"))
	assert.False(t, IsValidPhoneNumber("12345"))
	assert.False(t, IsValidPhoneNumber("+62abc456789"))
}

func TestIsValidCompanyUsername(t *testing.T) {
	assert.True(t, IsValidCompanyUsername("acme.corp_01"))
	assert.False(t, IsValidCompanyUsername("ab"))
	assert.False(t, IsValidCompanyUsername("acme corp"))
}

func TestIsValidClock(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "23:59"} {
		assert.True(t, IsValidClock(s), s)
	}
	for _, s := range []string{"24:00", "9:05", "12:60", ""} {
		assert.False(t, IsValidClock(s), s)
	}
}

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone("Asia/Jakarta"))
	assert.True(t, IsValidTimezone("UTC"))
	assert.False(t, IsValidTimezone("Mars/Olympus"))
	assert.False(t, IsValidTimezone(" "))
}

func TestParseWeekdays(t *testing.T) {
	days, ok := ParseWeekdays("1, 2,3,4,5,5")
	require.True(t, ok)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, days)

	days, ok = ParseWeekdays("7")
	require.True(t, ok)
	assert.Equal(t, []time.Weekday{time.Sunday}, days)

	for _, bad := range []string{"", "0", "8", "mon"} {
		_, ok := ParseWeekdays(bad)
		assert.False(t, ok, bad)
	}
}

func TestValidatePagination_Defaults(t *testing.T) {
	page, limit, sortBy, sortOrder := 0, 0, "", ""
	errs := ValidatePagination(&page, &limit, &sortBy, []string{"date", "name"}, "date", &sortOrder)

	assert.Empty(t, errs)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	assert.Equal(t, "date", sortBy)
	assert.Equal(t, "desc", sortOrder)
}

func TestValidatePagination_Errors(t *testing.T) {
	page, limit, sortBy, sortOrder := -1, 101, "salary", "ASC"
	errs := ValidatePagination(&page, &limit, &sortBy, []string{"date", "name"}, "date", &sortOrder)

	m := errs.ToMap()
	assert.Contains(t, m, "page")
	assert.Contains(t, m, "limit")
	assert.Contains(t, m, "sort_by")
	assert.NotContains(t, m, "sort_order")
	assert.Equal(t, "asc", sortOrder)

	sortOrder = "sideways"
	errs = ValidatePagination(&page, &limit, &sortBy, nil, "", &sortOrder)
	assert.Contains(t, errs.ToMap(), "sort_order")
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	assert.Equal(t, "email: invalid; phone: required", errs.Error())
	assert.Equal(t, map[string]string{"email": "invalid", "phone": "required"}, errs.ToMap())
}
