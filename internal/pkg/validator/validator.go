// Package validator holds the field checks shared by request DTOs.
package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 20
	maxLimit     = 100
)

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is returned by DTO Validate methods and rendered as a 422
// with one message per field.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// ToMap keys messages by field; a later message for the same field wins.
func (v ValidationErrors) ToMap() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		m[e.Field] = e.Message
	}
	return m
}

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidv7Pattern   = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)
	clockPattern    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidUUID accepts only version 7 ids, which every table uses as its key.
func IsValidUUID(id string) bool {
	return uuidv7Pattern.MatchString(strings.ToLower(id))
}

// IsValidDate parses a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, s)
	return d, err == nil
}

// IsValidPhoneNumber ignores spaces and dashes and allows a leading +.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.NewReplacer(" ", "", "-", "").Replace(phone))
}

func IsInSlice(value string, allowed []string) bool {
	return slices.Contains(allowed, value)
}

// IsValidCompanyUsername allows 3 to 50 letters, digits, dots, dashes and
// underscores.
func IsValidCompanyUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsValidClock checks a 24h "HH:MM" time of day.
func IsValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// IsValidTimezone checks an IANA zone name such as "Asia/Jakarta".
func IsValidTimezone(name string) bool {
	if IsEmpty(name) {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// ParseWeekdays parses ISO weekday numbers (1 = Monday, 7 = Sunday) separated
// by commas. Duplicates are dropped, order is kept.
func ParseWeekdays(s string) ([]time.Weekday, bool) {
	if IsEmpty(s) {
		return nil, false
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 {
			return nil, false
		}
		if day := time.Weekday(n % 7); !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	return days, true
}

// ValidatePagination fills defaults for zero values in place and reports
// out of range paging and unknown sort fields.
func ValidatePagination(page, limit *int, sortBy *string, sortFields []string, defaultSort string, sortOrder *string) ValidationErrors {
	var errs ValidationErrors
	add := func(field, msg string) { errs = append(errs, ValidationError{Field: field, Message: msg}) }

	switch {
	case *page < 0:
		add("page", "page must be a positive number")
	case *page == 0:
		*page = 1
	}

	switch {
	case *limit < 0:
		add("limit", "limit must be a positive number")
	case *limit == 0:
		*limit = defaultLimit
	case *limit > maxLimit:
		add("limit", "limit must not exceed "+strconv.Itoa(maxLimit))
	}

	if *sortBy == "" {
		*sortBy = defaultSort
	} else if !IsInSlice(*sortBy, sortFields) {
		add("sort_by", "sort_by must be one of: "+strings.Join(sortFields, ", "))
	}

	*sortOrder = strings.ToLower(*sortOrder)
	switch *sortOrder {
	case "":
		*sortOrder = "desc"
	case "asc", "desc":
	default:
		add("sort_order", "sort_order must be one of: asc, desc")
	}

	return errs
}
