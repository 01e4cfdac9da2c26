package attendance

import "errors"

// Attendance domain errors
var (
	ErrNotCheckedIn       = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut  = errors.New("you have already checked out")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidStatus      = errors.New("invalid attendance status")
)
