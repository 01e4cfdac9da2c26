package notification

import (
	"time"
)

type NotificationType string

const (
	TypeLeaveSubmitted       NotificationType = "leave_submitted"
	TypeLeaveApproved        NotificationType = "leave_approved"
	TypeLeaveRejected        NotificationType = "leave_rejected"
	TypeLeaveCancelled       NotificationType = "leave_cancelled"
	TypeAttendanceOverridden NotificationType = "attendance_overridden"
	TypeEmployeeCreated      NotificationType = "employee_created"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Counts summarises a user's inbox.
type Counts struct {
	Total  int
	Unread int
}
