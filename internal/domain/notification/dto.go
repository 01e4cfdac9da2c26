package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateNotificationRequest is queued by the services that raise events.
type CreateNotificationRequest struct {
	CompanyID   string
	RecipientID string // user id
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
}

// ListFilter selects one page of a user's notifications.
type ListFilter struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

// Normalize clamps paging to the accepted range.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		f.PageSize = DefaultPageSize
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	if len(r.NotificationIDs) == 0 {
		return validator.ValidationErrors{{
			Field:   "notification_ids",
			Message: "notification_ids must contain at least one id",
		}}
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			return validator.ValidationErrors{{
				Field:   "notification_ids",
				Message: "notification_ids must contain valid UUIDs",
			}}
		}
	}
	return nil
}

type NotificationResponse struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func ToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
