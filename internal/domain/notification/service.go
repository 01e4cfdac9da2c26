package notification

import (
	"context"
)

type Service interface {
	// QueueNotification stores and pushes a notification in the background.
	// Requests without a recipient are dropped.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	List(ctx context.Context, userID string, filter ListFilter) (NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error

	// Subscribe streams notifications created for userID until ctx ends or
	// the returned func is called.
	Subscribe(ctx context.Context, userID string) (<-chan NotificationResponse, func())

	// Stop flushes queued notifications and ends the background writer.
	Stop()
}
