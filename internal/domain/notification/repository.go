package notification

import (
	"context"
)

type Repository interface {
	InsertBatch(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, userID string, filter ListFilter) ([]Notification, error)
	Count(ctx context.Context, userID string) (Counts, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}
