package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

var notificationInsertColumns = []string{
	"id", "company_id", "recipient_id", "sender_id", "type", "title", "message", "data", "is_read", "created_at",
}

// InsertBatch implements notification.Repository with a single COPY.
func (r *notificationRepositoryImpl) InsertBatch(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(notifications))
	for _, n := range notifications {
		var data []byte
		if n.Data != nil {
			var err error
			if data, err = json.Marshal(n.Data); err != nil {
				return fmt.Errorf("failed to marshal notification data: %w", err)
			}
		}
		id, err := uuid.Parse(n.ID)
		if err != nil {
			return fmt.Errorf("invalid notification id %q: %w", n.ID, err)
		}
		recipient, err := uuid.Parse(n.RecipientID)
		if err != nil {
			return fmt.Errorf("invalid recipient id %q: %w", n.RecipientID, err)
		}
		company, err := copyNullableUUID(&n.CompanyID)
		if err != nil {
			return err
		}
		sender, err := copyNullableUUID(n.SenderID)
		if err != nil {
			return err
		}
		rows = append(rows, []any{
			id, company, recipient, sender, string(n.Type),
			n.Title, n.Message, data, n.IsRead, n.CreatedAt,
		})
	}

	q := GetQuerier(ctx, r.db)
	copied, err := q.CopyFrom(ctx, pgx.Identifier{"notifications"}, notificationInsertColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	if int(copied) != len(rows) {
		return fmt.Errorf("inserted %d of %d notifications", copied, len(rows))
	}
	return nil
}

// copyNullableUUID converts an optional id for the binary COPY protocol,
// which does not accept uuid columns as text.
func copyNullableUUID(s *string) (any, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid uuid %q: %w", *s, err)
	}
	return id, nil
}

// List implements notification.Repository, newest first.
func (r *notificationRepositoryImpl) List(ctx context.Context, userID string, filter notification.ListFilter) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)
	filter = filter.Normalize()

	query := `
		SELECT id, COALESCE(company_id::text, ''), recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := q.Query(ctx, query, userID, filter.UnreadOnly, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	result := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		var data []byte
		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title,
			&n.Message, &data, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// Count implements notification.Repository.
func (r *notificationRepositoryImpl) Count(ctx context.Context, userID string) (notification.Counts, error) {
	q := GetQuerier(ctx, r.db)

	var counts notification.Counts
	err := q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications
		WHERE recipient_id = $1
	`, userID).Scan(&counts.Total, &counts.Unread)
	if err != nil {
		return notification.Counts{}, fmt.Errorf("failed to count notifications: %w", err)
	}
	return counts, nil
}

// MarkRead implements notification.Repository. Ids of other users are ignored.
func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND id = ANY($2::uuid[]) AND NOT is_read
	`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkAllRead implements notification.Repository.
func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND NOT is_read
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete implements notification.Repository.
func (r *notificationRepositoryImpl) Delete(ctx context.Context, userID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
