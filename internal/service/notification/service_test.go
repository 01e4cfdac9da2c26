package notification

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu      sync.Mutex
	items   []notification.Notification
	batches int
}

func (m *memoryRepo) InsertBatch(ctx context.Context, ns []notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ns...)
	m.batches++
	return nil
}

func (m *memoryRepo) snapshot() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Notification(nil), m.items...)
}

func (m *memoryRepo) List(ctx context.Context, userID string, filter notification.ListFilter) ([]notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notification.Notification
	for _, n := range m.items {
		if n.RecipientID == userID && (!filter.UnreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	start := min(filter.Offset(), len(out))
	end := min(start+filter.PageSize, len(out))
	return out[start:end], nil
}

func (m *memoryRepo) Count(ctx context.Context, userID string) (notification.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c notification.Counts
	for _, n := range m.items {
		if n.RecipientID != userID {
			continue
		}
		c.Total++
		if !n.IsRead {
			c.Unread++
		}
	}
	return c, nil
}

func (m *memoryRepo) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		for _, id := range ids {
			if m.items[i].ID == id && m.items[i].RecipientID == userID && !m.items[i].IsRead {
				m.items[i].IsRead = true
				n++
			}
		}
	}
	return n, nil
}

func (m *memoryRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].RecipientID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.RecipientID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func queue(t *testing.T, svc notification.Service, recipient, title string) {
	t.Helper()
	require.NoError(t, svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        notification.TypeLeaveApproved,
		Title:       title,
	}))
}

func TestQueueNotification_FlushesOnStop(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour})

	for range 3 {
		queue(t, svc, "user-1", "Leave approved")
	}
	svc.Stop()

	items := repo.snapshot()
	require.Len(t, items, 3)
	assert.Equal(t, 1, repo.batches)
	for _, n := range items {
		assert.True(t, validator.IsValidUUID(n.ID), "id %s", n.ID)
		assert.False(t, n.CreatedAt.IsZero())
	}
}

func TestQueueNotification_SplitsBatches(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{BatchSize: 2, FlushInterval: time.Hour})

	for range 5 {
		queue(t, svc, "user-1", "Leave approved")
	}
	svc.Stop()

	assert.Len(t, repo.snapshot(), 5)
	assert.Equal(t, 3, repo.batches)
}

func TestQueueNotification_SkipsEmptyRecipient(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})

	queue(t, svc, "", "nobody")
	svc.Stop()

	assert.Empty(t, repo.snapshot())
}

func TestQueueNotification_AfterStopStoresDirectly(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})
	svc.Stop()

	queue(t, svc, "user-1", "late")
	assert.Len(t, repo.snapshot(), 1)
}

func TestQueueNotification_ConcurrentWithStopLosesNothing(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour, QueueSize: 16})

	const senders, perSender = 20, 25
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range perSender {
				err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
					RecipientID: "user-1",
					Type:        notification.TypeLeaveApproved,
					Title:       "approved",
				})
				assert.NoError(t, err)
			}
		}()
	}

	close(start)
	svc.Stop()
	wg.Wait()

	assert.Len(t, repo.snapshot(), senders*perSender)
}

func TestQueueNotification_PublishesToSubscriber(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{BatchSize: 1})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, unsubscribe := svc.Subscribe(ctx, "user-1")
	defer unsubscribe()

	queue(t, svc, "user-2", "someone else")
	queue(t, svc, "user-1", "Attendance updated")

	select {
	case resp := <-events:
		assert.Equal(t, "Attendance updated", resp.Title)
		assert.False(t, resp.IsRead)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestSubscribe_ClosesWhenContextEnds(t *testing.T) {
	svc := NewNotificationService(&memoryRepo{}, sse.NewHub(), Config{})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, unsubscribe := svc.Subscribe(ctx, "user-1")
	defer unsubscribe()
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed")
	}
}

func TestList_NormalizesPagingAndCounts(t *testing.T) {
	repo := &memoryRepo{items: []notification.Notification{
		{ID: "n1", RecipientID: "user-1"},
		{ID: "n2", RecipientID: "user-1", IsRead: true},
		{ID: "n3", RecipientID: "user-2"},
	}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})
	defer svc.Stop()

	list, err := svc.List(context.Background(), "user-1", notification.ListFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, notification.DefaultPageSize, list.PageSize)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.UnreadCount)
	assert.Len(t, list.Notifications, 2)

	unread, err := svc.List(context.Background(), "user-1", notification.ListFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Total)
	require.Len(t, unread.Notifications, 1)
	assert.Equal(t, "n1", unread.Notifications[0].ID)
}

func TestMarkAsRead(t *testing.T) {
	id := "0190a000-0000-7000-8000-0000000000a1"
	repo := &memoryRepo{items: []notification.Notification{
		{ID: id, RecipientID: "user-1"},
		{ID: "other", RecipientID: "user-1"},
	}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})
	defer svc.Stop()

	err := svc.MarkAsRead(context.Background(), "user-1", notification.MarkAsReadRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, svc.MarkAsRead(context.Background(), "user-1", notification.MarkAsReadRequest{NotificationIDs: []string{id}}))
	count, err := svc.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), "user-1"))
	count, err = svc.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_OtherUsersNotification(t *testing.T) {
	repo := &memoryRepo{items: []notification.Notification{{ID: "n1", RecipientID: "user-1"}}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})
	defer svc.Stop()

	assert.ErrorIs(t, svc.Delete(context.Background(), "user-2", "n1"), notification.ErrNotificationNotFound)
	assert.NoError(t, svc.Delete(context.Background(), "user-1", "n1"))
}
