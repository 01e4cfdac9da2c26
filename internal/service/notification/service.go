package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// EventName is the SSE event carrying a NotificationResponse.
const EventName = "notification"

// Config tunes the background writer. Zero values take the defaults.
type Config struct {
	BatchSize     int           // default 100
	FlushInterval time.Duration // default 5s
	QueueSize     int           // default 1000
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	return c
}

type service struct {
	repo notification.Repository
	hub  *sse.Hub
	cfg  Config
	now  func() time.Time

	// mu guards closed; senders hold the read lock so Stop cannot close
	// done between their check and their send.
	mu       sync.RWMutex
	closed   bool
	pending  chan notification.Notification
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the writer goroutine that persists queued
// notifications in batches and then pushes them to live subscribers.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	cfg = cfg.withDefaults()
	s := &service{
		repo:    repo,
		hub:     hub,
		cfg:     cfg,
		now:     time.Now,
		pending: make(chan notification.Notification, cfg.QueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()

	slog.Info("Notification writer started", "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)
	return s
}

func (s *service) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]notification.Notification, 0, s.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.store(ctx, batch); err != nil {
			slog.Error("Failed to store notifications", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case n := <-s.pending:
			batch = append(batch, n)
			if len(batch) >= s.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case n := <-s.pending:
					batch = append(batch, n)
					if len(batch) >= s.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// store persists batch and publishes each row to its recipient.
func (s *service) store(ctx context.Context, batch []notification.Notification) error {
	if err := s.repo.InsertBatch(ctx, batch); err != nil {
		return err
	}
	for _, n := range batch {
		s.hub.Publish(n.RecipientID, sse.Event{Name: EventName, Data: notification.ToResponse(n)})
	}
	slog.Debug("Notifications stored", "count", len(batch))
	return nil
}

func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if req.RecipientID == "" {
		return nil
	}

	n := notification.Notification{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   req.CompanyID,
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   s.now(),
	}

	if s.enqueue(n) {
		return nil
	}
	return s.store(ctx, []notification.Notification{n})
}

// enqueue hands n to the writer. It reports false once the writer is
// stopping or the queue is full.
func (s *service) enqueue(n notification.Notification) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.pending <- n:
		return true
	default:
		slog.Warn("Notification queue full, storing synchronously", "recipient_id", n.RecipientID)
		return false
	}
}

func (s *service) List(ctx context.Context, userID string, filter notification.ListFilter) (notification.NotificationListResponse, error) {
	filter = filter.Normalize()

	items, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}
	counts, err := s.repo.Count(ctx, userID)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	total := counts.Total
	if filter.UnreadOnly {
		total = counts.Unread
	}

	responses := make([]notification.NotificationResponse, 0, len(items))
	for _, n := range items {
		responses = append(responses, notification.ToResponse(n))
	}
	return notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   counts.Unread,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	counts, err := s.repo.Count(ctx, userID)
	if err != nil {
		return 0, err
	}
	return counts.Unread, nil
}

func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := s.repo.MarkRead(ctx, userID, req.NotificationIDs)
	return err
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := s.repo.MarkAllRead(ctx, userID)
	return err
}

func (s *service) Delete(ctx context.Context, userID, notificationID string) error {
	return s.repo.Delete(ctx, userID, notificationID)
}

func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.NotificationResponse, func()) {
	sub := s.hub.Subscribe(userID)
	out := make(chan notification.NotificationResponse)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				resp, ok := ev.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- resp:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub.Close
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.done)
		s.mu.Unlock()
		<-s.stopped
		slog.Info("Notification writer stopped")
	})
}
