package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Variant selects how a notification is presented.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// DefaultHistory is how many notifications a Feed keeps when no size is given.
const DefaultHistory = 50

// Notification is a short user-facing message about the outcome of an operation.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier receives notifications emitted by the portfolio service.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, Notification) {})

// Feed keeps the most recent notifications in memory, oldest first.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	size   int
	logger *slog.Logger
	now    func() time.Time
}

var _ Notifier = (*Feed)(nil)

// NewFeed creates a Feed that retains at most size notifications.
func NewFeed(size int, logger *slog.Logger) *Feed {
	if size <= 0 {
		size = DefaultHistory
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{size: size, logger: logger, now: time.Now}
}

// Notify stores n, filling ID and CreatedAt when empty, and logs it.
func (f *Feed) Notify(ctx context.Context, n Notification) {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.Variant == "" {
		n.Variant = VariantDefault
	}

	f.mu.Lock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = f.now().UTC()
	}
	f.items = append(f.items, n)
	if over := len(f.items) - f.size; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
	f.mu.Unlock()

	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	f.logger.Log(ctx, level, "notification",
		slog.String("component", "notify"),
		slog.String("notification_id", n.ID),
		slog.String("title", n.Title),
		slog.String("description", n.Description),
		slog.String("variant", string(n.Variant)),
	)
}

// List returns the notifications after sinceID. An empty or unknown sinceID returns the whole history.
func (f *Feed) List(sinceID string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := 0
	if sinceID != "" {
		for i := range f.items {
			if f.items[i].ID == sinceID {
				start = i + 1
				break
			}
		}
	}
	out := make([]Notification, len(f.items)-start)
	copy(out, f.items[start:])
	return out
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
