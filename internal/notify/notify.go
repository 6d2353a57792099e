// Package notify delivers transient, user-visible notifications (toasts).
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/applydash/internal/pubsub"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

const (
	// DefaultTTL is how long a toast stays on screen.
	DefaultTTL = 5 * time.Second
	// maxActive bounds the toasts kept for late page loads.
	maxActive = 20
)

// Notification is one transient message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// TopicCreated is published once for every notification a Center accepts.
var TopicCreated = pubsub.NewEvent[Notification]("dashboard.notification.created")

// Center is the dashboard's Notifier. It keeps the currently visible toasts
// and announces new ones on the bus. Safe for concurrent use.
type Center struct {
	mu        sync.Mutex
	active    []Notification
	ttl       time.Duration
	publisher pubsub.Publisher
	now       func() time.Time
}

// NewCenter creates a Center that publishes on pub.
func NewCenter(pub pubsub.Publisher) *Center {
	return &Center{
		ttl:       DefaultTTL,
		publisher: pub,
		now:       time.Now,
	}
}

// Notify records and publishes a notification. Publishing failures are
// logged; a toast that cannot be delivered must not fail the caller.
func (c *Center) Notify(ctx context.Context, level Level, message string) {
	now := c.now()
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.active = append(c.prune(now), n)
	if len(c.active) > maxActive {
		c.active = c.active[len(c.active)-maxActive:]
	}
	c.mu.Unlock()

	slog.Log(ctx, logLevel(level), "Notification", "level", level, "message", message, "id", n.ID)

	if c.publisher == nil {
		return
	}
	if err := pubsub.Publish(ctx, c.publisher, TopicCreated, "notify", n); err != nil {
		slog.Error("Failed to publish notification", "id", n.ID, "error", err)
	}
}

// Active returns the notifications that have not expired yet, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = c.prune(c.now())
	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

// prune drops expired entries. Callers hold c.mu.
func (c *Center) prune(now time.Time) []Notification {
	kept := c.active[:0]
	for _, n := range c.active {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}

func logLevel(level Level) slog.Level {
	if level == LevelError {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Console writes notifications to a terminal, one per line.
type Console struct {
	W  io.Writer
	mu sync.Mutex
}

// Notify implements Notifier.
func (c *Console) Notify(_ context.Context, level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.W, "[%s] %s\n", level, message)
}
