// Package notify routes user-facing notifications from anywhere in the TUI
// to the toast stack and the log.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/notify"
)

const defaultHistory = 100

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. Subscribers run inline
// on the publishing goroutine; the Bus keeps a bounded in-memory history.
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
	history     []notify.Notification
	limit       int
	nextID      int64
	log         zerolog.Logger
}

// NewBus creates a bus that remembers the last defaultHistory notifications.
func NewBus() *Bus {
	return &Bus{
		limit: defaultHistory,
		log:   logging.Component("notify"),
	}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish assigns an ID, records the notification, logs it and dispatches
// it to all subscribers.
func (b *Bus) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.nextID++
	n.ID = b.nextID
	b.history = append(b.history, n)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	b.logNotification(n)

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) logNotification(n notify.Notification) {
	ev := b.log.Info()
	switch n.Level {
	case notify.LevelError:
		ev = b.log.Error()
	case notify.LevelWarning:
		ev = b.log.Warn()
	}
	ev.Int64("id", n.ID).Msg(n.Message)
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelError,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf(format, args...),
	})
}

// History returns recorded notifications, newest first.
func (b *Bus) History() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]notify.Notification, len(b.history))
	for i, n := range b.history {
		out[len(b.history)-1-i] = n
	}
	return out
}

// Clear forgets the recorded history.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}
