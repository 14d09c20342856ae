// Package notifier delivers the transient "toast" notifications the store
// emits after successful mutations. The feed fans each toast out to every
// subscriber (the SSE surface, tests) without ever blocking a mutation.
package notifier

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast is a single transient user-visible notification.
type Toast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Feed is an in-process toast fan-out. Publishing never blocks: a toast
// destined for a subscriber whose channel is full is dropped for that
// subscriber only.
type Feed struct {
	buffer int

	mu          sync.Mutex
	subscribers map[string]chan Toast
	closed      bool
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 32
	}
	return &Feed{
		buffer:      buffer,
		subscribers: make(map[string]chan Toast),
	}
}

// Toast publishes a notification to all current subscribers.
func (f *Feed) Toast(title, description string) {
	t := Toast{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for id, ch := range f.subscribers {
		select {
		case ch <- t:
		default:
			slog.Warn("Dropping toast for slow subscriber", "subscriber", id, "title", title)
		}
	}
}

// Subscribe registers a new consumer and returns its ID and channel.
// The channel is closed on Unsubscribe or Close.
func (f *Feed) Subscribe() (string, <-chan Toast) {
	id := uuid.NewString()
	ch := make(chan Toast, f.buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return id, ch
	}
	f.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a consumer and closes its channel. Unknown IDs are a
// no-op.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.subscribers[id]; ok {
		delete(f.subscribers, id)
		close(ch)
	}
}

// Close shuts the feed down and closes all subscriber channels.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subscribers {
		delete(f.subscribers, id)
		close(ch)
	}
}

// LogSink is a Toaster for headless runs and tests: it just logs.
type LogSink struct{}

func (LogSink) Toast(title, description string) {
	slog.Info("Toast", "title", title, "description", description)
}
