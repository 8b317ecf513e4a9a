// Package notify collects transient user-facing notifications.
// Containers push outcomes of update/delete operations here; the
// dashboard drains and renders them as toasts.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Level classifies a notification for rendering.
type Level int

const (
	Info Level = iota
	Success
	Error
)

// Notification is a single transient message.
type Notification struct {
	ID      string
	Level   Level
	Message string
}

// Notifier is a concurrency-safe queue of pending notifications.
// The zero value is ready to use.
type Notifier struct {
	mu      sync.Mutex
	pending []Notification
}

func (n *Notifier) push(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
	})
}

// Info queues an informational notification.
func (n *Notifier) Info(message string) { n.push(Info, message) }

// Success queues a success notification.
func (n *Notifier) Success(message string) { n.push(Success, message) }

// Error queues an error notification.
func (n *Notifier) Error(message string) { n.push(Error, message) }

// Drain returns all pending notifications in arrival order and
// clears the queue.
func (n *Notifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
