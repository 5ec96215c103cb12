package reminder

import (
	"context"
	"errors"
	"time"
)

// ErrNotificationNotFound is returned by Notifier.Cancel for unknown ids.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification is one point-in-time reminder handed to a Notifier.
type Notification struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
	FireAt time.Time         `json:"fire_at"`
}

// Notifier registers and cancels notifications. Scheduling an id that is
// already registered replaces it.
type Notifier interface {
	// Schedule registers n and returns the handle to cancel it with.
	Schedule(ctx context.Context, n Notification) (string, error)

	// Cancel removes a registered notification or returns ErrNotificationNotFound.
	Cancel(ctx context.Context, id string) error

	// ListScheduled returns the handles of every pending notification.
	ListScheduled(ctx context.Context) ([]string, error)
}
