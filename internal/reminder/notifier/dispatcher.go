package notifier

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Jomes01/Kioku/internal/reminder"
)

const defaultTickInterval = 30 * time.Second

// Dispatcher is an in-process reminder.Notifier. Pending notifications live in
// memory and are delivered by Run once their fire time has passed.
type Dispatcher struct {
	interval time.Duration
	deliver  func(reminder.Notification)
	nowFn    func() time.Time

	mu      sync.Mutex
	pending map[string]reminder.Notification
}

// NewDispatcher creates a dispatcher that checks for due notifications every
// interval. deliver may be nil; delivery is always logged.
func NewDispatcher(interval time.Duration, deliver func(reminder.Notification)) *Dispatcher {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &Dispatcher{
		interval: interval,
		deliver:  deliver,
		nowFn:    time.Now,
		pending:  make(map[string]reminder.Notification),
	}
}

// Schedule registers n, replacing any pending notification with the same id.
func (d *Dispatcher) Schedule(ctx context.Context, n reminder.Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.pending[n.ID] = n
	d.mu.Unlock()

	return n.ID, nil
}

// Cancel removes a pending notification.
func (d *Dispatcher) Cancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pending[id]; !ok {
		return reminder.ErrNotificationNotFound
	}
	delete(d.pending, id)
	return nil
}

// ListScheduled returns the pending ids in lexical order.
func (d *Dispatcher) ListScheduled(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Pending returns the notification registered under id.
func (d *Dispatcher) Pending(id string) (reminder.Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.pending[id]
	return n, ok
}

// Run delivers due notifications every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("[Dispatcher] Starting notification dispatcher", "interval", d.interval)

	for {
		select {
		case <-ticker.C:
			d.deliverDue(d.nowFn())
		case <-ctx.Done():
			slog.Info("[Dispatcher] Stopping (context cancelled)", "pending", d.count())
			return nil
		}
	}
}

func (d *Dispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// deliverDue removes and delivers every notification firing at or before now,
// earliest first.
func (d *Dispatcher) deliverDue(now time.Time) []reminder.Notification {
	d.mu.Lock()
	var due []reminder.Notification
	for id, n := range d.pending {
		if n.FireAt.After(now) {
			continue
		}
		due = append(due, n)
		delete(d.pending, id)
	}
	d.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].FireAt.Equal(due[j].FireAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].FireAt.Before(due[j].FireAt)
	})

	for _, n := range due {
		slog.Info("[Dispatcher] Reminder due",
			"notification_id", n.ID,
			"title", n.Title,
			"body", n.Body,
			"fire_at", n.FireAt)
		if d.deliver != nil {
			d.deliver(n)
		}
	}
	return due
}
