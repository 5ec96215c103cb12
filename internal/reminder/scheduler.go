package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
)

const defaultCallTimeout = 5 * time.Second

// Scheduler turns an event's reminder flags into registered notifications.
type Scheduler struct {
	notifier    Notifier
	triggers    TriggerConfig
	callTimeout time.Duration
	nowFn       func() time.Time
}

func NewScheduler(notifier Notifier, triggers TriggerConfig, callTimeout time.Duration) *Scheduler {
	if notifier == nil {
		panic("reminder: notifier is required")
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Scheduler{
		notifier:    notifier,
		triggers:    triggers,
		callTimeout: callTimeout,
		nowFn:       time.Now,
	}
}

// ScheduleSmartReminders registers every future trigger of event anchored on
// date and returns the handles that were registered. A failed registration is
// logged and left out; the remaining kinds are still attempted.
func (s *Scheduler) ScheduleSmartReminders(ctx context.Context, event v1.Event, anchor v1.DateKey) []string {
	triggers := s.triggers.Compute(event, anchor, s.nowFn())
	scheduled := make([]string, 0, len(triggers))

	for _, trig := range triggers {
		n := buildNotification(event, anchor, trig)

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		handle, err := s.notifier.Schedule(callCtx, n)
		cancel()
		if err != nil {
			slog.Warn("[Reminder] Failed to register notification",
				"event_id", event.ID,
				"kind", trig.Kind,
				"fires_at", trig.FiresAt,
				"error", err)
			continue
		}
		if handle == "" {
			handle = n.ID
		}
		scheduled = append(scheduled, handle)
	}

	slog.Debug("[Reminder] Scheduled reminders",
		"event_id", event.ID,
		"date", anchor,
		"count", len(scheduled))
	return scheduled
}

func buildNotification(event v1.Event, anchor v1.DateKey, trig Trigger) Notification {
	typ := event.Type
	if typ == "" {
		typ = v1.TypeOther
	}
	return Notification{
		ID:    trig.NotificationID,
		Title: titleFor(trig.Kind, event.Title),
		Body:  fmt.Sprintf("%s - %s", typ, anchor.LongLabel()),
		Data: map[string]string{
			"eventId": string(event.ID),
			"date":    string(anchor),
		},
		FireAt: trig.FiresAt,
	}
}

func titleFor(kind v1.ReminderKind, title string) string {
	switch kind {
	case v1.ReminderOneDayBefore:
		return "⏰ Tomorrow: " + title
	case v1.ReminderOneWeekBefore:
		return "📅 In 1 week: " + title
	}
	return "🎂 Today: " + title
}

// CancelReminder cancels the stored handles of event and the three well-known
// ids, in case handles were never persisted. It never fails.
func (s *Scheduler) CancelReminder(ctx context.Context, event v1.Event) {
	for _, id := range event.NotificationIDs {
		s.cancel(ctx, id)
	}
	if event.ID == "" {
		return
	}
	for _, kind := range v1.ReminderKinds {
		s.cancel(ctx, NotificationID(event.ID, kind))
	}
}

// cancel reports whether a notification was actually removed.
func (s *Scheduler) cancel(ctx context.Context, id string) bool {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	err := s.notifier.Cancel(callCtx, id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotificationNotFound):
		slog.Debug("[Reminder] Notification already gone", "notification_id", id)
	default:
		slog.Warn("[Reminder] Failed to cancel notification", "notification_id", id, "error", err)
	}
	return false
}
