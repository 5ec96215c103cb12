package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
)

// NotificationIDWriter persists the handles registered for one event.
type NotificationIDWriter interface {
	UpdateNotificationIDs(ctx context.Context, dateKey v1.DateKey, eventID v1.EventID, ids []string) (v1.EventsByDate, error)
}

// ReconcileReport summarizes one ReconcileAll pass.
type ReconcileReport struct {
	Cancelled     int `json:"cancelled"`
	Scheduled     int `json:"scheduled"`
	EventsUpdated int `json:"events_updated"`
	Failures      int `json:"failures"`
}

// Coordinator rebuilds the registered notifications from the whole store.
type Coordinator struct {
	scheduler *Scheduler
	store     NotificationIDWriter
}

func NewCoordinator(scheduler *Scheduler, store NotificationIDWriter) *Coordinator {
	if scheduler == nil || store == nil {
		panic("reminder: coordinator requires a scheduler and a store")
	}
	return &Coordinator{scheduler: scheduler, store: store}
}

// ReconcileAll cancels every kioku- notification, then schedules the
// reminders of every event in mapping and stores the new handles. Running it
// twice leaves the same state. A failed listing skips the sweep; a failed
// store write is counted and the pass continues, returning the first error.
func (c *Coordinator) ReconcileAll(ctx context.Context, mapping v1.EventsByDate) (ReconcileReport, error) {
	var report ReconcileReport

	report.Cancelled = c.sweep(ctx)

	var firstErr error
	for _, item := range eventstore.Flatten(mapping) {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reconcile interrupted: %w", err)
		}

		ids := []string{}
		if item.Reminders.Any() {
			ids = c.scheduler.ScheduleSmartReminders(ctx, item.Event, item.Date)
			report.Scheduled += len(ids)
		}

		if slices.Equal(ids, item.NotificationIDs) {
			continue
		}

		if _, err := c.store.UpdateNotificationIDs(ctx, item.Date, item.ID, ids); err != nil {
			report.Failures++
			slog.Warn("[Reconcile] Failed to store notification ids",
				"event_id", item.ID,
				"date", item.Date,
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		report.EventsUpdated++
	}

	slog.Info("[Reconcile] Reminders rebuilt",
		"cancelled", report.Cancelled,
		"scheduled", report.Scheduled,
		"events_updated", report.EventsUpdated,
		"failures", report.Failures)

	if firstErr != nil {
		return report, fmt.Errorf("reconcile: %d event(s) not updated: %w", report.Failures, firstErr)
	}
	return report, nil
}

func (c *Coordinator) sweep(ctx context.Context) int {
	listCtx, cancel := context.WithTimeout(ctx, c.scheduler.callTimeout)
	scheduled, err := c.scheduler.notifier.ListScheduled(listCtx)
	cancel()
	if err != nil {
		slog.Warn("[Reconcile] Cannot list scheduled notifications, skipping sweep", "error", err)
		return 0
	}

	cancelled := 0
	for _, id := range scheduled {
		if !strings.HasPrefix(id, IDPrefix) {
			continue
		}
		if c.scheduler.cancel(ctx, id) {
			cancelled++
		}
	}
	return cancelled
}
