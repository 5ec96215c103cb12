package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
	"github.com/Jomes01/Kioku/internal/recurrence"
	"github.com/Jomes01/Kioku/internal/reminder"
	"github.com/Jomes01/Kioku/internal/search"
)

// DefaultSuggestionLimit caps the fuzzy suggestions returned with an empty search.
const DefaultSuggestionLimit = 5

// EventRef points at a stored event. ID may be an occurrence id of a
// synthetic yearly instance; it is resolved to the original event. Date, when
// set, must be the date the event is stored under.
type EventRef struct {
	ID   v1.OccurrenceID
	Date v1.DateKey
}

// SearchResponse is the outcome of one search query.
type SearchResponse struct {
	Query       string              `json:"query"`
	Results     []search.Result     `json:"results"`
	Suggestions []search.Suggestion `json:"suggestions,omitempty"`
}

// Service runs the calendar flows on top of the event store, the occurrence
// index and the reminder scheduler.
type Service struct {
	store       *eventstore.Store
	index       *recurrence.IndexCache
	scheduler   *reminder.Scheduler
	coordinator *reminder.Coordinator

	suggestLimit int
	nowFn        func() time.Time

	// flows serializes the cancel, mutate and schedule flows with the
	// reconcile pass, whose sweep would otherwise drop handles registered
	// after it loaded the store.
	flows sync.Mutex
}

// NewService creates a calendar service.
func NewService(store *eventstore.Store, scheduler *reminder.Scheduler, coordinator *reminder.Coordinator) *Service {
	if store == nil {
		panic("calendar: event store is required")
	}
	if scheduler == nil {
		panic("calendar: reminder scheduler is required")
	}
	if coordinator == nil {
		panic("calendar: reschedule coordinator is required")
	}

	return &Service{
		store:        store,
		index:        recurrence.NewIndexCache(),
		scheduler:    scheduler,
		coordinator:  coordinator,
		suggestLimit: DefaultSuggestionLimit,
		nowFn:        time.Now,
	}
}

// ListEvents returns every stored event in flatten order.
func (s *Service) ListEvents(ctx context.Context) ([]v1.EventWithDate, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return eventstore.Flatten(mapping), nil
}

// CreateEvent stores a new event on date and registers its reminders.
func (s *Service) CreateEvent(ctx context.Context, date v1.DateKey, input v1.EventInput) (v1.EventWithDate, error) {
	s.flows.Lock()
	defer s.flows.Unlock()

	_, evt, err := s.store.Upsert(ctx, date, input, nil)
	if err != nil {
		return v1.EventWithDate{}, err
	}

	evt, err = s.schedule(ctx, date, evt)
	if err != nil {
		return v1.EventWithDate{}, err
	}

	slog.Info("[Calendar] Event created",
		"event_id", evt.ID,
		"date", date,
		"reminders", len(evt.NotificationIDs))
	return v1.EventWithDate{Date: date, Event: evt}, nil
}

// UpdateEvent edits the referenced event and may move it to date. An empty
// date keeps the stored date. All reminders of the event are cancelled and
// the enabled ones scheduled again. An id that is not stored creates an
// event carrying that id.
func (s *Service) UpdateEvent(ctx context.Context, ref EventRef, date v1.DateKey, input v1.EventInput) (v1.EventWithDate, error) {
	s.flows.Lock()
	defer s.flows.Unlock()

	existing, found, err := s.resolve(ctx, ref)
	if err != nil {
		return v1.EventWithDate{}, err
	}

	id, _, _ := ref.ID.Split()
	base := v1.Event{ID: id}
	if found {
		id = existing.ID
		base = existing.Event
		if date == "" {
			date = existing.Date
		}
	}

	// Reject bad input before any reminder is cancelled.
	if err := eventstore.ValidateUpdate(date, input, base, found); err != nil {
		return v1.EventWithDate{}, err
	}
	if found {
		s.scheduler.CancelReminder(ctx, existing.Event)
	}

	cleared := []string{}
	input.NotificationIDs = &cleared

	_, evt, err := s.store.Upsert(ctx, date, input, &id)
	if err != nil {
		return v1.EventWithDate{}, err
	}

	evt, err = s.schedule(ctx, date, evt)
	if err != nil {
		return v1.EventWithDate{}, err
	}

	slog.Info("[Calendar] Event updated",
		"event_id", evt.ID,
		"date", date,
		"moved", found && existing.Date != date,
		"reminders", len(evt.NotificationIDs))
	return v1.EventWithDate{Date: date, Event: evt}, nil
}

// DeleteEvent cancels the reminders of the referenced event and removes it.
// It reports whether an event was removed; a missing event is a no-op.
func (s *Service) DeleteEvent(ctx context.Context, ref EventRef) (bool, error) {
	s.flows.Lock()
	defer s.flows.Unlock()

	existing, found, err := s.resolve(ctx, ref)
	if err != nil || !found {
		return false, err
	}

	s.scheduler.CancelReminder(ctx, existing.Event)

	if _, err := s.store.Delete(ctx, existing.Date, existing.ID); err != nil {
		return false, err
	}

	slog.Info("[Calendar] Event deleted", "event_id", existing.ID, "date", existing.Date)
	return true, nil
}

// resolve maps ref to the stored event.
func (s *Service) resolve(ctx context.Context, ref EventRef) (v1.EventWithDate, bool, error) {
	id, _, _ := ref.ID.Split()
	if id == "" {
		return v1.EventWithDate{}, false, &eventstore.ValidationError{Field: "id", Message: "must not be empty"}
	}
	if ref.Date != "" && !ref.Date.Valid() {
		return v1.EventWithDate{}, false, &eventstore.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD calendar date", ref.Date)}
	}

	existing, found, err := s.store.Get(ctx, id)
	if err != nil || !found {
		return v1.EventWithDate{}, false, err
	}
	if ref.Date != "" && existing.Date != ref.Date {
		return v1.EventWithDate{}, false, nil
	}
	return existing, true, nil
}

// schedule registers the enabled reminders of evt and stores the handles.
func (s *Service) schedule(ctx context.Context, date v1.DateKey, evt v1.Event) (v1.Event, error) {
	if !evt.Reminders.Any() {
		return evt, nil
	}

	handles := s.scheduler.ScheduleSmartReminders(ctx, evt, date)
	if len(handles) == 0 && len(evt.NotificationIDs) == 0 {
		return evt, nil
	}

	if _, err := s.store.UpdateNotificationIDs(ctx, date, evt.ID, handles); err != nil {
		return v1.Event{}, fmt.Errorf("persist notification ids of %s: %w", evt.ID, err)
	}
	evt.NotificationIDs = handles
	return evt, nil
}

// EventsOn resolves the occurrences of date.
func (s *Service) EventsOn(ctx context.Context, date v1.DateKey) ([]recurrence.Occurrence, error) {
	if !date.Valid() {
		return nil, &eventstore.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD calendar date", date)}
	}

	mapping, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return recurrence.Resolve(mapping, date, s.index.Get(mapping)), nil
}

// Search ranks the stored events against query. When nothing matches, fuzzy
// title suggestions are returned instead.
func (s *Service) Search(ctx context.Context, query string) (SearchResponse, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return SearchResponse{}, err
	}

	resp := SearchResponse{
		Query:   query,
		Results: search.Search(mapping, query),
	}
	if resp.Results == nil {
		resp.Results = []search.Result{}
	}
	if len(resp.Results) == 0 {
		resp.Suggestions = search.Suggest(mapping, query, s.suggestLimit)
	}
	return resp, nil
}

// Reconcile rebuilds every registered reminder from the stored events.
func (s *Service) Reconcile(ctx context.Context) (reminder.ReconcileReport, error) {
	s.flows.Lock()
	defer s.flows.Unlock()

	mapping, err := s.store.Load(ctx)
	if err != nil {
		return reminder.ReconcileReport{}, err
	}
	return s.coordinator.ReconcileAll(ctx, mapping)
}

// Import creates the seed entries when the store is empty. It returns the
// number of events created.
func (s *Service) Import(ctx context.Context, entries []eventstore.SeedEntry) (int, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if mapping.Len() > 0 {
		slog.Info("[Calendar] Store not empty, skipping seed import", "events", mapping.Len())
		return 0, nil
	}

	created := 0
	for _, entry := range entries {
		if _, err := s.CreateEvent(ctx, entry.Date, entry.Input); err != nil {
			return created, fmt.Errorf("seed event on %s: %w", entry.Date, err)
		}
		created++
	}
	return created, nil
}
