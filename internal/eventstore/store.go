package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/core/storage"
	"github.com/google/uuid"
)

// StorageKey is the blob key holding the whole mapping.
const StorageKey = "@kioku_events"

const defaultTimeout = 5 * time.Second

// Store is the canonical date -> events mapping, persisted as one JSON blob.
// Every mutation is a load-modify-save round trip serialized by mu.
type Store struct {
	blobs   storage.BlobStore
	timeout time.Duration
	newID   func() v1.EventID

	mu sync.Mutex
}

// NewStore wires the store to a blob backend. timeout bounds each blob call;
// zero selects the default.
func NewStore(blobs storage.BlobStore, timeout time.Duration) *Store {
	if blobs == nil {
		panic("eventstore: blob store is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		blobs:   blobs,
		timeout: timeout,
		newID:   func() v1.EventID { return v1.EventID(uuid.NewString()) },
	}
}

// Load returns the current mapping. It never fails: a missing key, corrupt
// content or an unreachable backend all yield an empty mapping.
func (s *Store) Load(ctx context.Context) (v1.EventsByDate, error) {
	mapping, err := s.read(ctx)
	if err != nil {
		slog.Warn("[EventStore] Load failed, using empty store", "error", err)
		return v1.EventsByDate{}, nil
	}
	return mapping, nil
}

// read fetches and decodes the blob. Only backend failures are returned;
// undecodable content is logged and treated as empty.
func (s *Store) read(ctx context.Context) (v1.EventsByDate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.blobs.Get(callCtx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return v1.EventsByDate{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	return decode(data), nil
}

func decode(data []byte) v1.EventsByDate {
	out := v1.EventsByDate{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out
	}

	var raw map[v1.DateKey][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("[EventStore] Stored events are corrupt, starting empty", "error", err)
		return out
	}

	for date, items := range raw {
		events := make([]v1.Event, 0, len(items))
		for i, item := range items {
			var evt v1.Event
			if err := json.Unmarshal(item, &evt); err != nil {
				slog.Warn("[EventStore] Skipping unreadable event",
					"date", date,
					"index", i,
					"error", err)
				continue
			}
			events = append(events, evt)
		}
		if len(events) > 0 {
			out[date] = events
		}
	}
	return out
}

// Save replaces the stored mapping. Failures satisfy errors.Is(err, ErrStorageWrite).
func (s *Store) Save(ctx context.Context, mapping v1.EventsByDate) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.blobs.Set(callCtx, StorageKey, data); err != nil {
		slog.Warn("[EventStore] Save failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// Upsert creates an event under dateKey or, when existingID is set, moves and
// updates that event. Fields left nil in partial keep their current values.
// An existingID that is not stored creates a new event carrying that id.
// Returns the updated mapping and the stored event.
func (s *Store) Upsert(ctx context.Context, dateKey v1.DateKey, partial v1.EventInput, existingID *v1.EventID) (v1.EventsByDate, v1.Event, error) {
	if err := validateInput(dateKey, partial); err != nil {
		return nil, v1.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read(ctx)
	if err != nil {
		return nil, v1.Event{}, err
	}

	base := v1.Event{
		ID:              s.newID(),
		Reminders:       v1.DefaultReminders(),
		NotificationIDs: []string{},
	}
	var (
		oldDate v1.DateKey
		oldIdx  int
		found   bool
	)
	if existingID != nil && *existingID != "" {
		base.ID = *existingID
		oldDate, oldIdx, found = mapping.Find(*existingID)
		if found {
			base = mapping[oldDate][oldIdx]
		}
	}

	if err := validateMerge(partial, base, found); err != nil {
		return nil, v1.Event{}, err
	}
	merged := partial.ApplyTo(base)

	if found {
		removeAt(mapping, oldDate, oldIdx)
	}
	mapping[dateKey] = append(mapping[dateKey], merged)

	if err := s.Save(ctx, mapping); err != nil {
		return nil, v1.Event{}, err
	}

	slog.Debug("[EventStore] Upserted event",
		"event_id", merged.ID,
		"date", dateKey,
		"moved_from", oldDate,
		"updated", found)

	return mapping, merged.Clone(), nil
}

func validateInput(dateKey v1.DateKey, partial v1.EventInput) error {
	if !dateKey.Valid() {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD calendar date", dateKey)}
	}
	if partial.Title != nil && strings.TrimSpace(*partial.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if partial.Type != nil && *partial.Type != "" && !partial.Type.Known() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("%q is not one of %v", *partial.Type, v1.EventTypes)}
	}
	return nil
}

// validateMerge checks the event partial would produce over base. A new
// event may not carry an id containing the occurrence separator.
func validateMerge(partial v1.EventInput, base v1.Event, stored bool) error {
	if !stored && strings.Contains(string(base.ID), v1.OccurrenceSeparator) {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("must not contain %q", v1.OccurrenceSeparator)}
	}
	if strings.TrimSpace(partial.ApplyTo(base).Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	return nil
}

// ValidateUpdate runs the checks Upsert applies when partial is merged over
// base under dateKey, without touching storage. stored reports whether base
// is an existing event.
func ValidateUpdate(dateKey v1.DateKey, partial v1.EventInput, base v1.Event, stored bool) error {
	if err := validateInput(dateKey, partial); err != nil {
		return err
	}
	return validateMerge(partial, base, stored)
}

// removeAt deletes one event and prunes the date key when it empties.
func removeAt(mapping v1.EventsByDate, date v1.DateKey, idx int) {
	list := mapping[date]
	list = append(list[:idx:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(mapping, date)
		return
	}
	mapping[date] = list
}

// UpdateNotificationIDs replaces the stored handles of one event. A missing
// event is a no-op and nothing is written.
func (s *Store) UpdateNotificationIDs(ctx context.Context, dateKey v1.DateKey, eventID v1.EventID, ids []string) (v1.EventsByDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	list := mapping[dateKey]
	for i := range list {
		if list[i].ID != eventID {
			continue
		}
		list[i].NotificationIDs = append([]string{}, ids...)
		if err := s.Save(ctx, mapping); err != nil {
			return nil, err
		}
		return mapping, nil
	}

	slog.Debug("[EventStore] Notification ids not updated, event missing",
		"event_id", eventID,
		"date", dateKey)
	return mapping, nil
}

// Delete removes an event from dateKey. Deleting a missing event writes
// nothing and returns the current mapping.
func (s *Store) Delete(ctx context.Context, dateKey v1.DateKey, eventID v1.EventID) (v1.EventsByDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	for i, evt := range mapping[dateKey] {
		if evt.ID != eventID {
			continue
		}
		removeAt(mapping, dateKey, i)
		if err := s.Save(ctx, mapping); err != nil {
			return nil, err
		}
		slog.Debug("[EventStore] Deleted event", "event_id", eventID, "date", dateKey)
		return mapping, nil
	}

	return mapping, nil
}

// Get locates an event by id across all dates.
func (s *Store) Get(ctx context.Context, eventID v1.EventID) (v1.EventWithDate, bool, error) {
	mapping, err := s.Load(ctx)
	if err != nil {
		return v1.EventWithDate{}, false, err
	}
	date, idx, ok := mapping.Find(eventID)
	if !ok {
		return v1.EventWithDate{}, false, nil
	}
	return v1.EventWithDate{Date: date, Event: mapping[date][idx]}, true, nil
}

// Flatten lists every event with its date: dates ascending, then insertion
// order within a date.
func Flatten(mapping v1.EventsByDate) []v1.EventWithDate {
	out := make([]v1.EventWithDate, 0, mapping.Len())
	for _, date := range mapping.SortedKeys() {
		for _, evt := range mapping[date] {
			out = append(out, v1.EventWithDate{Date: date, Event: evt.Clone()})
		}
	}
	return out
}
