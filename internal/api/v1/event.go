package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EventID is the stored, immutable identity of an event.
type EventID string

// OccurrenceID identifies a resolved occurrence. For exact-date occurrences it
// equals the EventID; synthetic recurring instances use "<eventId>::<date>".
// It is a distinct type so an occurrence id is never handed to the store.
type OccurrenceID string

// OccurrenceSeparator joins the original id and the occurrence date.
const OccurrenceSeparator = "::"

// NewOccurrenceID builds the composite id of a synthetic recurring instance.
func NewOccurrenceID(id EventID, date DateKey) OccurrenceID {
	return OccurrenceID(string(id) + OccurrenceSeparator + string(date))
}

// Split returns the original event id and, for synthetic instances, the
// occurrence date. ok is false when the id has no occurrence suffix.
func (o OccurrenceID) Split() (EventID, DateKey, bool) {
	raw := string(o)
	idx := strings.LastIndex(raw, OccurrenceSeparator)
	if idx < 0 {
		return EventID(raw), "", false
	}
	return EventID(raw[:idx]), DateKey(raw[idx+len(OccurrenceSeparator):]), true
}

// EventType classifies an event. Birthday, Anniversary and Death Anniversary
// repeat every year on the month and day of their stored date.
type EventType string

const (
	TypeBirthday         EventType = "Birthday"
	TypeAnniversary      EventType = "Anniversary"
	TypeDeathAnniversary EventType = "Death Anniversary"
	TypeOther            EventType = "Other"
)

// EventTypes lists the known types in display order.
var EventTypes = []EventType{TypeBirthday, TypeAnniversary, TypeDeathAnniversary, TypeOther}

// Known reports whether t is one of the four writable types.
func (t EventType) Known() bool {
	switch t {
	case TypeBirthday, TypeAnniversary, TypeDeathAnniversary, TypeOther:
		return true
	}
	return false
}

// Recurring reports whether events of this type repeat yearly.
// Unknown types read back from storage are never recurring.
func (t EventType) Recurring() bool {
	switch t {
	case TypeBirthday, TypeAnniversary, TypeDeathAnniversary:
		return true
	}
	return false
}

// ReminderKind names one of the three reminder offsets.
type ReminderKind string

const (
	ReminderSameDay       ReminderKind = "sameDay"
	ReminderOneDayBefore  ReminderKind = "oneDayBefore"
	ReminderOneWeekBefore ReminderKind = "oneWeekBefore"
)

// ReminderKinds is the fixed evaluation order of reminder kinds.
var ReminderKinds = []ReminderKind{ReminderSameDay, ReminderOneDayBefore, ReminderOneWeekBefore}

// OffsetDays is the number of days the reminder fires before the occurrence.
func (k ReminderKind) OffsetDays() int {
	switch k {
	case ReminderOneDayBefore:
		return 1
	case ReminderOneWeekBefore:
		return 7
	}
	return 0
}

// Reminders holds the per-kind reminder flags of an event.
type Reminders struct {
	SameDay       bool `json:"sameDay"`
	OneDayBefore  bool `json:"oneDayBefore"`
	OneWeekBefore bool `json:"oneWeekBefore"`
}

// DefaultReminders are applied to new events that omit reminder flags.
func DefaultReminders() Reminders {
	return Reminders{SameDay: true, OneDayBefore: true}
}

// Enabled reports whether the given kind is switched on.
func (r Reminders) Enabled(kind ReminderKind) bool {
	switch kind {
	case ReminderSameDay:
		return r.SameDay
	case ReminderOneDayBefore:
		return r.OneDayBefore
	case ReminderOneWeekBefore:
		return r.OneWeekBefore
	}
	return false
}

// Any reports whether at least one reminder is enabled.
func (r Reminders) Any() bool {
	return r.SameDay || r.OneDayBefore || r.OneWeekBefore
}

// Event is a user-defined calendar entry. The date it belongs to is the key it
// is stored under, not a field of the record.
type Event struct {
	ID          EventID   `json:"id"`
	Title       string    `json:"title"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Reminders   Reminders `json:"reminders"`

	// NotificationIDs are the handles returned by the notification service
	// for the reminders currently registered for this event.
	NotificationIDs []string `json:"notificationIds"`
}

// Recurring reports whether the event repeats yearly.
func (e Event) Recurring() bool {
	return e.Type.Recurring()
}

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	out := e
	out.NotificationIDs = append([]string{}, e.NotificationIDs...)
	return out
}

// Validate checks the fields every written event must carry.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !e.Type.Known() {
		return fmt.Errorf("type %q is not one of %v", e.Type, EventTypes)
	}
	return nil
}

// StoredEvent mirrors Event with the loosely typed fields older records may
// carry: a legacy top-level reminder flag, reminder flags of any JSON type and
// notification ids that are not an array.
type StoredEvent struct {
	ID              EventID                    `json:"id"`
	Title           string                     `json:"title"`
	Type            EventType                  `json:"type"`
	Description     string                     `json:"description"`
	Reminders       map[string]json.RawMessage `json:"reminders"`
	Reminder        json.RawMessage            `json:"reminder"`
	NotificationIDs json.RawMessage            `json:"notificationIds"`
}

// UnmarshalJSON decodes an event and normalizes legacy shapes.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw StoredEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = NormalizeEvent(raw)
	return nil
}

// NormalizeEvent converts a stored record into the current shape.
// A present reminders object has each flag coerced to bool. Otherwise the
// legacy reminder flag maps to sameDay (anything but an explicit false is on)
// and the other kinds are off. Non-array notification ids become empty.
func NormalizeEvent(raw StoredEvent) Event {
	evt := Event{
		ID:          raw.ID,
		Title:       raw.Title,
		Type:        raw.Type,
		Description: raw.Description,
	}

	if raw.Reminders != nil {
		evt.Reminders = Reminders{
			SameDay:       truthy(raw.Reminders[string(ReminderSameDay)]),
			OneDayBefore:  truthy(raw.Reminders[string(ReminderOneDayBefore)]),
			OneWeekBefore: truthy(raw.Reminders[string(ReminderOneWeekBefore)]),
		}
	} else {
		evt.Reminders = Reminders{SameDay: !bytes.Equal(bytes.TrimSpace(raw.Reminder), []byte("false"))}
	}

	evt.NotificationIDs = []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw.NotificationIDs, &items); err == nil {
		for _, item := range items {
			var id string
			if json.Unmarshal(item, &id) == nil {
				evt.NotificationIDs = append(evt.NotificationIDs, id)
			}
		}
	}

	return evt
}

// truthy applies JSON truthiness: false, null, 0, "" and absent are false.
func truthy(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	switch s {
	case "", "false", "null", `""`, "0":
		return false
	}
	if n, ok := parseNumber(s); ok {
		return n != 0
	}
	return true
}

func parseNumber(s string) (float64, bool) {
	var n float64
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return 0, false
	}
	return n, true
}

// EventWithDate is an event together with the date key it is stored under.
type EventWithDate struct {
	Date DateKey `json:"date"`
	Event
}

// UnmarshalJSON keeps the date that the promoted Event.UnmarshalJSON would
// otherwise drop.
func (e *EventWithDate) UnmarshalJSON(data []byte) error {
	var date struct {
		Date DateKey `json:"date"`
	}
	if err := json.Unmarshal(data, &date); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &e.Event); err != nil {
		return err
	}
	e.Date = date.Date
	return nil
}

// EventInput carries the fields of a create or update request. Nil fields are
// left untouched when merged over an existing event.
type EventInput struct {
	Title           *string    `json:"title,omitempty"`
	Type            *EventType `json:"type,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Reminders       *Reminders `json:"reminders,omitempty"`
	NotificationIDs *[]string  `json:"notificationIds,omitempty"`
}

// ApplyTo merges the set fields of in over base. Title and description are
// trimmed; an empty type falls back to Other.
func (in EventInput) ApplyTo(base Event) Event {
	out := base.Clone()
	if in.Title != nil {
		out.Title = strings.TrimSpace(*in.Title)
	}
	if in.Type != nil {
		out.Type = *in.Type
	}
	if out.Type == "" {
		out.Type = TypeOther
	}
	if in.Description != nil {
		out.Description = strings.TrimSpace(*in.Description)
	}
	if in.Reminders != nil {
		out.Reminders = *in.Reminders
	}
	if in.NotificationIDs != nil {
		out.NotificationIDs = append([]string{}, (*in.NotificationIDs)...)
	}
	if out.NotificationIDs == nil {
		out.NotificationIDs = []string{}
	}
	return out
}
