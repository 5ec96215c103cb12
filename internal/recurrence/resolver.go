package recurrence

import (
	"encoding/json"
	"fmt"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
)

// MaxRangeDays bounds ResolveRange.
const MaxRangeDays = 366

// Occurrence is an event as it applies to one calendar date. ID is the stored
// id for events on their own date and "<originalId>::<date>" for synthetic
// yearly instances; use Ref to get back to the stored event.
type Occurrence struct {
	v1.Event

	ID                  v1.OccurrenceID `json:"id"`
	OriginalID          v1.EventID      `json:"originalId"`
	SourceDate          v1.DateKey      `json:"sourceDate"`
	OccurrenceDate      v1.DateKey      `json:"occurrenceDate"`
	IsRecurringInstance bool            `json:"isRecurringInstance"`
}

// Ref returns the date key and id the event is stored under.
func (o Occurrence) Ref() (v1.DateKey, v1.EventID) {
	return o.SourceDate, o.OriginalID
}

// UnmarshalJSON decodes the occurrence fields that the promoted
// Event.UnmarshalJSON would otherwise drop.
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var meta struct {
		ID                  v1.OccurrenceID `json:"id"`
		OriginalID          v1.EventID      `json:"originalId"`
		SourceDate          v1.DateKey      `json:"sourceDate"`
		OccurrenceDate      v1.DateKey      `json:"occurrenceDate"`
		IsRecurringInstance bool            `json:"isRecurringInstance"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &o.Event); err != nil {
		return err
	}
	o.Event.ID = meta.OriginalID
	o.ID = meta.ID
	o.OriginalID = meta.OriginalID
	o.SourceDate = meta.SourceDate
	o.OccurrenceDate = meta.OccurrenceDate
	o.IsRecurringInstance = meta.IsRecurringInstance
	return nil
}

// Resolve returns the events that apply to date: the events stored on date
// first, then one synthetic instance per recurring event from another year
// that shares the month-day. A nil index is built from mapping.
// An invalid date yields nothing.
func Resolve(mapping v1.EventsByDate, date v1.DateKey, index Index) []Occurrence {
	if !date.Valid() {
		return nil
	}

	stored := mapping[date]
	out := make([]Occurrence, 0, len(stored))
	seen := make(map[v1.EventID]struct{}, len(stored))
	for _, evt := range stored {
		out = append(out, Occurrence{
			Event:          evt.Clone(),
			ID:             v1.OccurrenceID(evt.ID),
			OriginalID:     evt.ID,
			SourceDate:     date,
			OccurrenceDate: date,
		})
		seen[evt.ID] = struct{}{}
	}

	if index == nil {
		index = BuildIndex(mapping)
	}

	for _, entry := range index.Lookup(date) {
		if entry.SourceDate == date {
			continue
		}
		if _, dup := seen[entry.OriginalID]; dup {
			continue
		}
		out = append(out, Occurrence{
			Event:               entry.Event.Clone(),
			ID:                  v1.NewOccurrenceID(entry.OriginalID, date),
			OriginalID:          entry.OriginalID,
			SourceDate:          entry.SourceDate,
			OccurrenceDate:      date,
			IsRecurringInstance: true,
		})
	}

	return out
}

// Day groups the occurrences of one date.
type Day struct {
	Date        v1.DateKey   `json:"date"`
	Occurrences []Occurrence `json:"occurrences"`
}

// ResolveRange resolves every date from..to inclusive and keeps the days that
// have at least one occurrence.
func ResolveRange(mapping v1.EventsByDate, from, to v1.DateKey, index Index) ([]Day, error) {
	start, err := from.In(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", from, err)
	}
	end, err := to.In(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s is before start %s", to, from)
	}

	if index == nil {
		index = BuildIndex(mapping)
	}

	var days []Day
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		n++
		if n > MaxRangeDays {
			return nil, fmt.Errorf("range %s..%s exceeds %d days", from, to, MaxRangeDays)
		}
		date := v1.NewDateKey(d)
		if occ := Resolve(mapping, date, index); len(occ) > 0 {
			days = append(days, Day{Date: date, Occurrences: occ})
		}
	}
	return days, nil
}
