package recurrence

import (
	v1 "github.com/Jomes01/Kioku/internal/api/v1"
)

// Entry is a recurring event filed under its month-day.
type Entry struct {
	Event      v1.Event
	SourceDate v1.DateKey
	OriginalID v1.EventID
}

// Index maps "MM-DD" to the recurring events stored on that month and day in
// any year. It is derived data: rebuild it whenever the mapping changes.
type Index map[string][]Entry

// BuildIndex files every Birthday, Anniversary and Death Anniversary under
// the month-day of its date key. Entries within a month-day follow date order,
// then insertion order. The mapping is not modified.
func BuildIndex(mapping v1.EventsByDate) Index {
	index := make(Index)
	for _, date := range mapping.SortedKeys() {
		if !date.Valid() {
			continue
		}
		md := date.MonthDay()
		for _, evt := range mapping[date] {
			if !evt.Recurring() {
				continue
			}
			index[md] = append(index[md], Entry{
				Event:      evt.Clone(),
				SourceDate: date,
				OriginalID: evt.ID,
			})
		}
	}
	return index
}

// Lookup returns the entries recurring on the month-day of date.
func (idx Index) Lookup(date v1.DateKey) []Entry {
	return idx[date.MonthDay()]
}
