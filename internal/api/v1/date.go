package v1

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the layout of a date key.
const DateLayout = "2006-01-02"

// DateKey is a local calendar date formatted as YYYY-MM-DD.
type DateKey string

// NewDateKey formats t in its own location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// ParseDateKey validates s as a real calendar date.
func ParseDateKey(s string) (DateKey, error) {
	d := DateKey(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fmt.Errorf("date %q is not a valid YYYY-MM-DD calendar date", s)
	}
	return d, nil
}

// Valid reports whether d parses as a calendar date.
func (d DateKey) Valid() bool {
	if len(d) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// In returns midnight of d in loc.
func (d DateKey) In(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, string(d), loc)
}

// MonthDay returns the "MM-DD" part of the key, or "" when d is too short.
func (d DateKey) MonthDay() string {
	if len(d) < len(DateLayout) {
		return ""
	}
	return string(d[5:10])
}

// Month returns the month of d, or 0 when d is not valid.
func (d DateKey) Month() time.Month {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return 0
	}
	return t.Month()
}

// Digits returns the key with every non-digit removed.
func (d DateKey) Digits() string {
	return DigitsOf(string(d))
}

// Label formats d as "Mar 15".
func (d DateKey) Label() string {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return string(d)
	}
	return t.Format("Jan 2")
}

// LongLabel formats d as "Mar 15, 2024".
func (d DateKey) LongLabel() string {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return string(d)
	}
	return t.Format("Jan 2, 2006")
}

// AddDays shifts d by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return NewDateKey(t.AddDate(0, 0, n))
}

// DigitsOf strips every non-digit rune from s.
func DigitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EventsByDate is the canonical store content: events grouped under the date
// key they were created on, in insertion order.
type EventsByDate map[DateKey][]Event

// Clone deep-copies the mapping.
func (m EventsByDate) Clone() EventsByDate {
	out := make(EventsByDate, len(m))
	for key, events := range m {
		copied := make([]Event, len(events))
		for i, evt := range events {
			copied[i] = evt.Clone()
		}
		out[key] = copied
	}
	return out
}

// SortedKeys returns the date keys in ascending order.
func (m EventsByDate) SortedKeys() []DateKey {
	keys := make([]DateKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Find locates an event by id across every date.
func (m EventsByDate) Find(id EventID) (DateKey, int, bool) {
	for _, key := range m.SortedKeys() {
		for i, evt := range m[key] {
			if evt.ID == id {
				return key, i, true
			}
		}
	}
	return "", -1, false
}

// Len returns the number of events across all dates.
func (m EventsByDate) Len() int {
	n := 0
	for _, events := range m {
		n += len(events)
	}
	return n
}
