package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
	"github.com/Jomes01/Kioku/internal/recurrence"
)

const (
	// DefaultSummaryItems is the number of titles shown in a day summary.
	DefaultSummaryItems = 2

	// DefaultEmptyLabel is the summary of a day without events.
	DefaultEmptyLabel = "Not a Special Day"

	summarySeparator = " • "
)

// DaySummary renders up to maxItems titles joined by " • ", with a " +N"
// suffix for the rest. Events without a title show their type. maxItems <= 0
// selects DefaultSummaryItems; an empty emptyLabel selects DefaultEmptyLabel.
func DaySummary(occurrences []recurrence.Occurrence, maxItems int, emptyLabel string) string {
	if maxItems <= 0 {
		maxItems = DefaultSummaryItems
	}
	if emptyLabel == "" {
		emptyLabel = DefaultEmptyLabel
	}

	names := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		if title := strings.TrimSpace(occ.Title); title != "" {
			names = append(names, title)
			continue
		}
		if typ := strings.TrimSpace(string(occ.Type)); typ != "" {
			names = append(names, typ)
		}
	}
	if len(names) == 0 {
		return emptyLabel
	}

	shown := names[:min(maxItems, len(names))]
	summary := strings.Join(shown, summarySeparator)
	if rest := len(names) - len(shown); rest > 0 {
		summary = fmt.Sprintf("%s +%d", summary, rest)
	}
	return summary
}

// DayView is the resolved content of one date.
type DayView struct {
	Date        v1.DateKey              `json:"date"`
	Label       string                  `json:"label"`
	Summary     string                  `json:"summary"`
	Occurrences []recurrence.Occurrence `json:"occurrences"`
}

// Day resolves date together with its summary.
func (s *Service) Day(ctx context.Context, date v1.DateKey) (DayView, error) {
	occ, err := s.EventsOn(ctx, date)
	if err != nil {
		return DayView{}, err
	}
	if occ == nil {
		occ = []recurrence.Occurrence{}
	}
	return DayView{
		Date:        date,
		Label:       date.LongLabel(),
		Summary:     DaySummary(occ, DefaultSummaryItems, DefaultEmptyLabel),
		Occurrences: occ,
	}, nil
}

// CategoryCounts counts the stored events per type. Events of an unknown
// type count as Other.
func (s *Service) CategoryCounts(ctx context.Context) (map[v1.EventType]int, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[v1.EventType]int, len(v1.EventTypes))
	for _, typ := range v1.EventTypes {
		counts[typ] = 0
	}
	for _, events := range mapping {
		for _, evt := range events {
			if evt.Type.Known() {
				counts[evt.Type]++
			} else {
				counts[v1.TypeOther]++
			}
		}
	}
	return counts, nil
}

// EventsByCategory lists the stored events of typ by date. An empty stored
// type is listed as Other.
func (s *Service) EventsByCategory(ctx context.Context, typ v1.EventType) ([]v1.EventWithDate, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := []v1.EventWithDate{}
	for _, evt := range eventstore.Flatten(mapping) {
		evtType := evt.Type
		if evtType == "" {
			evtType = v1.TypeOther
		}
		if evtType == typ {
			out = append(out, evt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// MonthAgenda resolves every day of the month and keeps the days with
// events, labelled "Mar 15".
func (s *Service) MonthAgenda(ctx context.Context, year int, month time.Month) ([]DayView, error) {
	if month < time.January || month > time.December {
		return nil, &eventstore.ValidationError{Field: "month", Message: fmt.Sprintf("%d is not between 1 and 12", month)}
	}
	if year < 1 || year > 9999 {
		return nil, &eventstore.ValidationError{Field: "year", Message: fmt.Sprintf("%d is out of range", year)}
	}

	mapping, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	days, err := recurrence.ResolveRange(mapping, v1.NewDateKey(first), v1.NewDateKey(last), s.index.Get(mapping))
	if err != nil {
		return nil, err
	}

	agenda := make([]DayView, 0, len(days))
	for _, day := range days {
		agenda = append(agenda, DayView{
			Date:        day.Date,
			Label:       day.Date.Label(),
			Summary:     DaySummary(day.Occurrences, DefaultSummaryItems, DefaultEmptyLabel),
			Occurrences: day.Occurrences,
		})
	}
	return agenda, nil
}
