package calendar

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
	ical "github.com/arran4/golang-ical"
)

const (
	icsProductID = "-//Kioku//Calendar Export//EN"
	icsUIDDomain = "kioku"
	yearlyRule   = "FREQ=YEARLY"
)

// ExportICS renders the stored events as an iCalendar feed: one all-day
// VEVENT per event, repeating yearly for recurring types.
func (s *Service) ExportICS(ctx context.Context) (string, error) {
	mapping, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := s.nowFn().UTC()
	for _, evt := range eventstore.Flatten(mapping) {
		start, err := time.Parse(v1.DateLayout, string(evt.Date))
		if err != nil {
			continue
		}

		vevent := cal.AddEvent(EventUID(evt.ID))
		vevent.SetDtStampTime(stamp)
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
		vevent.SetSummary(evt.Title)
		if evt.Description != "" {
			vevent.SetDescription(evt.Description)
		}
		vevent.SetProperty(ical.ComponentPropertyCategories, string(evt.Type))
		if evt.Recurring() {
			vevent.AddRrule(yearlyRule)
		}
	}

	return cal.Serialize(), nil
}

// EventUID is the iCalendar UID of a stored event.
func EventUID(id v1.EventID) string {
	return fmt.Sprintf("%s@%s", id, icsUIDDomain)
}
