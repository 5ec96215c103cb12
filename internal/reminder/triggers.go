package reminder

import (
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/teambition/rrule-go"
)

// IDPrefix starts every notification id this package registers.
const IDPrefix = "kioku-"

// DefaultFireHour is the local hour every reminder fires at.
const DefaultFireHour = 5

// Trigger is one computed reminder instant.
type Trigger struct {
	Kind           v1.ReminderKind
	FiresAt        time.Time
	NotificationID string
}

// NotificationID is the stable handle of one reminder kind of an event.
func NotificationID(eventID v1.EventID, kind v1.ReminderKind) string {
	return fmt.Sprintf("%s%s-%s", IDPrefix, eventID, kind)
}

// TriggerConfig fixes the wall-clock time reminders fire at.
type TriggerConfig struct {
	FireHour int
	Location *time.Location
}

// DefaultTriggerConfig fires at 05:00 local time.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{FireHour: DefaultFireHour, Location: time.Local}
}

// ComputeTriggers uses DefaultTriggerConfig.
func ComputeTriggers(event v1.Event, anchor v1.DateKey, now time.Time) []Trigger {
	return DefaultTriggerConfig().Compute(event, anchor, now)
}

// Compute returns the future triggers of every enabled reminder kind, in
// sameDay, oneDayBefore, oneWeekBefore order. A trigger at or before now is
// advanced by whole years for recurring events and dropped for the rest.
// Feb 29 anchors only recur in leap years.
func (c TriggerConfig) Compute(event v1.Event, anchor v1.DateKey, now time.Time) []Trigger {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}

	day, err := anchor.In(loc)
	if err != nil {
		slog.Warn("[Reminder] Cannot compute triggers for invalid date",
			"event_id", event.ID,
			"date", anchor)
		return nil
	}
	occurrence := time.Date(day.Year(), day.Month(), day.Day(), c.FireHour, 0, 0, 0, loc)

	var yearly *rrule.RRule
	if event.Recurring() && isLeapDay(occurrence) {
		yearly, err = rrule.NewRRule(rrule.ROption{
			Freq:       rrule.YEARLY,
			Dtstart:    occurrence,
			Bymonth:    []int{int(occurrence.Month())},
			Bymonthday: []int{occurrence.Day()},
		})
		if err != nil {
			slog.Warn("[Reminder] Cannot build yearly rule", "event_id", event.ID, "error", err)
			yearly = nil
		}
	}

	var out []Trigger
	for _, kind := range v1.ReminderKinds {
		if !event.Reminders.Enabled(kind) {
			continue
		}
		offset := kind.OffsetDays()

		fires := occurrence.AddDate(0, 0, -offset)
		if !fires.After(now) {
			switch {
			case yearly != nil:
				fires = nextYearly(yearly, now, offset)
			case event.Recurring():
				fires = advanceYears(fires, now)
			default:
				continue
			}
			if fires.IsZero() {
				continue
			}
		}

		out = append(out, Trigger{
			Kind:           kind,
			FiresAt:        fires,
			NotificationID: NotificationID(event.ID, kind),
		})
	}
	return out
}

func isLeapDay(t time.Time) bool {
	return t.Month() == time.February && t.Day() == 29
}

// advanceYears moves fires forward by whole years until it is after now. A
// Feb 29 instant lands on Mar 1 in non-leap years.
func advanceYears(fires, now time.Time) time.Time {
	years := now.Year() - fires.Year() - 1
	if years < 1 {
		years = 1
	}
	for {
		if next := fires.AddDate(years, 0, 0); next.After(now) {
			return next
		}
		years++
	}
}

// nextYearly is used for Feb 29 anchors. It finds the first leap-year
// occurrence whose reminder, offset days earlier, is still ahead of now, and
// returns that reminder instant.
func nextYearly(rule *rrule.RRule, now time.Time, offset int) time.Time {
	occ := rule.After(now.AddDate(0, 0, offset), false)
	for !occ.IsZero() {
		if fires := occ.AddDate(0, 0, -offset); fires.After(now) {
			return fires
		}
		occ = rule.After(occ, false)
	}
	return time.Time{}
}
