package eventstore

import (
	"fmt"
	"os"
	"sort"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"gopkg.in/yaml.v3"
)

// SeedEntry is one event read from a seed fixture.
type SeedEntry struct {
	Date  v1.DateKey
	Input v1.EventInput
}

type seedEvent struct {
	Title       string         `yaml:"title"`
	Type        v1.EventType   `yaml:"type"`
	Description string         `yaml:"description"`
	Reminders   *seedReminders `yaml:"reminders"`
}

type seedReminders struct {
	SameDay       bool `yaml:"sameDay"`
	OneDayBefore  bool `yaml:"oneDayBefore"`
	OneWeekBefore bool `yaml:"oneWeekBefore"`
}

// LoadSeedFile parses a YAML fixture shaped like the stored mapping:
//
//	"2024-03-15":
//	  - title: Mum
//	    type: Birthday
//
// Entries come back in date order, file order within a date.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(content)
}

// ParseSeed decodes seed YAML.
func ParseSeed(content []byte) ([]SeedEntry, error) {
	var doc map[string][]yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	inputs := make(map[v1.DateKey][]v1.EventInput, len(doc))
	dates := make([]v1.DateKey, 0, len(doc))
	for rawDate, nodes := range doc {
		date, err := v1.ParseDateKey(rawDate)
		if err != nil {
			return nil, &ValidationError{Field: "date", Message: err.Error()}
		}
		for i := range nodes {
			var evt seedEvent
			if err := nodes[i].Decode(&evt); err != nil {
				return nil, fmt.Errorf("failed to decode seed event %s[%d]: %w", date, i, err)
			}
			inputs[date] = append(inputs[date], evt.input())
		}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	var entries []SeedEntry
	for _, date := range dates {
		for _, in := range inputs[date] {
			entries = append(entries, SeedEntry{Date: date, Input: in})
		}
	}
	return entries, nil
}

func (e seedEvent) input() v1.EventInput {
	title := e.Title
	typ := e.Type
	desc := e.Description
	in := v1.EventInput{Title: &title, Type: &typ, Description: &desc}
	if e.Reminders != nil {
		in.Reminders = &v1.Reminders{
			SameDay:       e.Reminders.SameDay,
			OneDayBefore:  e.Reminders.OneDayBefore,
			OneWeekBefore: e.Reminders.OneWeekBefore,
		}
	}
	return in
}
