package search

import (
	"sort"
	"strings"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
)

var (
	monthNames = []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}
	monthAbbr  = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
)

// Result is one matching event and its relevance score.
type Result struct {
	Event v1.EventWithDate `json:"event"`
	Score int              `json:"score"`
}

// searchable is the lowercased text and date digits of one event.
type searchable struct {
	text       string
	dateDigits string
}

func newSearchable(e v1.EventWithDate) searchable {
	text := strings.ToLower(strings.Join([]string{e.Title, string(e.Type), e.Description, string(e.Date)}, " "))
	return searchable{text: text, dateDigits: e.Date.Digits()}
}

// Tokenize splits a query on whitespace and lowercases it.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

// Search ranks the events matching query, best first. Ties keep the
// flatten order. A blank query matches nothing.
func Search(mapping v1.EventsByDate, query string) []Result {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}

	tokens := Tokenize(q)
	qLower := strings.ToLower(q)
	qDigits := v1.DigitsOf(q)

	var results []Result
	for _, evt := range eventstore.Flatten(mapping) {
		s := newSearchable(evt)
		if !matches(evt, s, tokens, qLower, qDigits) {
			continue
		}
		results = append(results, Result{Event: evt, Score: score(evt, qLower, qDigits, tokens)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func matches(evt v1.EventWithDate, s searchable, tokens []string, qLower, qDigits string) bool {
	if len(tokens) > 0 {
		all := true
		for _, tok := range tokens {
			if !tokenMatches(tok, evt, s) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	if strings.Contains(s.text, qLower) {
		return true
	}
	return qDigits != "" && strings.Contains(s.dateDigits, qDigits)
}

func tokenMatches(tok string, evt v1.EventWithDate, s searchable) bool {
	if strings.Contains(s.text, tok) {
		return true
	}
	if digits := v1.DigitsOf(tok); digits != "" && s.dateDigits != "" && strings.Contains(s.dateDigits, digits) {
		return true
	}
	month := int(evt.Date.Month())
	if month == 0 {
		return false
	}
	if idx := monthIndex(monthNames, tok); idx >= 0 && idx+1 == month {
		return true
	}
	if idx := monthIndex(monthAbbr, tok); idx >= 0 && idx+1 == month {
		return true
	}
	return false
}

// monthIndex returns the first month whose name and tok are prefixes of one
// another, so "ma" resolves to March only.
func monthIndex(names []string, tok string) int {
	for i, name := range names {
		if strings.HasPrefix(name, tok) || strings.HasPrefix(tok, name) {
			return i
		}
	}
	return -1
}

func containsAll(field string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(field, tok) {
			return false
		}
	}
	return true
}

// score adds the per-field relevance. Within a field the first matching
// criterion wins; fields add up.
func score(evt v1.EventWithDate, qLower, qDigits string, tokens []string) int {
	total := 0

	if title := strings.ToLower(evt.Title); title != "" {
		switch {
		case title == qLower:
			total += 100
		case strings.Contains(title, qLower):
			total += 50
		case containsAll(title, tokens):
			total += 30
		}
	}

	if typ := strings.ToLower(string(evt.Type)); typ != "" {
		switch {
		case strings.Contains(typ, qLower):
			total += 25
		case containsAll(typ, tokens):
			total += 15
		}
	}

	if desc := strings.ToLower(evt.Description); desc != "" {
		switch {
		case strings.Contains(desc, qLower):
			total += 20
		case containsAll(desc, tokens):
			total += 10
		}
	}

	if date := string(evt.Date); date != "" {
		switch {
		case strings.Contains(date, qDigits):
			total += 40
		case anyIn(date, tokens):
			total += 5
		}
	}

	return total
}

func anyIn(field string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(field, tok) {
			return true
		}
	}
	return false
}
