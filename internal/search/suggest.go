package search

import (
	"strings"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/Jomes01/Kioku/internal/eventstore"
	"github.com/sahilm/fuzzy"
)

// Suggestion is a fuzzy title match offered when Search finds nothing.
type Suggestion struct {
	Event v1.EventWithDate `json:"event"`
	Score int              `json:"score"`
}

// titleSource implements fuzzy.Source over event titles.
type titleSource []v1.EventWithDate

func (s titleSource) String(i int) string {
	return s[i].Title
}

func (s titleSource) Len() int {
	return len(s)
}

// Suggest returns up to limit events whose titles fuzzily match query, best
// first. A blank query or non-positive limit returns nothing.
func Suggest(mapping v1.EventsByDate, query string, limit int) []Suggestion {
	q := strings.TrimSpace(query)
	if q == "" || limit <= 0 {
		return nil
	}

	source := titleSource(eventstore.Flatten(mapping))
	matches := fuzzy.FindFrom(q, source)

	out := make([]Suggestion, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, Suggestion{Event: source[m.Index], Score: m.Score})
	}
	return out
}
