package search

import (
	"testing"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func TestSuggest_FuzzyTitles(t *testing.T) {
	mapping := sampleMapping()
	require.Empty(t, Search(mapping, "wdng"))

	suggestions := Suggest(mapping, "wdng", 3)
	require.Len(t, suggestions, 1)
	require.Equal(t, v1.EventID("w1"), suggestions[0].Event.ID)
}

func TestSuggest_Limit(t *testing.T) {
	mapping := v1.EventsByDate{
		"2024-01-01": {
			{ID: "1", Title: "Party one"},
			{ID: "2", Title: "Party two"},
			{ID: "3", Title: "Party three"},
		},
	}

	require.Len(t, Suggest(mapping, "prty", 2), 2)
	require.Empty(t, Suggest(mapping, "prty", 0))
	require.Empty(t, Suggest(mapping, " ", 5))
}
