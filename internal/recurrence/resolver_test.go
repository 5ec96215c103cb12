package recurrence

import (
	"encoding/json"
	"testing"

	v1 "github.com/Jomes01/Kioku/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func sampleMapping() v1.EventsByDate {
	return v1.EventsByDate{
		"1990-03-15": {
			{ID: "mum", Title: "Mum", Type: v1.TypeBirthday},
			{ID: "exam", Title: "Exam", Type: v1.TypeOther},
		},
		"2010-03-15": {
			{ID: "wedding", Title: "Wedding", Type: v1.TypeAnniversary},
		},
		"2024-03-15": {
			{ID: "dentist", Title: "Dentist", Type: v1.TypeOther},
		},
		"2020-02-29": {
			{ID: "leap", Title: "Leap", Type: v1.TypeBirthday},
		},
		"2001-07-04": {
			{ID: "odd", Title: "Odd", Type: "Holiday"},
		},
	}
}

func TestBuildIndex(t *testing.T) {
	mapping := sampleMapping()
	idx := BuildIndex(mapping)

	require.Len(t, idx["03-15"], 2)
	require.Equal(t, v1.EventID("mum"), idx["03-15"][0].OriginalID)
	require.Equal(t, v1.DateKey("1990-03-15"), idx["03-15"][0].SourceDate)
	require.Equal(t, v1.EventID("wedding"), idx["03-15"][1].OriginalID)
	require.Len(t, idx["02-29"], 1)
	require.NotContains(t, idx, "07-04", "unknown types never recur")

	idx["03-15"][0].Event.Title = "changed"
	require.Equal(t, "Mum", mapping["1990-03-15"][0].Title, "index must not alias the mapping")
}

func TestResolve_ExactThenRecurring(t *testing.T) {
	mapping := sampleMapping()

	occ := Resolve(mapping, "2024-03-15", nil)
	require.Len(t, occ, 3)

	require.Equal(t, v1.OccurrenceID("dentist"), occ[0].ID)
	require.False(t, occ[0].IsRecurringInstance)
	require.Equal(t, v1.DateKey("2024-03-15"), occ[0].SourceDate)

	require.Equal(t, v1.OccurrenceID("mum::2024-03-15"), occ[1].ID)
	require.True(t, occ[1].IsRecurringInstance)
	require.Equal(t, v1.EventID("mum"), occ[1].OriginalID)
	require.Equal(t, v1.DateKey("1990-03-15"), occ[1].SourceDate)
	require.Equal(t, v1.DateKey("2024-03-15"), occ[1].OccurrenceDate)

	require.Equal(t, v1.OccurrenceID("wedding::2024-03-15"), occ[2].ID)

	date, id := occ[1].Ref()
	require.Equal(t, v1.DateKey("1990-03-15"), date)
	require.Equal(t, v1.EventID("mum"), id)
}

func TestResolve_SourceDateIsNotDuplicated(t *testing.T) {
	occ := Resolve(sampleMapping(), "1990-03-15", nil)

	require.Len(t, occ, 3)
	require.False(t, occ[0].IsRecurringInstance)
	require.False(t, occ[1].IsRecurringInstance)
	require.Equal(t, v1.OccurrenceID("wedding::1990-03-15"), occ[2].ID)
}

func TestResolve_RecurringInstanceHasNoCompositeCollision(t *testing.T) {
	occ := Resolve(sampleMapping(), "2030-03-15", nil)

	ids := map[v1.OccurrenceID]bool{}
	for _, o := range occ {
		require.False(t, ids[o.ID], "duplicate occurrence id %s", o.ID)
		ids[o.ID] = true
		require.True(t, o.IsRecurringInstance)
	}
	require.Len(t, occ, 2)
}

func TestResolve_InvalidDate(t *testing.T) {
	require.Empty(t, Resolve(sampleMapping(), "", nil))
	require.Empty(t, Resolve(sampleMapping(), "03-15", nil))
	require.Empty(t, Resolve(sampleMapping(), "2023-02-29", nil))
}

func TestResolve_LeapDaySkipsNonLeapYears(t *testing.T) {
	mapping := sampleMapping()
	idx := BuildIndex(mapping)

	require.Empty(t, Resolve(mapping, "2025-02-28", idx))
	require.Empty(t, Resolve(mapping, "2025-03-01", idx))

	occ := Resolve(mapping, "2028-02-29", idx)
	require.Len(t, occ, 1)
	require.Equal(t, v1.OccurrenceID("leap::2028-02-29"), occ[0].ID)
}

func TestResolve_SuppliedIndexIsUsed(t *testing.T) {
	mapping := sampleMapping()

	occ := Resolve(mapping, "2024-03-15", Index{})
	require.Len(t, occ, 1, "an empty index yields only exact-date events")
}

func TestResolveRange(t *testing.T) {
	days, err := ResolveRange(sampleMapping(), "2024-03-01", "2024-03-31", nil)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, v1.DateKey("2024-03-15"), days[0].Date)
	require.Len(t, days[0].Occurrences, 3)

	_, err = ResolveRange(sampleMapping(), "2024-03-31", "2024-03-01", nil)
	require.Error(t, err)

	_, err = ResolveRange(sampleMapping(), "2024-01-01", "2025-12-31", nil)
	require.ErrorContains(t, err, "exceeds")

	_, err = ResolveRange(sampleMapping(), "2024-01-01", "2024-12-31", nil)
	require.NoError(t, err, "a leap year fits in the range limit")
}

func TestOccurrence_JSON(t *testing.T) {
	occ := Resolve(sampleMapping(), "2024-03-15", nil)
	require.Len(t, occ, 3)

	data, err := json.Marshal(occ)
	require.NoError(t, err)

	var fields []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Equal(t, "mum::2024-03-15", fields[1]["id"])
	require.Equal(t, "Mum", fields[1]["title"])

	var decoded []Occurrence
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, occ, decoded)
}
