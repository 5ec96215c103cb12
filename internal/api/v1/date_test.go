package v1

import (
	"reflect"
	"testing"
	"time"
)

func TestDateKey_Valid(t *testing.T) {
	tests := []struct {
		key  DateKey
		want bool
	}{
		{"2024-03-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024-3-15", false},
		{"", false},
		{"not-a-date", false},
	}
	for _, tt := range tests {
		if got := tt.key.Valid(); got != tt.want {
			t.Errorf("%q.Valid() = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestDateKey_Parts(t *testing.T) {
	d := DateKey("2024-03-15")

	if got := d.MonthDay(); got != "03-15" {
		t.Errorf("MonthDay() = %q", got)
	}
	if got := d.Month(); got != time.March {
		t.Errorf("Month() = %v", got)
	}
	if got := d.Digits(); got != "20240315" {
		t.Errorf("Digits() = %q", got)
	}
	if got := d.Label(); got != "Mar 15" {
		t.Errorf("Label() = %q", got)
	}
	if got := d.LongLabel(); got != "Mar 15, 2024" {
		t.Errorf("LongLabel() = %q", got)
	}
	if got := d.AddDays(-15); got != "2024-02-29" {
		t.Errorf("AddDays(-15) = %q", got)
	}
	if got := DateKey("").MonthDay(); got != "" {
		t.Errorf("empty MonthDay() = %q", got)
	}
}

func TestParseDateKey(t *testing.T) {
	if _, err := ParseDateKey("2024-02-30"); err == nil {
		t.Error("expected error for impossible date")
	}
	d, err := ParseDateKey(" 2024-02-29 ")
	if err != nil || d != "2024-02-29" {
		t.Errorf("ParseDateKey = %q, %v", d, err)
	}
}

func TestEventsByDate_Helpers(t *testing.T) {
	m := EventsByDate{
		"2024-05-01": {{ID: "c"}},
		"2024-01-01": {{ID: "a"}, {ID: "b", NotificationIDs: []string{"x"}}},
	}

	if got := m.SortedKeys(); !reflect.DeepEqual(got, []DateKey{"2024-01-01", "2024-05-01"}) {
		t.Errorf("SortedKeys() = %v", got)
	}
	if got := m.Len(); got != 3 {
		t.Errorf("Len() = %d", got)
	}

	key, idx, ok := m.Find("b")
	if !ok || key != "2024-01-01" || idx != 1 {
		t.Errorf("Find(b) = %q, %d, %v", key, idx, ok)
	}
	if _, _, ok := m.Find("zzz"); ok {
		t.Error("Find of missing id should fail")
	}

	clone := m.Clone()
	clone["2024-01-01"][1].NotificationIDs[0] = "y"
	if m["2024-01-01"][1].NotificationIDs[0] != "x" {
		t.Error("Clone must deep-copy notification ids")
	}
}
