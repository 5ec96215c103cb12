package v1

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEvent_Validation(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name:    "valid birthday",
			event:   Event{ID: "evt_1", Title: "Mum", Type: TypeBirthday},
			wantErr: false,
		},
		{
			name:    "valid other",
			event:   Event{ID: "evt_2", Title: "Dentist", Type: TypeOther},
			wantErr: false,
		},
		{
			name:    "missing id",
			event:   Event{Title: "Mum", Type: TypeBirthday},
			wantErr: true,
		},
		{
			name:    "blank title",
			event:   Event{ID: "evt_1", Title: "   ", Type: TypeBirthday},
			wantErr: true,
		},
		{
			name:    "unknown type",
			event:   Event{ID: "evt_1", Title: "Mum", Type: "Holiday"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Event.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventType_Recurring(t *testing.T) {
	tests := []struct {
		typ  EventType
		want bool
	}{
		{TypeBirthday, true},
		{TypeAnniversary, true},
		{TypeDeathAnniversary, true},
		{TypeOther, false},
		{"Holiday", false},
	}
	for _, tt := range tests {
		if got := tt.typ.Recurring(); got != tt.want {
			t.Errorf("%q.Recurring() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestEvent_UnmarshalNormalizesLegacyShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantRem Reminders
		wantIDs []string
	}{
		{
			name:    "current shape",
			raw:     `{"id":"a","title":"Mum","type":"Birthday","reminders":{"sameDay":true,"oneDayBefore":false,"oneWeekBefore":true},"notificationIds":["kioku-a-sameDay"]}`,
			wantRem: Reminders{SameDay: true, OneWeekBefore: true},
			wantIDs: []string{"kioku-a-sameDay"},
		},
		{
			name:    "legacy reminder false",
			raw:     `{"id":"a","title":"Mum","type":"Birthday","reminder":false}`,
			wantRem: Reminders{},
			wantIDs: []string{},
		},
		{
			name:    "legacy reminder true",
			raw:     `{"id":"a","title":"Mum","type":"Birthday","reminder":true}`,
			wantRem: Reminders{SameDay: true},
			wantIDs: []string{},
		},
		{
			name:    "no reminder fields at all",
			raw:     `{"id":"a","title":"Mum","type":"Birthday"}`,
			wantRem: Reminders{SameDay: true},
			wantIDs: []string{},
		},
		{
			name:    "non-boolean flags are coerced",
			raw:     `{"id":"a","title":"Mum","type":"Birthday","reminders":{"sameDay":1,"oneDayBefore":"","oneWeekBefore":"yes"}}`,
			wantRem: Reminders{SameDay: true, OneWeekBefore: true},
			wantIDs: []string{},
		},
		{
			name:    "notification ids not an array",
			raw:     `{"id":"a","title":"Mum","type":"Birthday","reminders":{},"notificationIds":"kioku-a-sameDay"}`,
			wantRem: Reminders{},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var evt Event
			if err := json.Unmarshal([]byte(tt.raw), &evt); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if evt.Reminders != tt.wantRem {
				t.Errorf("Reminders = %+v, want %+v", evt.Reminders, tt.wantRem)
			}
			if !reflect.DeepEqual(evt.NotificationIDs, tt.wantIDs) {
				t.Errorf("NotificationIDs = %v, want %v", evt.NotificationIDs, tt.wantIDs)
			}
		})
	}
}

func TestEvent_MarshalRoundTripDropsLegacyFields(t *testing.T) {
	var evt Event
	if err := json.Unmarshal([]byte(`{"id":"a","title":"Mum","type":"Birthday","reminder":false,"color":"red"}`), &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	if _, ok := fields["reminder"]; ok {
		t.Error("legacy reminder flag should not be written back")
	}
	if _, ok := fields["color"]; ok {
		t.Error("unknown fields should be dropped")
	}
	if _, ok := fields["reminders"]; !ok {
		t.Error("reminders object should be written")
	}
}

func TestEventWithDate_JSON(t *testing.T) {
	in := EventWithDate{
		Date:  "2024-03-15",
		Event: Event{ID: "a", Title: "Mum", Type: TypeBirthday, NotificationIDs: []string{}},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	if fields["date"] != "2024-03-15" || fields["title"] != "Mum" {
		t.Errorf("expected flattened date and title, got %s", data)
	}

	var out EventWithDate
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Date != in.Date || out.ID != in.ID {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestEventInput_ApplyTo(t *testing.T) {
	base := Event{
		ID:              "a",
		Title:           "Mum",
		Type:            TypeBirthday,
		Description:     "cake",
		Reminders:       Reminders{SameDay: true},
		NotificationIDs: []string{"kioku-a-sameDay"},
	}

	title := "  Mother  "
	got := EventInput{Title: &title}.ApplyTo(base)
	if got.Title != "Mother" {
		t.Errorf("Title = %q, want trimmed", got.Title)
	}
	if got.Description != "cake" || got.Type != TypeBirthday {
		t.Errorf("unset fields should be preserved, got %+v", got)
	}
	if !reflect.DeepEqual(got.NotificationIDs, []string{"kioku-a-sameDay"}) {
		t.Errorf("NotificationIDs should be preserved, got %v", got.NotificationIDs)
	}

	empty := []string{}
	got = EventInput{NotificationIDs: &empty}.ApplyTo(base)
	if len(got.NotificationIDs) != 0 {
		t.Errorf("explicit empty ids should reset, got %v", got.NotificationIDs)
	}

	got = EventInput{Title: &title}.ApplyTo(Event{ID: "b"})
	if got.Type != TypeOther {
		t.Errorf("empty type should default to Other, got %q", got.Type)
	}

	got.NotificationIDs = append(got.NotificationIDs, "x")
	if len(base.NotificationIDs) != 1 {
		t.Error("ApplyTo must not alias the base slice")
	}
}

func TestOccurrenceID_Split(t *testing.T) {
	id := NewOccurrenceID("evt-1", "2025-03-15")
	if id != "evt-1::2025-03-15" {
		t.Fatalf("NewOccurrenceID = %q", id)
	}

	orig, date, ok := id.Split()
	if !ok || orig != "evt-1" || date != "2025-03-15" {
		t.Errorf("Split() = %q, %q, %v", orig, date, ok)
	}

	orig, date, ok = OccurrenceID("evt-1").Split()
	if ok || orig != "evt-1" || date != "" {
		t.Errorf("Split() of plain id = %q, %q, %v", orig, date, ok)
	}
}
