package persistence

import (
	"strings"
	"testing"
	"time"
)

func TestMarshalEvents_RoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
	events := []Event{
		{
			ID:           "evt-1",
			Title:        "Dentist",
			Date:         time.Date(2024, time.January, 10, 0, 0, 0, 0, time.Local),
			StartTime:    "09:00",
			EndTime:      "10:00",
			RepeatOption: "none",
			CreatedAt:    createdAt,
		},
		{
			ID:           "evt-2",
			Title:        "Standup",
			Date:         time.Date(2024, time.February, 29, 0, 0, 0, 0, time.Local),
			StartTime:    "10:00",
			EndTime:      "10:15",
			RepeatOption: "weekly",
			CreatedAt:    createdAt.Add(time.Minute),
		},
	}

	payload, err := MarshalEvents(events)
	if err != nil {
		t.Fatalf("MarshalEvents failed: %v", err)
	}

	if !strings.Contains(string(payload), `"date":"2024-01-10"`) {
		t.Fatalf("expected date-only serialization, got %s", payload)
	}

	decoded, err := UnmarshalEvents(payload)
	if err != nil {
		t.Fatalf("UnmarshalEvents failed: %v", err)
	}

	if len(decoded) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(decoded))
	}
	for i, event := range events {
		got := decoded[i]
		if got.ID != event.ID || got.Title != event.Title {
			t.Errorf("event %d identity mismatch: %+v", i, got)
		}
		if !got.Date.Equal(event.Date) {
			t.Errorf("event %d date = %v, want %v", i, got.Date, event.Date)
		}
		if got.StartTime != event.StartTime || got.EndTime != event.EndTime {
			t.Errorf("event %d times mismatch: %+v", i, got)
		}
		if got.RepeatOption != event.RepeatOption {
			t.Errorf("event %d repeat = %q, want %q", i, got.RepeatOption, event.RepeatOption)
		}
		if !got.CreatedAt.Equal(event.CreatedAt) {
			t.Errorf("event %d createdAt = %v, want %v", i, got.CreatedAt, event.CreatedAt)
		}
	}
}

func TestMarshalEvents_EmptyCollection(t *testing.T) {
	t.Parallel()

	payload, err := MarshalEvents(nil)
	if err != nil {
		t.Fatalf("MarshalEvents failed: %v", err)
	}
	if string(payload) != "[]" {
		t.Fatalf("expected empty array, got %s", payload)
	}

	decoded, err := UnmarshalEvents(payload)
	if err != nil {
		t.Fatalf("UnmarshalEvents failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected no events, got %v", decoded)
	}
}

func TestUnmarshalEvents_LegacyTimestampDates(t *testing.T) {
	t.Parallel()

	payload := `[{"id":"evt-1","title":"Flight","date":"2024-01-10T00:00:00Z","startTime":"06:00","endTime":"08:00","repeatOption":"none","createdAt":"2024-01-02T15:04:05Z"}]`

	decoded, err := UnmarshalEvents([]byte(payload))
	if err != nil {
		t.Fatalf("UnmarshalEvents failed: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected one event, got %v", decoded)
	}
	if decoded[0].Date.Hour() != 0 || decoded[0].Date.Location() != time.Local {
		t.Fatalf("expected local midnight date, got %v", decoded[0].Date)
	}
}

func TestUnmarshalEvents_MalformedPayload(t *testing.T) {
	t.Parallel()

	cases := []string{
		`not json`,
		`{"id":"evt-1"}`,
		`[{"id":"evt-1","date":"yesterday","createdAt":"2024-01-02T15:04:05Z"}]`,
		`[{"id":"evt-1","date":"2024-01-10","createdAt":"later"}]`,
	}

	for _, payload := range cases {
		if _, err := UnmarshalEvents([]byte(payload)); err == nil {
			t.Errorf("expected error for payload %s", payload)
		}
	}
}
