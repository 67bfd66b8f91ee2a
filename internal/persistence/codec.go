package persistence

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is the stored representation of a calendar event.
type Event struct {
	ID           string
	Title        string
	Date         time.Time
	StartTime    string
	EndTime      string
	RepeatOption string
	CreatedAt    time.Time
}

// eventRecord is the JSON shape persisted to the key-value store. Date carries
// date-only semantics as an ISO-8601 calendar date; CreatedAt is a full
// RFC 3339 timestamp.
type eventRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	RepeatOption string `json:"repeatOption"`
	CreatedAt    string `json:"createdAt"`
}

const dateLayout = "2006-01-02"

// MarshalEvents serializes the event collection into the persisted JSON array.
func MarshalEvents(events []Event) ([]byte, error) {
	records := make([]eventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, eventRecord{
			ID:           event.ID,
			Title:        event.Title,
			Date:         event.Date.Format(dateLayout),
			StartTime:    event.StartTime,
			EndTime:      event.EndTime,
			RepeatOption: event.RepeatOption,
			CreatedAt:    event.CreatedAt.Format(time.RFC3339),
		})
	}
	return json.Marshal(records)
}

// UnmarshalEvents parses a persisted JSON payload back into the event
// collection, preserving stored order.
func UnmarshalEvents(data []byte) ([]Event, error) {
	var records []eventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("persistence: decode events payload: %w", err)
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		date, err := parseDate(record.Date)
		if err != nil {
			return nil, fmt.Errorf("persistence: event %s: %w", record.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("persistence: event %s: parse createdAt: %w", record.ID, err)
		}
		events = append(events, Event{
			ID:           record.ID,
			Title:        record.Title,
			Date:         date,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			RepeatOption: record.RepeatOption,
			CreatedAt:    createdAt,
		})
	}
	return events, nil
}

// parseDate accepts the canonical date-only form and, for payloads written by
// older clients, a full RFC 3339 timestamp reduced to its local calendar date.
func parseDate(value string) (time.Time, error) {
	if date, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
		return date, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		local := ts.Local()
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("parse date %q", value)
}
