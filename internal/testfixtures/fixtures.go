package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/pocket-calendar/internal/application"
)

var eventCounter uint64

// EventOption configures the generated event fixture.
type EventOption func(*application.Event)

// WithID overrides the fixture identifier.
func WithID(id string) EventOption {
	return func(e *application.Event) { e.ID = id }
}

// WithTitle overrides the fixture title.
func WithTitle(title string) EventOption {
	return func(e *application.Event) { e.Title = title }
}

// WithDate places the fixture on the given local calendar day.
func WithDate(date time.Time) EventOption {
	return func(e *application.Event) { e.Date = date }
}

// WithInterval sets the wall-clock interval in HH:MM form.
func WithInterval(start, end string) EventOption {
	return func(e *application.Event) {
		e.StartTime = start
		e.EndTime = end
	}
}

// WithRepeat sets the repeat tag.
func WithRepeat(option application.RepeatOption) EventOption {
	return func(e *application.Event) { e.RepeatOption = option }
}

// NewEventFixture returns a deterministic event with optional overrides. Each
// fixture lands on its own calendar day so defaults never collide.
func NewEventFixture(opts ...EventOption) application.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	day := referenceTime.AddDate(0, 0, int(idx))
	event := application.Event{
		ID:           fmt.Sprintf("event-%03d", idx),
		Title:        fmt.Sprintf("Event %03d", idx),
		Date:         time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local),
		StartTime:    "09:00",
		EndTime:      "10:00",
		RepeatOption: application.RepeatNone,
		CreatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// InputFromEvent converts a fixture into the input shape accepted by Save.
func InputFromEvent(event application.Event) application.EventInput {
	return application.EventInput{
		ID:           event.ID,
		Title:        event.Title,
		Date:         event.Date,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		RepeatOption: event.RepeatOption,
	}
}
