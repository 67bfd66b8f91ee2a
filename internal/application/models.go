package application

import "time"

// RepeatOption tags an event with its informational repeat setting. The tag is
// stored and round-tripped but never expanded into additional occurrences.
type RepeatOption string

const (
	// RepeatNone marks a one-off event.
	RepeatNone RepeatOption = "none"
	// RepeatWeekly marks an event the user intends to repeat every week.
	RepeatWeekly RepeatOption = "weekly"
	// RepeatBiWeekly marks an event the user intends to repeat every two weeks.
	RepeatBiWeekly RepeatOption = "bi-weekly"
	// RepeatMonthly marks an event the user intends to repeat every month.
	RepeatMonthly RepeatOption = "monthly"
)

// Valid reports whether the option is one of the supported repeat settings.
func (r RepeatOption) Valid() bool {
	switch r {
	case RepeatNone, RepeatWeekly, RepeatBiWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Event is a single calendar entry. Date carries the local calendar day; the
// wall-clock interval is kept in HH:MM form exactly as entered and persisted.
type Event struct {
	ID           string
	Title        string
	Date         time.Time
	StartTime    string
	EndTime      string
	RepeatOption RepeatOption
	CreatedAt    time.Time
}

// EventInput captures caller provided event fields. ID is empty for creates
// and set for edits; CreatedAt is always assigned by the service.
type EventInput struct {
	ID           string
	Title        string
	Date         time.Time
	StartTime    string
	EndTime      string
	RepeatOption RepeatOption
}
