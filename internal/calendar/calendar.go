package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight. It is
// parsed from HH:MM strings and compared numerically, which keeps interval
// arithmetic independent of locale and date parsing.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour HH:MM string into a TimeOfDay.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("calendar: invalid time of day %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("calendar: invalid time of day %q", value)
	}

	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("calendar: invalid time of day %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("calendar: invalid time of day %q", value)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// String renders the time of day back into HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Event is the projection-facing view of a calendar event: identity, the
// local calendar date it occurs on, and its time-of-day interval.
type Event struct {
	ID    string
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

// Overlap details an intersecting event relation that callers can present to users.
type Overlap struct {
	WithEventID string
	Start       TimeOfDay
	End         TimeOfDay
}

// DetectOverlaps identifies same-day interval overlaps between the candidate
// event and the existing collection. Intervals are half-open: back-to-back
// events, where one ends exactly when the other starts, do not overlap. An
// existing event sharing the candidate's ID is skipped so edits never collide
// with their own prior version.
func DetectOverlaps(existing []Event, candidate Event) []Overlap {
	var overlaps []Overlap
	for _, event := range existing {
		if event.ID == candidate.ID {
			continue
		}
		if !SameDay(event.Date, candidate.Date) {
			continue
		}
		if candidate.Start < event.End && candidate.End > event.Start {
			overlaps = append(overlaps, Overlap{
				WithEventID: event.ID,
				Start:       event.Start,
				End:         event.End,
			})
		}
	}
	return overlaps
}

// Marker flags a calendar day that carries at least one event.
type Marker struct {
	Marked bool
}

// DayKey returns the canonical YYYY-MM-DD key for the local calendar date of t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay reports whether two instants fall on the same local calendar date.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// MarkedDays projects the event collection into a day-key to marker mapping.
// Days without events are absent from the result; days with several events
// appear once.
func MarkedDays(events []Event) map[string]Marker {
	marked := make(map[string]Marker, len(events))
	for _, event := range events {
		marked[DayKey(event.Date)] = Marker{Marked: true}
	}
	return marked
}

// EventsOnDay returns the events whose date falls on the given local calendar
// day, preserving the relative order of the input collection.
func EventsOnDay(events []Event, day time.Time) []Event {
	key := DayKey(day)
	var matched []Event
	for _, event := range events {
		if DayKey(event.Date) == key {
			matched = append(matched, event)
		}
	}
	return matched
}

// DaySlot is one cell of a month grid: either leading padding that aligns the
// first day under its weekday column, or one calendar date of the month.
type DaySlot struct {
	Date    time.Time
	Padding bool
	Today   bool
	Past    bool
}

// DaysInMonth lays out the month containing the given reference date as a
// Sunday-first grid: empty padding slots up to the weekday of the first day,
// then one slot per calendar day. Slots are flagged relative to today; Past
// means strictly before today's date.
func DaysInMonth(month, today time.Time) []DaySlot {
	year, m, _ := month.Date()
	loc := month.Location()

	first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
	lastDay := first.AddDate(0, 1, -1).Day()
	padding := int(first.Weekday())

	todayKey := DayKey(today)

	slots := make([]DaySlot, 0, padding+lastDay)
	for i := 0; i < padding; i++ {
		slots = append(slots, DaySlot{Padding: true})
	}
	for day := 1; day <= lastDay; day++ {
		date := time.Date(year, m, day, 0, 0, 0, 0, loc)
		key := DayKey(date)
		slots = append(slots, DaySlot{
			Date:  date,
			Today: key == todayKey,
			Past:  key < todayKey,
		})
	}
	return slots
}
