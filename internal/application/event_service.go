package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/persistence"
)

// EventService owns the authoritative in-memory event collection and enforces
// the no-overlap invariant before any mutation reaches durable storage. The
// whole collection persists as one blob under persistence.EventsKey; memory is
// swapped only after a successful write, so a failed save or delete leaves
// both the collection and the stored payload untouched.
type EventService struct {
	mu          sync.Mutex
	store       persistence.KVStore
	events      []Event
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for event operations.
func NewEventService(store persistence.KVStore, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(store, idGenerator, now, nil)
}

// NewEventServiceWithLogger wires dependencies along with a base logger.
func NewEventServiceWithLogger(store persistence.KVStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Load reads the persisted collection into memory and returns it. A missing
// or malformed payload is a best-effort miss: the service logs it and starts
// with an empty collection rather than failing startup.
func (s *EventService) Load(ctx context.Context) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "events", "load")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		s.events = nil
		return nil, nil
	}

	payload, err := s.store.Get(ctx, persistence.EventsKey)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			logger.WarnContext(ctx, "failed to read stored events, starting empty", "error", err)
		}
		s.events = nil
		return nil, nil
	}

	records, err := persistence.UnmarshalEvents(payload)
	if err != nil {
		logger.WarnContext(ctx, "stored events payload is malformed, starting empty", "error", err)
		s.events = nil
		return nil, nil
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		events = append(events, fromPersistence(record))
	}
	s.events = events

	logger.InfoContext(ctx, "events loaded", "count", len(events))
	return cloneEvents(events), nil
}

// Events returns a snapshot of the current collection in insertion order.
func (s *EventService) Events() []Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.events)
}

// Save validates the input, rejects overlapping intervals, and commits the
// updated collection. A fresh event receives an id and creation timestamp; an
// event whose id already exists is replaced in place with its original
// CreatedAt preserved. Validation runs before any I/O is attempted.
func (s *EventService) Save(ctx context.Context, input EventInput) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "events", "save")

	start, end, vErr := validateEventInput(input)
	if vErr.HasErrors() {
		return Event{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := calendar.Event{
		ID:    input.ID,
		Date:  input.Date,
		Start: start,
		End:   end,
	}
	if overlaps := calendar.DetectOverlaps(s.projection(), candidate); len(overlaps) > 0 {
		logger.InfoContext(ctx, "save rejected, interval overlaps", "overlaps", len(overlaps))
		return Event{}, &OverlapError{Overlaps: overlaps}
	}

	event := Event{
		ID:           input.ID,
		Title:        strings.TrimSpace(input.Title),
		Date:         input.Date,
		StartTime:    start.String(),
		EndTime:      end.String(),
		RepeatOption: normalizeRepeat(input.RepeatOption),
	}

	existingIdx := s.indexOf(input.ID)
	if existingIdx >= 0 {
		event.CreatedAt = s.events[existingIdx].CreatedAt
	} else {
		if event.ID == "" {
			event.ID = s.idGenerator()
		}
		event.CreatedAt = s.now()
	}

	updated := cloneEvents(s.events)
	if existingIdx >= 0 {
		updated[existingIdx] = event
	} else {
		updated = append(updated, event)
	}

	if err := s.persistLocked(ctx, updated); err != nil {
		return Event{}, &PersistenceError{Op: "save", Err: err}
	}
	s.events = updated

	logger.InfoContext(ctx, "event saved", "event_id", event.ID, "day", calendar.DayKey(event.Date))
	return event, nil
}

// Delete removes the event with the given id and persists the result. A
// missing id is a no-op: nothing is written and no error is returned.
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "events", "delete")

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(eventID)
	if idx < 0 {
		return nil
	}

	updated := make([]Event, 0, len(s.events)-1)
	updated = append(updated, s.events[:idx]...)
	updated = append(updated, s.events[idx+1:]...)

	if err := s.persistLocked(ctx, updated); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.events = updated

	logger.InfoContext(ctx, "event deleted", "event_id", eventID)
	return nil
}

// MarkedDays projects the current collection into day-key marker state.
func (s *EventService) MarkedDays() map[string]calendar.Marker {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return calendar.MarkedDays(s.projection())
}

// EventsOnDay returns the events occurring on the given local calendar day,
// preserving collection order.
func (s *EventService) EventsOnDay(day time.Time) []Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := calendar.DayKey(day)
	var matched []Event
	for _, event := range s.events {
		if calendar.DayKey(event.Date) == key {
			matched = append(matched, event)
		}
	}
	return matched
}

// MonthGrid lays out the month containing the reference date, flagging slots
// against the service clock.
func (s *EventService) MonthGrid(month time.Time) []calendar.DaySlot {
	if s == nil {
		return nil
	}
	return calendar.DaysInMonth(month, s.now())
}

// CanCreateOn reports whether a new event may be created on the given day.
// Days strictly before today are closed for creation; edits and deletes of
// events already on those days remain allowed.
func (s *EventService) CanCreateOn(day time.Time) bool {
	if s == nil {
		return false
	}
	return calendar.DayKey(day) >= calendar.DayKey(s.now())
}

func (s *EventService) indexOf(eventID string) int {
	if eventID == "" {
		return -1
	}
	for i, event := range s.events {
		if event.ID == eventID {
			return i
		}
	}
	return -1
}

// projection converts the collection for the pure calendar functions. Stored
// events were validated at save time, so time parsing is not expected to fail;
// a record that does fail parses to an empty interval, which can never overlap.
func (s *EventService) projection() []calendar.Event {
	converted := make([]calendar.Event, 0, len(s.events))
	for _, event := range s.events {
		start, _ := calendar.ParseTimeOfDay(event.StartTime)
		end, _ := calendar.ParseTimeOfDay(event.EndTime)
		converted = append(converted, calendar.Event{
			ID:    event.ID,
			Date:  event.Date,
			Start: start,
			End:   end,
		})
	}
	return converted
}

func (s *EventService) persistLocked(ctx context.Context, events []Event) error {
	if s.store == nil {
		return nil
	}

	records := make([]persistence.Event, 0, len(events))
	for _, event := range events {
		records = append(records, toPersistence(event))
	}
	payload, err := persistence.MarshalEvents(records)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, persistence.EventsKey, payload)
}

func validateEventInput(input EventInput) (calendar.TimeOfDay, calendar.TimeOfDay, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}

	start, startErr := calendar.ParseTimeOfDay(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "must be a valid HH:MM time")
	}

	end, endErr := calendar.ParseTimeOfDay(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "must be a valid HH:MM time")
	}

	if startErr == nil && endErr == nil && start >= end {
		vErr.add("time", "start must be before end")
	}

	if repeat := normalizeRepeat(input.RepeatOption); !repeat.Valid() {
		vErr.add("repeat_option", "unsupported repeat option")
	}

	return start, end, vErr
}

func normalizeRepeat(option RepeatOption) RepeatOption {
	if option == "" {
		return RepeatNone
	}
	return option
}

func cloneEvents(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

func toPersistence(event Event) persistence.Event {
	return persistence.Event{
		ID:           event.ID,
		Title:        event.Title,
		Date:         event.Date,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		RepeatOption: string(event.RepeatOption),
		CreatedAt:    event.CreatedAt,
	}
}

func fromPersistence(record persistence.Event) Event {
	return Event{
		ID:           record.ID,
		Title:        record.Title,
		Date:         record.Date,
		StartTime:    record.StartTime,
		EndTime:      record.EndTime,
		RepeatOption: normalizeRepeat(RepeatOption(record.RepeatOption)),
		CreatedAt:    record.CreatedAt,
	}
}
