package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/pocket-calendar/internal/persistence"
)

type kvStoreStub struct {
	values map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newKVStoreStub() *kvStoreStub {
	return &kvStoreStub{values: make(map[string][]byte)}
}

func (s *kvStoreStub) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return value, nil
}

func (s *kvStoreStub) Set(ctx context.Context, key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = append([]byte(nil), value...)
	s.sets++
	return nil
}

func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	return func() time.Time {
		return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.Local)
	}
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func localDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func newTestService(store persistence.KVStore, t *testing.T) *EventService {
	t.Helper()
	return NewEventService(store, sequentialIDs("event"), fixedNow(t))
}

func TestEventService_Save_ValidatesInput(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)

	_, err := svc.Save(context.Background(), EventInput{
		Title:        "   ",
		StartTime:    "late",
		EndTime:      "25:00",
		RepeatOption: "yearly",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "date", "start_time", "end_time", "repeat_option"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
	if store.sets != 0 {
		t.Fatalf("validation failure must not write, got %d writes", store.sets)
	}
}

func TestEventService_Save_RejectsInvertedInterval(t *testing.T) {
	t.Parallel()

	svc := newTestService(newKVStoreStub(), t)

	_, err := svc.Save(context.Background(), EventInput{
		Title:     "Dentist",
		Date:      localDay(2024, time.January, 10),
		StartTime: "10:00",
		EndTime:   "09:00",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time validation error, got %v", vErr.FieldErrors)
	}
}

func TestEventService_Save_AssignsIdentityForCreates(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)

	event, err := svc.Save(context.Background(), EventInput{
		Title:     "  Dentist  ",
		Date:      localDay(2024, time.January, 10),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if event.ID == "" {
		t.Fatal("expected generated id")
	}
	if event.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be assigned")
	}
	if event.Title != "Dentist" {
		t.Fatalf("expected trimmed title, got %q", event.Title)
	}
	if event.RepeatOption != RepeatNone {
		t.Fatalf("expected repeat to default to none, got %q", event.RepeatOption)
	}
	if store.sets != 1 {
		t.Fatalf("expected one durable write, got %d", store.sets)
	}
}

func TestEventService_Save_RejectsOverlap(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)
	ctx := context.Background()
	day := localDay(2024, time.January, 10)

	if _, err := svc.Save(ctx, EventInput{ID: "1", Title: "First", Date: day, StartTime: "09:00", EndTime: "10:00"}); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	writesBefore := store.sets

	_, err := svc.Save(ctx, EventInput{ID: "2", Title: "Second", Date: day, StartTime: "09:30", EndTime: "10:30"})
	var oErr *OverlapError
	if !errors.As(err, &oErr) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if len(oErr.Overlaps) != 1 || oErr.Overlaps[0].WithEventID != "1" {
		t.Fatalf("expected overlap with event 1, got %v", oErr.Overlaps)
	}
	if store.sets != writesBefore {
		t.Fatalf("rejected save must not write, got %d extra writes", store.sets-writesBefore)
	}
	if len(svc.Events()) != 1 {
		t.Fatalf("collection must be unchanged, got %v", svc.Events())
	}

	// Back-to-back intervals are legal under the half-open rule.
	if _, err := svc.Save(ctx, EventInput{ID: "2", Title: "Second", Date: day, StartTime: "10:00", EndTime: "11:00"}); err != nil {
		t.Fatalf("back-to-back save failed: %v", err)
	}
	if got := len(svc.Events()); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
}

func TestEventService_Save_EditPreservesCreatedAt(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	now := time.Date(2024, time.January, 2, 15, 0, 0, 0, time.Local)
	svc := NewEventService(store, sequentialIDs("event"), func() time.Time { return now })
	ctx := context.Background()
	day := localDay(2024, time.January, 10)

	created, err := svc.Save(ctx, EventInput{Title: "Dentist", Date: day, StartTime: "09:00", EndTime: "10:00"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now = now.Add(48 * time.Hour)

	edited, err := svc.Save(ctx, EventInput{
		ID:        created.ID,
		Title:     "Dentist (moved)",
		Date:      day,
		StartTime: "11:00",
		EndTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if !edited.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("edit must preserve createdAt: got %v, want %v", edited.CreatedAt, created.CreatedAt)
	}
	events := svc.Events()
	if len(events) != 1 {
		t.Fatalf("edit must not duplicate, got %v", events)
	}
	if events[0].Title != "Dentist (moved)" || events[0].StartTime != "11:00" {
		t.Fatalf("edit not applied: %+v", events[0])
	}
}

func TestEventService_Save_EditMayReuseOwnInterval(t *testing.T) {
	t.Parallel()

	svc := newTestService(newKVStoreStub(), t)
	ctx := context.Background()
	day := localDay(2024, time.January, 10)

	created, err := svc.Save(ctx, EventInput{Title: "Dentist", Date: day, StartTime: "09:00", EndTime: "10:00"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Save(ctx, EventInput{
		ID:        created.ID,
		Title:     "Dentist",
		Date:      day,
		StartTime: "09:00",
		EndTime:   "10:00",
	}); err != nil {
		t.Fatalf("edit over own interval must not overlap: %v", err)
	}
}

func TestEventService_Save_PersistenceFailureLeavesStateIntact(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)
	ctx := context.Background()
	day := localDay(2024, time.January, 10)

	if _, err := svc.Save(ctx, EventInput{Title: "First", Date: day, StartTime: "09:00", EndTime: "10:00"}); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	store.setErr = errors.New("disk full")
	_, err := svc.Save(ctx, EventInput{Title: "Second", Date: day, StartTime: "11:00", EndTime: "12:00"})

	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if pErr.Op != "save" {
		t.Fatalf("expected save op, got %q", pErr.Op)
	}
	if len(svc.Events()) != 1 {
		t.Fatalf("failed write must not mutate memory, got %v", svc.Events())
	}
}

func TestEventService_Delete(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)
	ctx := context.Background()

	created, err := svc.Save(ctx, EventInput{Title: "Dentist", Date: localDay(2024, time.January, 10), StartTime: "09:00", EndTime: "10:00"})
	if err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	payloadBefore := string(store.values[persistence.EventsKey])
	writesBefore := store.sets

	t.Run("missing id is a silent no-op", func(t *testing.T) {
		if err := svc.Delete(ctx, "no-such-event"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.sets != writesBefore {
			t.Fatalf("no-op delete must not write")
		}
		if got := string(store.values[persistence.EventsKey]); got != payloadBefore {
			t.Fatalf("persisted payload changed: %s", got)
		}
	})

	t.Run("existing id is removed and persisted", func(t *testing.T) {
		if err := svc.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if len(svc.Events()) != 0 {
			t.Fatalf("expected empty collection, got %v", svc.Events())
		}
		if store.sets != writesBefore+1 {
			t.Fatalf("expected one more write, got %d", store.sets)
		}
	})
}

func TestEventService_Delete_PersistenceFailureLeavesStateIntact(t *testing.T) {
	t.Parallel()

	store := newKVStoreStub()
	svc := newTestService(store, t)
	ctx := context.Background()

	created, err := svc.Save(ctx, EventInput{Title: "Dentist", Date: localDay(2024, time.January, 10), StartTime: "09:00", EndTime: "10:00"})
	if err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	store.setErr = errors.New("io failure")
	err = svc.Delete(ctx, created.ID)

	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(svc.Events()) != 1 {
		t.Fatalf("failed delete must not mutate memory, got %v", svc.Events())
	}
}

func TestEventService_Load(t *testing.T) {
	t.Parallel()

	t.Run("missing payload starts empty", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(newKVStoreStub(), t)
		events, err := svc.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected empty collection, got %v", events)
		}
	})

	t.Run("malformed payload starts empty", func(t *testing.T) {
		t.Parallel()

		store := newKVStoreStub()
		store.values[persistence.EventsKey] = []byte("not json")

		svc := newTestService(store, t)
		events, err := svc.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected empty collection, got %v", events)
		}
	})

	t.Run("read failure starts empty", func(t *testing.T) {
		t.Parallel()

		store := newKVStoreStub()
		store.getErr = errors.New("io failure")

		svc := newTestService(store, t)
		events, err := svc.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected empty collection, got %v", events)
		}
	})

	t.Run("round-trips a saved collection", func(t *testing.T) {
		t.Parallel()

		store := newKVStoreStub()
		ctx := context.Background()

		writer := newTestService(store, t)
		saved, err := writer.Save(ctx, EventInput{Title: "Dentist", Date: localDay(2024, time.January, 10), StartTime: "09:00", EndTime: "10:00", RepeatOption: RepeatWeekly})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reader := newTestService(store, t)
		events, err := reader.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected one event, got %v", events)
		}
		got := events[0]
		if got.ID != saved.ID || got.Title != saved.Title || got.RepeatOption != RepeatWeekly {
			t.Fatalf("loaded event mismatch: %+v", got)
		}
		if !got.Date.Equal(saved.Date) {
			t.Fatalf("loaded date = %v, want %v", got.Date, saved.Date)
		}
		if !got.CreatedAt.Equal(saved.CreatedAt) {
			t.Fatalf("loaded createdAt = %v, want %v", got.CreatedAt, saved.CreatedAt)
		}
	})
}

func TestEventService_Projections(t *testing.T) {
	t.Parallel()

	svc := newTestService(newKVStoreStub(), t)
	ctx := context.Background()
	day := localDay(2024, time.January, 10)
	other := localDay(2024, time.January, 12)

	for _, input := range []EventInput{
		{ID: "a", Title: "Morning", Date: day, StartTime: "09:00", EndTime: "10:00"},
		{ID: "b", Title: "Elsewhere", Date: other, StartTime: "09:00", EndTime: "10:00"},
		{ID: "c", Title: "Afternoon", Date: day, StartTime: "14:00", EndTime: "15:00"},
	} {
		if _, err := svc.Save(ctx, input); err != nil {
			t.Fatalf("seed save %s failed: %v", input.ID, err)
		}
	}

	marked := svc.MarkedDays()
	if len(marked) != 2 {
		t.Fatalf("expected two marked days, got %v", marked)
	}
	if !marked["2024-01-10"].Marked || !marked["2024-01-12"].Marked {
		t.Fatalf("expected both days marked, got %v", marked)
	}

	onDay := svc.EventsOnDay(day)
	if len(onDay) != 2 || onDay[0].ID != "a" || onDay[1].ID != "c" {
		t.Fatalf("expected ordered [a c], got %v", onDay)
	}
}

func TestEventService_CanCreateOn(t *testing.T) {
	t.Parallel()

	svc := newTestService(newKVStoreStub(), t)
	today := localDay(2024, time.January, 2)

	if svc.CanCreateOn(today.AddDate(0, 0, -1)) {
		t.Fatal("yesterday must be closed for creation")
	}
	if !svc.CanCreateOn(today) {
		t.Fatal("today must be open for creation")
	}
	if !svc.CanCreateOn(today.AddDate(0, 0, 1)) {
		t.Fatal("tomorrow must be open for creation")
	}
}
