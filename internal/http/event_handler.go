package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/pocket-calendar/internal/application"
)

type eventService interface {
	Save(ctx context.Context, input application.EventInput) (application.Event, error)
	Delete(ctx context.Context, eventID string) error
	Events() []application.Event
	CanCreateOn(day time.Time) bool
}

// EventHandler exposes the event collection mutations consumed by the
// rendering layer: list, create, edit, and delete.
type EventHandler struct {
	service   eventService
	responder responder
}

// NewEventHandler wires the event service into HTTP endpoints.
func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(logger)}
}

// List returns the full event collection in insertion order.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{
		Events: toEventDTOs(h.service.Events()),
	})
}

// Create saves a brand-new event. Days strictly before today are closed for
// creation; the rule the rendering layer enforces by never opening an editing
// surface for them is enforced here as well.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := req.toInput()
	if !input.Date.IsZero() && !h.service.CanCreateOn(input.Date) {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"date": "cannot create events on past days"},
		})
		return
	}

	event, err := h.service.Save(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

// Update replaces the fields of the event addressed by the path id.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := req.toInput()
	input.ID = eventID

	event, err := h.service.Save(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

// Delete removes the event addressed by the path id. Deleting an unknown id
// succeeds; the operation is idempotent.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.service.Delete(r.Context(), eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type eventRequest struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	RepeatOption string `json:"repeatOption"`
}

func (r eventRequest) toInput() application.EventInput {
	return application.EventInput{
		ID:           strings.TrimSpace(r.ID),
		Title:        r.Title,
		Date:         parseDay(r.Date),
		StartTime:    strings.TrimSpace(r.StartTime),
		EndTime:      strings.TrimSpace(r.EndTime),
		RepeatOption: application.RepeatOption(strings.TrimSpace(r.RepeatOption)),
	}
}

// parseDay interprets a YYYY-MM-DD string as a local calendar day. The zero
// time flows into validation, which reports the missing date.
func parseDay(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if day, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return day
	}
	return time.Time{}
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	RepeatOption string `json:"repeatOption"`
	CreatedAt    string `json:"createdAt"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:           event.ID,
		Title:        event.Title,
		Date:         event.Date.Format("2006-01-02"),
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		RepeatOption: string(event.RepeatOption),
		CreatedAt:    event.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}
