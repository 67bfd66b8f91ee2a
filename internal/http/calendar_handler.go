package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/pocket-calendar/internal/application"
	"github.com/example/pocket-calendar/internal/calendar"
)

type calendarService interface {
	MonthGrid(month time.Time) []calendar.DaySlot
	MarkedDays() map[string]calendar.Marker
	EventsOnDay(day time.Time) []application.Event
	CanCreateOn(day time.Time) bool
}

// CalendarHandler serves the display projections the rendering layer draws
// from: the month grid with marker state and the per-day event listing.
type CalendarHandler struct {
	service   calendarService
	responder responder
}

// NewCalendarHandler wires the projection service into HTTP endpoints.
func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, responder: newResponder(logger)}
}

// Month renders the grid for a YYYY-MM month: leading padding slots, one slot
// per calendar day, and marker state merged in.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request, monthValue string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	month, err := time.ParseInLocation("2006-01", strings.TrimSpace(monthValue), time.Local)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return
	}

	slots := h.service.MonthGrid(month)
	marked := h.service.MarkedDays()

	days := make([]daySlotDTO, 0, len(slots))
	for _, slot := range slots {
		if slot.Padding {
			days = append(days, daySlotDTO{Padding: true})
			continue
		}
		key := calendar.DayKey(slot.Date)
		days = append(days, daySlotDTO{
			Date:   key,
			Today:  slot.Today,
			Past:   slot.Past,
			Marked: marked[key].Marked,
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, monthResponse{
		Month: month.Format("2006-01"),
		Days:  days,
	})
}

// Day lists the events on a YYYY-MM-DD day and reports whether a creation
// surface may open for it.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request, dayValue string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(dayValue), time.Local)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDay)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dayResponse{
		Date:      calendar.DayKey(day),
		Events:    toEventDTOs(h.service.EventsOnDay(day)),
		CanCreate: h.service.CanCreateOn(day),
	})
}

type monthResponse struct {
	Month string       `json:"month"`
	Days  []daySlotDTO `json:"days"`
}

type daySlotDTO struct {
	Date    string `json:"date,omitempty"`
	Padding bool   `json:"padding,omitempty"`
	Today   bool   `json:"today,omitempty"`
	Past    bool   `json:"past,omitempty"`
	Marked  bool   `json:"marked,omitempty"`
}

type dayResponse struct {
	Date      string     `json:"date"`
	Events    []eventDTO `json:"events"`
	CanCreate bool       `json:"canCreate"`
}
