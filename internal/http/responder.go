package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/pocket-calendar/internal/application"
)

var (
	errBadRequestBody = errors.New("the request body is not valid JSON")
	errInvalidEventID = errors.New("the event id is not valid")
	errInvalidMonth   = errors.New("the month must be in YYYY-MM form")
	errInvalidDay     = errors.New("the day must be in YYYY-MM-DD form")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps the application error taxonomy onto HTTP statuses:
// overlap rejections surface as conflicts the rendering layer shows the user,
// validation issues carry their field map, and persistence failures are
// reported rather than swallowed.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	logger := r.loggerFor(ctx)

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested event was not found"})
		return
	}

	var oErr *application.OverlapError
	if errors.As(err, &oErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "EVENT_OVERLAP",
			Message:   "event overlaps with existing events",
			Overlaps:  toOverlapDTOs(oErr),
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the event input is invalid",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	var pErr *application.PersistenceError
	if errors.As(err, &pErr) {
		logger.ErrorContext(ctx, "durable write failed", "op", pErr.Op, "error", pErr)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: "PERSISTENCE_FAILURE",
			Message:   "failed to persist events",
		})
		return
	}

	logger.ErrorContext(ctx, "unexpected service error", "kind", application.ErrorKind(err), "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"errorCode,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Overlaps  []overlapDTO      `json:"overlaps,omitempty"`
}

type overlapDTO struct {
	EventID   string `json:"eventId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func toOverlapDTOs(err *application.OverlapError) []overlapDTO {
	if err == nil || len(err.Overlaps) == 0 {
		return nil
	}
	out := make([]overlapDTO, 0, len(err.Overlaps))
	for _, overlap := range err.Overlaps {
		out = append(out, overlapDTO{
			EventID:   overlap.WithEventID,
			StartTime: overlap.Start.String(),
			EndTime:   overlap.End.String(),
		})
	}
	return out
}
