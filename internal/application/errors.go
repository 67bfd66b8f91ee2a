package application

import (
	"errors"
	"fmt"

	"github.com/example/pocket-calendar/internal/calendar"
)

var (
	// ErrNotFound is returned when the requested event does not exist.
	ErrNotFound = errors.New("application: not found")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// OverlapError rejects a save whose time interval intersects existing events
// on the same calendar day. The collection is left unchanged.
type OverlapError struct {
	Overlaps []calendar.Overlap
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	if e == nil || len(e.Overlaps) == 0 {
		return "application: event overlaps existing events"
	}
	return fmt.Sprintf("application: event overlaps %d existing event(s)", len(e.Overlaps))
}

// PersistenceError signals that the durability write or encoding failed. The
// in-memory collection keeps its prior state; the caller decides whether to retry.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("application: persist during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying store failure.
func (e *PersistenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var oErr *OverlapError
	if errors.As(err, &oErr) {
		return "overlap"
	}
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return "persistence"
	}

	return "unexpected"
}
