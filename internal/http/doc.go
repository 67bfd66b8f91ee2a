// Package http provides HTTP handlers and middleware for the calendar API.
//
// The router exposes the following endpoints:
//   - GET /events: the full event collection in insertion order.
//   - POST /events: saves a new event exchanging the `eventDTO` payload
//     defined in event_handler.go. Overlapping intervals answer 409 with the
//     conflicting intervals listed; validation issues answer 422 with a field
//     error map; days strictly before today are closed for creation.
//   - PUT /events/{id}, DELETE /events/{id}: edit and removal of a single
//     event. Deletes are idempotent and answer 204 even for unknown ids.
//   - GET /calendar/months/{YYYY-MM}: the Sunday-first month grid as day
//     slots carrying padding, today, past, and marker flags.
//   - GET /calendar/days/{YYYY-MM-DD}: events on one day plus `canCreate`,
//     which the rendering layer uses to decide whether an editing surface
//     opens blank for that day.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
