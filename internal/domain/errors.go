package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. unknown duty status, unknown time zone).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with existing state: a second
// open duty interval for a driver, a duplicate logbook day for the same
// (driver, date), or deleting a row that is still referenced.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidRange is returned when an end time precedes its start time.
// Handlers should map this to HTTP 422.
var ErrInvalidRange = errors.New("invalid range")

// ErrAlreadyClosed is returned when closing a logbook day or duty interval
// that has already been closed.
// Handlers should map this to HTTP 409.
var ErrAlreadyClosed = errors.New("already closed")
