package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing location, cycle hours outside 0..70).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInfeasibleSchedule is returned by the scheduler when an activity cannot
// be completed under the HOS limits, even after a full rest. Retrying with the
// same input reproduces the failure; the trip must be split or re-planned.
// Handlers should map this to HTTP 422.
var ErrInfeasibleSchedule = errors.New("infeasible schedule")

// ErrRouteUnavailable is returned by routing providers when no route could be
// obtained for a leg. It is a retryable condition.
// Handlers should map this to HTTP 503.
var ErrRouteUnavailable = errors.New("route unavailable")

// ErrEmptyDay signals a day log with no segments. The scheduler never produces
// one, so seeing it means a defect, not bad input.
var ErrEmptyDay = errors.New("empty day")

// ErrClockUnderflow signals a negative duration handed to the duty clock.
// Like ErrEmptyDay it is an internal invariant violation.
var ErrClockUnderflow = errors.New("duty clock underflow")
