package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing origin, arrival before departure).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with existing state: a
// composite for the same (left, right) pair already exists, or a delete is
// blocked because another track still references the row.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvariant is returned when an attempted composite would break the track
// invariants (join point, transfer window, transfer cap, balance).
// The composer only joins candidates its own queries selected, so this
// signals a logic bug rather than bad input.
var ErrInvariant = errors.New("track invariant violated")

// ErrMissingLeg is returned when a leg chain references a leg that no longer
// exists. A leg was removed without its tracks being removed first.
var ErrMissingLeg = errors.New("missing leg")
