package game

import "errors"

// Failure kinds surfaced by the command API. The web layer maps them to
// HTTP status codes and error bodies.
var (
	ErrInvalidName      = errors.New("invalid user name")
	ErrMapNotFound      = errors.New("map not found")
	ErrUnknownToken     = errors.New("player token has not been found")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrTickDisabled     = errors.New("manual tick is disabled")
	ErrInvalidDelta     = errors.New("invalid time delta")

	// ErrDuplicatePlayer signals a programming invariant violation: the
	// same dog registered twice.
	ErrDuplicatePlayer = errors.New("player already registered")
)
