package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the booking coordinator, the repositories and the
// HTTP layer.  Concrete failures wrap exactly one of these values so callers
// can classify them with errors.Is and still print a specific message.
//
//  ErrValidation   – malformed input (bad email, non-positive amount, bad dates, short card number).
//  ErrDuplicateKey – room number or guest email collision.
//  ErrNotFound     – an entity id did not resolve.
//  ErrConflict     – the operation collides with current state (room unavailable, room still referenced).
//  ErrInvalidState – a lifecycle transition that is not allowed (double cancel).
var (
	ErrValidation   = errors.New("validation error")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

// ErrInvalidRecord is returned when a stored record cannot be decoded into
// an entity.  It signals damaged storage rather than bad user input.
var ErrInvalidRecord = errors.New("invalid record")

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
