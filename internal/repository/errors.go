// Package repository holds the MySQL data access layer for rooms, guests,
// reservations and payments, plus the sentinel errors every storage backend
// returns.  Each sentinel wraps one of the model error kinds so the booking
// coordinator and the HTTP layer can classify failures with errors.Is
// without knowing which backend produced them.
package repository

import (
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Lookup failures.  Handlers translate these into HTTP 404 responses.
var (
	ErrRoomNotFound        = fmt.Errorf("room %w", model.ErrNotFound)
	ErrGuestNotFound       = fmt.Errorf("guest %w", model.ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", model.ErrNotFound)
	ErrPaymentNotFound     = fmt.Errorf("payment %w", model.ErrNotFound)
)

// ErrRoomUnavailable is returned by Reserve when the room was already taken
// by the time the compare-and-swap ran.  Handlers translate it into 409.
var ErrRoomUnavailable = fmt.Errorf("%w: room is not available", model.ErrConflict)

// Unique key violations on rooms.number and guests.email.
var (
	ErrRoomNumberExists = fmt.Errorf("%w: room number already exists", model.ErrDuplicateKey)
	ErrEmailExists      = fmt.Errorf("%w: email already registered", model.ErrDuplicateKey)
)
