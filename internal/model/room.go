package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// DefaultRoomCapacity is used when a room is created without a capacity.
const DefaultRoomCapacity = 2

// Room is a bookable hotel room.  A room is created available, becomes
// unavailable when a reservation is placed on it and available again when
// that reservation is cancelled or deleted.
//
// Fields:
//  ID            – UUID string identifier.
//  Number        – room number, unique among rooms.
//  Type          – free-form room category (single, double, suite ...).
//  PricePerNight – nightly price, strictly positive.
//  Capacity      – number of guests the room sleeps.
//  IsAvailable   – false while a non-cancelled reservation holds the room.
type Room struct {
	ID            string  `json:"id"`              // rooms.id
	Number        string  `json:"number"`          // rooms.number
	Type          string  `json:"room_type"`       // rooms.room_type
	PricePerNight float64 `json:"price_per_night"` // rooms.price_per_night
	Capacity      int     `json:"capacity"`        // rooms.capacity
	IsAvailable   bool    `json:"is_available"`    // rooms.is_available
}

// RoomPatch carries the optional fields of a room update.  Nil fields are
// left untouched.  Availability is not patchable: it follows the
// reservations placed on the room.
type RoomPatch struct {
	Number        *string
	Type          *string
	PricePerNight *float64
	Capacity      *int
}

// NewRoom builds a new available room with a fresh identifier.  A zero
// capacity falls back to DefaultRoomCapacity.
func NewRoom(number, roomType string, price float64, capacity int) (*Room, error) {
	if capacity == 0 {
		capacity = DefaultRoomCapacity
	}
	r := &Room{
		ID:            uuid.NewString(),
		Number:        strings.TrimSpace(number),
		Type:          strings.TrimSpace(roomType),
		PricePerNight: price,
		Capacity:      capacity,
		IsAvailable:   true,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the field constraints of a room.
func (r *Room) Validate() error {
	switch {
	case r.Number == "":
		return validationError("room number is required")
	case r.Type == "":
		return validationError("room type is required")
	case !(r.PricePerNight > 0):
		return validationError("price per night must be greater than zero")
	case math.IsInf(r.PricePerNight, 0):
		return validationError("price per night must be a finite number")
	case r.Capacity <= 0:
		return validationError("capacity must be greater than zero")
	}
	return nil
}

// Apply copies the non-nil fields of p onto the room and validates the
// result.  The room is left unchanged when validation fails.
func (r *Room) Apply(p RoomPatch) error {
	next := *r
	if p.Number != nil {
		next.Number = strings.TrimSpace(*p.Number)
	}
	if p.Type != nil {
		next.Type = strings.TrimSpace(*p.Type)
	}
	if p.PricePerNight != nil {
		next.PricePerNight = *p.PricePerNight
	}
	if p.Capacity != nil {
		next.Capacity = *p.Capacity
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*r = next
	return nil
}

// Record returns the storage shape of the room.
func (r *Room) Record() Record {
	return Record{
		"id":              r.ID,
		"number":          r.Number,
		"room_type":       r.Type,
		"price_per_night": r.PricePerNight,
		"capacity":        r.Capacity,
		"is_available":    r.IsAvailable,
	}
}

// RoomFromRecord decodes a stored room record.
func RoomFromRecord(rec Record) (*Room, error) {
	var (
		r   Room
		err error
	)
	if r.ID, err = rec.str("id"); err != nil {
		return nil, err
	}
	if r.Number, err = rec.str("number"); err != nil {
		return nil, err
	}
	if r.Type, err = rec.str("room_type"); err != nil {
		return nil, err
	}
	if r.PricePerNight, err = rec.float("price_per_night"); err != nil {
		return nil, err
	}
	if _, ok := rec["capacity"]; ok {
		if r.Capacity, err = rec.integer("capacity"); err != nil {
			return nil, err
		}
	} else {
		r.Capacity = DefaultRoomCapacity
	}
	if r.IsAvailable, err = rec.boolean("is_available"); err != nil {
		return nil, err
	}
	return &r, nil
}
