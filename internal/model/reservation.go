package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for check-in and check-out.
const DateLayout = "2006-01-02"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus maps a stored status string onto a known status.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvalidRecord, s)
}

// Active reports whether a reservation with this status still holds its room.
func (s ReservationStatus) Active() bool { return s != StatusCancelled }

// Reservation books one room for one guest between two calendar dates.
// Dates are kept in DateLayout form so the stored record and the entity
// always agree.
//
// Fields:
//  ID           – UUID string identifier.
//  GuestID      – guest holding the reservation.
//  RoomID       – reserved room.
//  CheckInDate  – arrival date (YYYY-MM-DD).
//  CheckOutDate – departure date, strictly after CheckInDate.
//  Status       – pending, confirmed or cancelled.
type Reservation struct {
	ID           string            `json:"id"`             // reservations.id
	GuestID      string            `json:"guest_id"`       // reservations.guest_id
	RoomID       string            `json:"room_id"`        // reservations.room_id
	CheckInDate  string            `json:"check_in_date"`  // reservations.check_in_date
	CheckOutDate string            `json:"check_out_date"` // reservations.check_out_date
	Status       ReservationStatus `json:"status"`         // reservations.status
}

// NewReservation builds a pending reservation after checking that the
// stay is at least one night long.
func NewReservation(guestID, roomID, checkIn, checkOut string) (*Reservation, error) {
	r := &Reservation{
		ID:           uuid.NewString(),
		GuestID:      strings.TrimSpace(guestID),
		RoomID:       strings.TrimSpace(roomID),
		CheckInDate:  strings.TrimSpace(checkIn),
		CheckOutDate: strings.TrimSpace(checkOut),
		Status:       StatusPending,
	}
	if r.GuestID == "" {
		return nil, validationError("guest id is required")
	}
	if r.RoomID == "" {
		return nil, validationError("room id is required")
	}
	if _, err := StayNights(r.CheckInDate, r.CheckOutDate); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, validationError("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// StayNights returns the number of nights between check-in and check-out.
// Check-out must fall strictly after check-in.
func StayNights(checkIn, checkOut string) (int, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return 0, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return 0, err
	}
	if !out.After(in) {
		return 0, validationError("check-out date must be after check-in date")
	}
	// Both dates are UTC midnights, so whole days divide exactly.
	return int((out.Unix() - in.Unix()) / 86400), nil
}

// Nights returns the length of the stay.
func (r *Reservation) Nights() (int, error) {
	return StayNights(r.CheckInDate, r.CheckOutDate)
}

// Reschedule applies the provided dates and re-checks their ordering.  The
// reservation is left unchanged on error.
func (r *Reservation) Reschedule(checkIn, checkOut *string) error {
	if r.Status == StatusCancelled {
		return fmt.Errorf("%w: reservation is cancelled", ErrInvalidState)
	}
	in, out := r.CheckInDate, r.CheckOutDate
	if checkIn != nil {
		in = strings.TrimSpace(*checkIn)
	}
	if checkOut != nil {
		out = strings.TrimSpace(*checkOut)
	}
	if _, err := StayNights(in, out); err != nil {
		return err
	}
	r.CheckInDate, r.CheckOutDate = in, out
	return nil
}

// Cancel moves a pending or confirmed reservation to cancelled.  Cancelling
// twice is an error.
func (r *Reservation) Cancel() error {
	if r.Status == StatusCancelled {
		return fmt.Errorf("%w: reservation is already cancelled", ErrInvalidState)
	}
	r.Status = StatusCancelled
	return nil
}

// Confirm moves a pending reservation to confirmed.
func (r *Reservation) Confirm() error {
	switch r.Status {
	case StatusPending:
		r.Status = StatusConfirmed
		return nil
	case StatusConfirmed:
		return fmt.Errorf("%w: reservation is already confirmed", ErrInvalidState)
	}
	return fmt.Errorf("%w: cannot confirm a %s reservation", ErrInvalidState, r.Status)
}

// Record returns the storage shape of the reservation.
func (r *Reservation) Record() Record {
	return Record{
		"id":             r.ID,
		"guest_id":       r.GuestID,
		"room_id":        r.RoomID,
		"check_in_date":  r.CheckInDate,
		"check_out_date": r.CheckOutDate,
		"status":         string(r.Status),
	}
}

// ReservationFromRecord decodes a stored reservation record.
func ReservationFromRecord(rec Record) (*Reservation, error) {
	var (
		r   Reservation
		err error
	)
	if r.ID, err = rec.str("id"); err != nil {
		return nil, err
	}
	if r.GuestID, err = rec.str("guest_id"); err != nil {
		return nil, err
	}
	if r.RoomID, err = rec.str("room_id"); err != nil {
		return nil, err
	}
	if r.CheckInDate, err = rec.str("check_in_date"); err != nil {
		return nil, err
	}
	if r.CheckOutDate, err = rec.str("check_out_date"); err != nil {
		return nil, err
	}
	status, err := rec.str("status")
	if err != nil {
		return nil, err
	}
	if r.Status, err = ParseReservationStatus(status); err != nil {
		return nil, err
	}
	return &r, nil
}
