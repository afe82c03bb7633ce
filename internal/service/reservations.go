package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// unknownName is shown for a reference that no longer resolves.
const unknownName = "Unknown"

// ReservationDetails is a reservation with its guest name and room number
// resolved for display.
type ReservationDetails struct {
	*model.Reservation
	GuestName  string `json:"guest_name"`
	RoomNumber string `json:"room_number"`
}

// CreateReservation books a room for a guest.  The reservation write and the
// room availability flip commit together; if another request takes the room
// first the whole operation fails with ErrConflict and nothing is stored.
func (s *Service) CreateReservation(ctx context.Context, guestID, roomID, checkIn, checkOut string) (*model.Reservation, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsAvailable {
		return nil, fmt.Errorf("%w: room %s is not available", model.ErrConflict, room.Number)
	}
	res, err := model.NewReservation(guestID, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if _, err := s.guests.Get(ctx, res.GuestID); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		if err := s.rooms.Reserve(ctx, room.ID); err != nil {
			return fmt.Errorf("reserve room %s: %w", room.Number, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"room_id":        res.RoomID,
		"guest_id":       res.GuestID,
	}).Info("reservation created")
	s.publish(ctx, reservationEvent(queue.ReservationCreated, res))
	return res, nil
}

// GetReservation returns a reservation by id.
func (s *Service) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

// ListReservations returns every reservation with guest and room resolved.
// Dangling references show as "Unknown".
func (s *Service) ListReservations(ctx context.Context) ([]ReservationDetails, error) {
	all, err := s.reservations.List(ctx)
	if err != nil {
		return nil, err
	}
	guests, err := s.guests.List(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(guests))
	for _, g := range guests {
		names[g.ID] = g.Name
	}
	numbers := make(map[string]string, len(rooms))
	for _, r := range rooms {
		numbers[r.ID] = r.Number
	}

	out := make([]ReservationDetails, 0, len(all))
	for _, r := range all {
		d := ReservationDetails{Reservation: r, GuestName: unknownName, RoomNumber: unknownName}
		if n, ok := names[r.GuestID]; ok {
			d.GuestName = n
		}
		if n, ok := numbers[r.RoomID]; ok {
			d.RoomNumber = n
		}
		out = append(out, d)
	}
	return out, nil
}

// UpdateReservation changes the stay dates.  Only provided dates change and
// the result must still be at least one night long.
func (s *Service) UpdateReservation(ctx context.Context, id string, checkIn, checkOut *string) (*model.Reservation, error) {
	res, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.Reschedule(checkIn, checkOut); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"check_in":       res.CheckInDate,
		"check_out":      res.CheckOutDate,
	}).Info("reservation rescheduled")
	return res, nil
}

// ConfirmReservation moves a pending reservation to confirmed.
func (s *Service) ConfirmReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.Confirm(); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	s.log.WithField("reservation_id", res.ID).Info("reservation confirmed")
	s.publish(ctx, reservationEvent(queue.ReservationConfirmed, res))
	return res, nil
}

// CancelReservation cancels a pending or confirmed reservation and frees its
// room if the room still exists.  Cancelling twice fails with ErrInvalidState.
func (s *Service) CancelReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.reservations.Get(ctx, id); err != nil {
			return err
		}
		if err := res.Cancel(); err != nil {
			return err
		}
		if err := s.reservations.Update(ctx, res); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		return s.releaseRoom(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"reservation_id": res.ID, "room_id": res.RoomID}).Info("reservation cancelled")
	s.publish(ctx, reservationEvent(queue.ReservationCancelled, res))
	return res, nil
}

// DeleteReservation removes a reservation whatever its status, frees its
// room and deletes the payments recorded against it.
func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	var res *model.Reservation
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		if res, err = s.reservations.Get(ctx, id); err != nil {
			return err
		}
		if err := s.releaseRoom(ctx, res); err != nil {
			return err
		}
		if err := s.payments.DeleteByReservation(ctx, id); err != nil {
			return fmt.Errorf("delete payments of reservation: %w", err)
		}
		if err := s.reservations.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"reservation_id": res.ID, "room_id": res.RoomID}).Info("reservation deleted")
	s.publish(ctx, reservationEvent(queue.ReservationDeleted, res))
	return nil
}

// releaseRoom marks the room of res available.  A missing room is skipped,
// and so is a room that another active reservation still holds.
func (s *Service) releaseRoom(ctx context.Context, res *model.Reservation) error {
	room, err := s.rooms.Get(ctx, res.RoomID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	others, err := s.reservations.ListByRoom(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("list reservations of room: %w", err)
	}
	for _, o := range others {
		if o.ID != res.ID && o.Status.Active() {
			s.log.WithFields(logrus.Fields{
				"room_id":        room.ID,
				"reservation_id": o.ID,
			}).Warn("room still held by another reservation, leaving it unavailable")
			return nil
		}
	}
	if room.IsAvailable {
		return nil
	}
	room.IsAvailable = true
	if err := s.rooms.Update(ctx, room); err != nil {
		return fmt.Errorf("release room: %w", err)
	}
	return nil
}

func reservationEvent(kind string, r *model.Reservation) queue.Event {
	return queue.Event{
		Type:          kind,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		GuestID:       r.GuestID,
		Status:        string(r.Status),
		CheckInDate:   r.CheckInDate,
		CheckOutDate:  r.CheckOutDate,
	}
}
