package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomInput holds the fields of a new room.
type RoomInput struct {
	Number        string
	Type          string
	PricePerNight float64
	Capacity      int
}

// AddRoom creates an available room.  Room numbers are unique.
func (s *Service) AddRoom(ctx context.Context, in RoomInput) (*model.Room, error) {
	room, err := model.NewRoom(in.Number, in.Type, in.PricePerNight, in.Capacity)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRoomNumberFree(ctx, room.Number, ""); err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	s.log.WithFields(logrus.Fields{"room_id": room.ID, "number": room.Number}).Info("room added")
	return room, nil
}

// GetRoom returns a room by id.
func (s *Service) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	return s.rooms.Get(ctx, id)
}

// ListRooms returns every room.
func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.rooms.List(ctx)
}

// ListAvailableRooms returns the rooms that can be reserved right now.
func (s *Service) ListAvailableRooms(ctx context.Context) ([]*model.Room, error) {
	all, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Room, 0, len(all))
	for _, r := range all {
		if r.IsAvailable {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpdateRoom applies the provided fields of p to the room.
func (s *Service) UpdateRoom(ctx context.Context, id string, p model.RoomPatch) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := room.Apply(p); err != nil {
		return nil, err
	}
	if p.Number != nil {
		if err := s.ensureRoomNumberFree(ctx, room.Number, room.ID); err != nil {
			return nil, err
		}
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	s.log.WithField("room_id", room.ID).Info("room updated")
	return room, nil
}

// DeleteRoom removes a room.  A room still held by a pending or confirmed
// reservation cannot be deleted.
func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.rooms.Get(ctx, id); err != nil {
			return err
		}
		held, err := s.reservations.ListByRoom(ctx, id)
		if err != nil {
			return fmt.Errorf("list reservations of room: %w", err)
		}
		for _, r := range held {
			if r.Status.Active() {
				return fmt.Errorf("%w: room is referenced by active reservation %s", model.ErrConflict, r.ID)
			}
		}
		if err := s.rooms.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("room_id", id).Info("room deleted")
	return nil
}

// ensureRoomNumberFree fails with ErrDuplicateKey when another room (other
// than exceptID) already uses number.
func (s *Service) ensureRoomNumberFree(ctx context.Context, number, exceptID string) error {
	existing, err := s.rooms.GetByNumber(ctx, number)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("look up room number: %w", err)
	case existing.ID == exceptID:
		return nil
	}
	return fmt.Errorf("%w: room number %s already exists", model.ErrDuplicateKey, number)
}
