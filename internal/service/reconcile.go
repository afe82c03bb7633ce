package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Correction describes one room whose availability flag disagreed with its
// reservations.
type Correction struct {
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	Was        bool   `json:"was_available"`
	Now        bool   `json:"now_available"`
}

// ReconcileAvailability is the audit path for room availability.  A room
// must be available exactly when no pending or confirmed reservation
// references it; every room that breaks this is corrected and reported.
func (s *Service) ReconcileAvailability(ctx context.Context) ([]Correction, error) {
	var fixed []Correction
	err := s.inTx(ctx, func(ctx context.Context) error {
		rooms, err := s.rooms.List(ctx)
		if err != nil {
			return fmt.Errorf("list rooms: %w", err)
		}
		all, err := s.reservations.List(ctx)
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		held := make(map[string]bool, len(all))
		for _, r := range all {
			if r.Status.Active() {
				held[r.RoomID] = true
			}
		}
		for _, room := range rooms {
			want := !held[room.ID]
			if room.IsAvailable == want {
				continue
			}
			fixed = append(fixed, Correction{RoomID: room.ID, RoomNumber: room.Number, Was: room.IsAvailable, Now: want})
			room.IsAvailable = want
			if err := s.rooms.Update(ctx, room); err != nil {
				return fmt.Errorf("update room %s: %w", room.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range fixed {
		s.log.WithFields(logrus.Fields{
			"room_id":       c.RoomID,
			"was_available": c.Was,
			"now_available": c.Now,
		}).Warn("room availability corrected")
		s.publish(ctx, queue.Event{Type: queue.RoomReconciled, RoomID: c.RoomID, Status: fmt.Sprintf("available=%t", c.Now)})
	}
	return fixed, nil
}
