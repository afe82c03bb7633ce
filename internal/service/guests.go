package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// AddGuest registers a guest.  Fields are trimmed and emails are unique.
func (s *Service) AddGuest(ctx context.Context, name, email, phone string) (*model.Guest, error) {
	guest, err := model.NewGuest(name, email, phone)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, guest.Email, ""); err != nil {
		return nil, err
	}
	if err := s.guests.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	s.log.WithFields(logrus.Fields{"guest_id": guest.ID}).Info("guest added")
	return guest, nil
}

func (s *Service) GetGuest(ctx context.Context, id string) (*model.Guest, error) {
	return s.guests.Get(ctx, id)
}

func (s *Service) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	return s.guests.List(ctx)
}

// UpdateGuest applies the provided fields of p.  A changed email must stay
// valid and unique.
func (s *Service) UpdateGuest(ctx context.Context, id string, p model.GuestPatch) (*model.Guest, error) {
	guest, err := s.guests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guest.Apply(p); err != nil {
		return nil, err
	}
	if p.Email != nil {
		if err := s.ensureEmailFree(ctx, guest.Email, guest.ID); err != nil {
			return nil, err
		}
	}
	if err := s.guests.Update(ctx, guest); err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	s.log.WithField("guest_id", guest.ID).Info("guest updated")
	return guest, nil
}

// DeleteGuest removes a guest that holds no pending or confirmed reservation.
func (s *Service) DeleteGuest(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.guests.Get(ctx, id); err != nil {
			return err
		}
		held, err := s.reservations.ListByGuest(ctx, id)
		if err != nil {
			return fmt.Errorf("list reservations of guest: %w", err)
		}
		for _, r := range held {
			if r.Status.Active() {
				return fmt.Errorf("%w: guest is referenced by active reservation %s", model.ErrConflict, r.ID)
			}
		}
		if err := s.guests.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete guest: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("guest_id", id).Info("guest deleted")
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.guests.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("look up guest email: %w", err)
	case existing.ID == exceptID:
		return nil
	}
	return fmt.Errorf("%w: email %s is already registered", model.ErrDuplicateKey, email)
}
