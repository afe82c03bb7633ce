package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Balance states.
const (
	BalanceOutstanding = "outstanding"
	BalanceSettled     = "settled"
	BalanceOverpaid    = "overpaid"
)

// PaymentInput holds the fields of a payment to process.  Type is a tag:
// "cash", "card" or anything else for a generic payment.
type PaymentInput struct {
	ReservationID string
	Amount        float64
	Type          string
	CardNumber    string
}

// Balance is the running account of a reservation.  It is recomputed from
// the stored payments on every call.
type Balance struct {
	ReservationID string  `json:"reservation_id"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"price_per_night"`
	TotalCost     float64 `json:"total_cost"`
	Paid          float64 `json:"paid"`
	Remaining     float64 `json:"remaining"`
	State         string  `json:"state"`
}

// ProcessPayment records a payment against a reservation.  The new payment
// is completed when everything paid so far, including this amount, covers
// nights x nightly price, and partial otherwise.  Earlier payments keep the
// status they were stored with.
func (s *Service) ProcessPayment(ctx context.Context, in PaymentInput) (*model.Payment, error) {
	var payment *model.Payment
	var totalCost, totalPaid float64
	err := s.inTx(ctx, func(ctx context.Context) error {
		res, room, err := s.reservationAndRoom(ctx, in.ReservationID)
		if err != nil {
			return err
		}
		payment, err = model.NewPayment(res.ID, in.Amount, in.Type, in.CardNumber)
		if err != nil {
			return err
		}
		if _, totalCost, err = stayCost(res, room); err != nil {
			return err
		}
		prior, err := s.paidSoFar(ctx, res.ID)
		if err != nil {
			return err
		}
		totalPaid = prior + payment.Amount
		if totalPaid >= totalCost {
			payment.Status = model.PaymentCompleted
		} else {
			payment.Status = model.PaymentPartial
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"reservation_id": payment.ReservationID,
		"payment_type":   payment.Type(),
		"status":         payment.Status,
		"total_paid":     totalPaid,
		"total_cost":     totalCost,
	}).Info(payment.Describe())
	s.publish(ctx, queue.Event{
		Type:          queue.PaymentProcessed,
		ReservationID: payment.ReservationID,
		PaymentID:     payment.ID,
		Status:        string(payment.Status),
		Amount:        payment.Amount,
	})
	return payment, nil
}

// Balance computes total cost, amount paid and what is left for a
// reservation.  Only completed and partial payments count as paid.
func (s *Service) Balance(ctx context.Context, reservationID string) (*Balance, error) {
	res, room, err := s.reservationAndRoom(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	nights, total, err := stayCost(res, room)
	if err != nil {
		return nil, err
	}
	paid, err := s.paidSoFar(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	b := &Balance{
		ReservationID: res.ID,
		Nights:        nights,
		PricePerNight: room.PricePerNight,
		TotalCost:     total,
		Paid:          paid,
		Remaining:     total - paid,
	}
	switch {
	case b.Remaining > 0:
		b.State = BalanceOutstanding
	case b.Remaining < 0:
		b.State = BalanceOverpaid
	default:
		b.State = BalanceSettled
	}
	return b, nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	return s.payments.Get(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context) ([]*model.Payment, error) {
	return s.payments.List(ctx)
}

// ListReservationPayments returns the payments of one reservation.
func (s *Service) ListReservationPayments(ctx context.Context, reservationID string) ([]*model.Payment, error) {
	if _, err := s.reservations.Get(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.payments.ListByReservation(ctx, reservationID)
}

// DeletePayment removes a payment record.
func (s *Service) DeletePayment(ctx context.Context, id string) error {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	s.log.WithFields(logrus.Fields{"payment_id": id, "reservation_id": p.ReservationID}).Info("payment deleted")
	s.publish(ctx, queue.Event{
		Type:          queue.PaymentDeleted,
		ReservationID: p.ReservationID,
		PaymentID:     p.ID,
		Amount:        p.Amount,
	})
	return nil
}

func (s *Service) reservationAndRoom(ctx context.Context, reservationID string) (*model.Reservation, *model.Room, error) {
	res, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.rooms.Get(ctx, res.RoomID)
	if err != nil {
		return nil, nil, fmt.Errorf("room of reservation %s: %w", res.ID, err)
	}
	return res, room, nil
}

// paidSoFar sums the completed and partial payments of a reservation.
// Pending and failed payments carry no money.
func (s *Service) paidSoFar(ctx context.Context, reservationID string) (float64, error) {
	payments, err := s.payments.ListByReservation(ctx, reservationID)
	if err != nil {
		return 0, fmt.Errorf("list payments: %w", err)
	}
	var sum float64
	for _, p := range payments {
		if p.Status.Counted() {
			sum += p.Amount
		}
	}
	return sum, nil
}

func stayCost(res *model.Reservation, room *model.Room) (int, float64, error) {
	nights, err := res.Nights()
	if err != nil {
		return 0, 0, err
	}
	return nights, float64(nights) * room.PricePerNight, nil
}
