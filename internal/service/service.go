// Package service implements the booking coordinator: the only component
// that enforces invariants spanning more than one entity.  It keeps room
// availability in step with the reservation lifecycle and computes payment
// completeness against the cost of the stay.  Storage is injected through
// the repository interfaces below so the same coordinator runs on MySQL or
// on the in-memory collection store.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Transactor groups several repository calls into one storage transaction.
// BeginTransaction returns a context that carries the transaction; every
// repository call made with that context joins it.
type Transactor interface {
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}

// RoomRepository persists rooms.  Reserve flips a room from available to
// unavailable atomically and fails with repository.ErrRoomUnavailable when
// the room is already taken.
type RoomRepository interface {
	List(ctx context.Context) ([]*model.Room, error)
	Get(ctx context.Context, id string) (*model.Room, error)
	GetByNumber(ctx context.Context, number string) (*model.Room, error)
	Create(ctx context.Context, r *model.Room) error
	Update(ctx context.Context, r *model.Room) error
	Delete(ctx context.Context, id string) error
	Reserve(ctx context.Context, id string) error
}

// GuestRepository persists guests.
type GuestRepository interface {
	List(ctx context.Context) ([]*model.Guest, error)
	Get(ctx context.Context, id string) (*model.Guest, error)
	GetByEmail(ctx context.Context, email string) (*model.Guest, error)
	Create(ctx context.Context, g *model.Guest) error
	Update(ctx context.Context, g *model.Guest) error
	Delete(ctx context.Context, id string) error
}

// ReservationRepository persists reservations.
type ReservationRepository interface {
	List(ctx context.Context) ([]*model.Reservation, error)
	Get(ctx context.Context, id string) (*model.Reservation, error)
	ListByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error)
	Create(ctx context.Context, r *model.Reservation) error
	Update(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id string) error
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	List(ctx context.Context) ([]*model.Payment, error)
	Get(ctx context.Context, id string) (*model.Payment, error)
	ListByReservation(ctx context.Context, reservationID string) ([]*model.Payment, error)
	Create(ctx context.Context, p *model.Payment) error
	Delete(ctx context.Context, id string) error
	DeleteByReservation(ctx context.Context, reservationID string) error
}

// EventPublisher delivers committed state changes to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Deps bundles what the coordinator needs.  Events and Logger are optional.
type Deps struct {
	Tx           Transactor
	Rooms        RoomRepository
	Guests       GuestRepository
	Reservations ReservationRepository
	Payments     PaymentRepository
	Events       EventPublisher
	Logger       logrus.FieldLogger
}

// Service is the booking coordinator.
type Service struct {
	tx           Transactor
	rooms        RoomRepository
	guests       GuestRepository
	reservations ReservationRepository
	payments     PaymentRepository
	events       EventPublisher
	log          logrus.FieldLogger
	now          func() time.Time
}

// New constructs the coordinator and panics if a storage dependency is missing.
func New(d Deps) *Service {
	if d.Tx == nil || d.Rooms == nil || d.Guests == nil || d.Reservations == nil || d.Payments == nil {
		panic("nil storage dependency passed to service.New")
	}
	s := &Service{
		tx:           d.Tx,
		rooms:        d.Rooms,
		guests:       d.Guests,
		reservations: d.Reservations,
		payments:     d.Payments,
		events:       d.Events,
		log:          d.Logger,
		now:          time.Now,
	}
	if s.events == nil {
		s.events = discardPublisher{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, queue.Event) error { return nil }

// inTx runs fn inside one storage transaction.  Any error or panic from fn
// rolls back every write fn made.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	txCtx, err := s.tx.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := s.tx.RollbackTransaction(txCtx); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback failed")
		}
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}
	if err := s.tx.CommitTransaction(txCtx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// publish emits ev after the change is committed.  Broker failures are
// logged and never fail the operation.
func (s *Service) publish(ctx context.Context, ev queue.Event) {
	ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Warn("event publish failed")
	}
}
