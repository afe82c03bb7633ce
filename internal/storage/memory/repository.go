package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// Entity repositories over the collection gateway.  Entities are decoded
// from records on every read and never cached.

func decodeAll[T any](recs []model.Record, decode func(model.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, db *DB, name string, match func(model.Record) bool,
	decode func(model.Record) (T, error), notFound error) (T, error) {
	var zero T
	recs, err := db.ReadCollection(ctx, name)
	if err != nil {
		return zero, err
	}
	for _, rec := range recs {
		if match(rec) {
			return decode(rec)
		}
	}
	return zero, notFound
}

func findMany[T any](ctx context.Context, db *DB, name string, match func(model.Record) bool,
	decode func(model.Record) (T, error)) ([]T, error) {
	recs, err := db.ReadCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	var hits []model.Record
	for _, rec := range recs {
		if match(rec) {
			hits = append(hits, rec)
		}
	}
	return decodeAll(hits, decode)
}

func byField(field, value string) func(model.Record) bool {
	return func(rec model.Record) bool { return rec[field] == value }
}

// insert appends rec unless conflict reports a clash with an existing record.
func (db *DB) insert(ctx context.Context, name string, rec model.Record, conflict func(model.Record) error) error {
	return db.update(ctx, name, func(recs []model.Record) ([]model.Record, error) {
		for _, r := range recs {
			if conflict != nil {
				if err := conflict(r); err != nil {
					return nil, err
				}
			}
		}
		return append(recs, rec), nil
	})
}

// replace swaps the record sharing rec's id.
func (db *DB) replace(ctx context.Context, name string, rec model.Record, conflict func(model.Record) error, notFound error) error {
	id := rec["id"]
	return db.update(ctx, name, func(recs []model.Record) ([]model.Record, error) {
		idx := -1
		for i, r := range recs {
			if r["id"] == id {
				idx = i
				continue
			}
			if conflict != nil {
				if err := conflict(r); err != nil {
					return nil, err
				}
			}
		}
		if idx < 0 {
			return nil, notFound
		}
		recs[idx] = rec
		return recs, nil
	})
}

// removeWhere drops every record matching match.  When notFound is non-nil
// and nothing matched, it is returned.
func (db *DB) removeWhere(ctx context.Context, name string, match func(model.Record) bool, notFound error) error {
	return db.update(ctx, name, func(recs []model.Record) ([]model.Record, error) {
		out := recs[:0]
		for _, r := range recs {
			if !match(r) {
				out = append(out, r)
			}
		}
		if notFound != nil && len(out) == len(recs) {
			return nil, notFound
		}
		return out, nil
	})
}

// RoomRepo stores rooms in the "rooms" collection.
type RoomRepo struct{ db *DB }

func NewRoomRepo(db *DB) *RoomRepo { return &RoomRepo{db: db} }

func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	return findMany(ctx, r.db, Rooms, func(model.Record) bool { return true }, model.RoomFromRecord)
}

func (r *RoomRepo) Get(ctx context.Context, id string) (*model.Room, error) {
	return findOne(ctx, r.db, Rooms, byField("id", id), model.RoomFromRecord, repository.ErrRoomNotFound)
}

func (r *RoomRepo) GetByNumber(ctx context.Context, number string) (*model.Room, error) {
	return findOne(ctx, r.db, Rooms, byField("number", number), model.RoomFromRecord, repository.ErrRoomNotFound)
}

func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	return r.db.insert(ctx, Rooms, room.Record(), sameRoomNumber(room.Number))
}

func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	return r.db.replace(ctx, Rooms, room.Record(), sameRoomNumber(room.Number), repository.ErrRoomNotFound)
}

func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	return r.db.removeWhere(ctx, Rooms, byField("id", id), repository.ErrRoomNotFound)
}

// Reserve flips the room from available to unavailable under the store
// lock, so two callers cannot both take the same room.
func (r *RoomRepo) Reserve(ctx context.Context, id string) error {
	return r.db.update(ctx, Rooms, func(recs []model.Record) ([]model.Record, error) {
		for i, rec := range recs {
			if rec["id"] != id {
				continue
			}
			room, err := model.RoomFromRecord(rec)
			if err != nil {
				return nil, err
			}
			if !room.IsAvailable {
				return nil, repository.ErrRoomUnavailable
			}
			room.IsAvailable = false
			recs[i] = room.Record()
			return recs, nil
		}
		return nil, repository.ErrRoomNotFound
	})
}

func sameRoomNumber(number string) func(model.Record) error {
	return func(rec model.Record) error {
		if rec["number"] == number {
			return repository.ErrRoomNumberExists
		}
		return nil
	}
}

// GuestRepo stores guests in the "guests" collection.  Emails compare case
// insensitively, like the unique key of the relational schema.
type GuestRepo struct{ db *DB }

func NewGuestRepo(db *DB) *GuestRepo { return &GuestRepo{db: db} }

func (r *GuestRepo) List(ctx context.Context) ([]*model.Guest, error) {
	return findMany(ctx, r.db, Guests, func(model.Record) bool { return true }, model.GuestFromRecord)
}

func (r *GuestRepo) Get(ctx context.Context, id string) (*model.Guest, error) {
	return findOne(ctx, r.db, Guests, byField("id", id), model.GuestFromRecord, repository.ErrGuestNotFound)
}

func (r *GuestRepo) GetByEmail(ctx context.Context, email string) (*model.Guest, error) {
	return findOne(ctx, r.db, Guests, emailMatch(email), model.GuestFromRecord, repository.ErrGuestNotFound)
}

func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	return r.db.insert(ctx, Guests, g.Record(), sameEmail(g.Email))
}

func (r *GuestRepo) Update(ctx context.Context, g *model.Guest) error {
	return r.db.replace(ctx, Guests, g.Record(), sameEmail(g.Email), repository.ErrGuestNotFound)
}

func (r *GuestRepo) Delete(ctx context.Context, id string) error {
	return r.db.removeWhere(ctx, Guests, byField("id", id), repository.ErrGuestNotFound)
}

func emailMatch(email string) func(model.Record) bool {
	return func(rec model.Record) bool {
		s, _ := rec["email"].(string)
		return strings.EqualFold(s, email)
	}
}

func sameEmail(email string) func(model.Record) error {
	match := emailMatch(email)
	return func(rec model.Record) error {
		if match(rec) {
			return repository.ErrEmailExists
		}
		return nil
	}
}

// ReservationRepo stores reservations in the "reservations" collection.
type ReservationRepo struct{ db *DB }

func NewReservationRepo(db *DB) *ReservationRepo { return &ReservationRepo{db: db} }

func (r *ReservationRepo) List(ctx context.Context) ([]*model.Reservation, error) {
	return findMany(ctx, r.db, Reservations, func(model.Record) bool { return true }, model.ReservationFromRecord)
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (*model.Reservation, error) {
	return findOne(ctx, r.db, Reservations, byField("id", id), model.ReservationFromRecord, repository.ErrReservationNotFound)
}

func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	return findMany(ctx, r.db, Reservations, byField("room_id", roomID), model.ReservationFromRecord)
}

func (r *ReservationRepo) ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error) {
	return findMany(ctx, r.db, Reservations, byField("guest_id", guestID), model.ReservationFromRecord)
}

func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.insert(ctx, Reservations, res.Record(), nil)
}

func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	return r.db.replace(ctx, Reservations, res.Record(), nil, repository.ErrReservationNotFound)
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	return r.db.removeWhere(ctx, Reservations, byField("id", id), repository.ErrReservationNotFound)
}

// PaymentRepo stores payments in the "payments" collection.
type PaymentRepo struct{ db *DB }

func NewPaymentRepo(db *DB) *PaymentRepo { return &PaymentRepo{db: db} }

func (r *PaymentRepo) List(ctx context.Context) ([]*model.Payment, error) {
	return findMany(ctx, r.db, Payments, func(model.Record) bool { return true }, model.PaymentFromRecord)
}

func (r *PaymentRepo) Get(ctx context.Context, id string) (*model.Payment, error) {
	return findOne(ctx, r.db, Payments, byField("id", id), model.PaymentFromRecord, repository.ErrPaymentNotFound)
}

func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID string) ([]*model.Payment, error) {
	return findMany(ctx, r.db, Payments, byField("reservation_id", reservationID), model.PaymentFromRecord)
}

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.db.insert(ctx, Payments, p.Record(), nil)
}

func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	return r.db.removeWhere(ctx, Payments, byField("id", id), repository.ErrPaymentNotFound)
}

func (r *PaymentRepo) DeleteByReservation(ctx context.Context, reservationID string) error {
	return r.db.removeWhere(ctx, Payments, byField("reservation_id", reservationID), nil)
}
