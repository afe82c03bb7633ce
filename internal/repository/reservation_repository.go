package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo provides MySQL access to the reservations table.
// check_in_date and check_out_date are DATE columns; they are converted to
// and from model.DateLayout strings at this boundary.
type ReservationRepo struct {
	s *Store
}

// NewReservationRepo constructs a ReservationRepo over the given store.
func NewReservationRepo(s *Store) *ReservationRepo {
	return &ReservationRepo{s: s}
}

const reservationColumns = `id, guest_id, room_id, check_in_date, check_out_date, status`

func scanReservation(sc interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		r       model.Reservation
		in, out time.Time
		status  string
	)
	if err := sc.Scan(&r.ID, &r.GuestID, &r.RoomID, &in, &out, &status); err != nil {
		return nil, err
	}
	st, err := model.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	r.CheckInDate = in.Format(model.DateLayout)
	r.CheckOutDate = out.Format(model.DateLayout)
	r.Status = st
	return &r, nil
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// List returns every reservation, oldest first.
func (r *ReservationRepo) List(ctx context.Context) ([]*model.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at, id`)
}

// ListByRoom returns the reservations placed on a room.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE room_id = ? ORDER BY created_at, id`, roomID)
}

// ListByGuest returns the reservations held by a guest.
func (r *ReservationRepo) ListByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE guest_id = ? ORDER BY created_at, id`, guestID)
}

// Get retrieves a reservation by id or returns ErrReservationNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.s.conn(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// Create inserts a reservation.  The guest and room are not foreign keys:
// a reservation may outlive them and is then shown with placeholders.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (id, guest_id, room_id, check_in_date, check_out_date, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.s.conn(ctx).ExecContext(ctx, q,
		res.ID, res.GuestID, res.RoomID, res.CheckInDate, res.CheckOutDate, string(res.Status))
	return err
}

// Update rewrites the dates and status of a reservation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET guest_id = ?, room_id = ?, check_in_date = ?, check_out_date = ?, status = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	out, err := r.s.conn(ctx).ExecContext(ctx, q,
		res.GuestID, res.RoomID, res.CheckInDate, res.CheckOutDate, string(res.Status), res.ID)
	if err != nil {
		return err
	}
	return expectOne(out, ErrReservationNotFound)
}

// Delete removes a reservation by id.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrReservationNotFound)
}
