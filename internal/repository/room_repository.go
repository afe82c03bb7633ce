package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo provides MySQL access to the rooms table.  Every method runs on
// the transaction carried by ctx when there is one.
type RoomRepo struct {
	s *Store
}

// NewRoomRepo constructs a RoomRepo over the given store.
func NewRoomRepo(s *Store) *RoomRepo {
	return &RoomRepo{s: s}
}

const roomColumns = `id, number, room_type, price_per_night, capacity, is_available`

func scanRoom(sc interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	if err := sc.Scan(&r.ID, &r.Number, &r.Type, &r.PricePerNight, &r.Capacity, &r.IsAvailable); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns every room ordered by room number.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY number`
	rows, err := r.s.conn(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Get retrieves a room by id.  It returns ErrRoomNotFound when no row matches.
func (r *RoomRepo) Get(ctx context.Context, id string) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(r.s.conn(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// GetByNumber retrieves a room by its unique number.
func (r *RoomRepo) GetByNumber(ctx context.Context, number string) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE number = ?`
	room, err := scanRoom(r.s.conn(ctx).QueryRowContext(ctx, q, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// Create inserts a room.  A clash on the unique number key is reported as
// ErrRoomNumberExists.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (id, number, room_type, price_per_night, capacity, is_available)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.s.conn(ctx).ExecContext(ctx, q,
		room.ID, room.Number, room.Type, room.PricePerNight, room.Capacity, room.IsAvailable)
	if isDuplicate(err) {
		return ErrRoomNumberExists
	}
	return err
}

// Update rewrites the mutable columns of a room, availability included.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	const q = `UPDATE rooms
	           SET number = ?, room_type = ?, price_per_night = ?, capacity = ?, is_available = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.s.conn(ctx).ExecContext(ctx, q,
		room.Number, room.Type, room.PricePerNight, room.Capacity, room.IsAvailable, room.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoomNumberExists
		}
		return err
	}
	return expectOne(res, ErrRoomNotFound)
}

// Delete removes a room by id.
func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM rooms WHERE id = ?`
	res, err := r.s.conn(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrRoomNotFound)
}

// Reserve marks an available room unavailable with a single conditional
// UPDATE, so of two concurrent callers only one changes the row.  When no
// row changed the room is looked up again to tell a missing room from a
// taken one.
func (r *RoomRepo) Reserve(ctx context.Context, id string) error {
	const q = `UPDATE rooms SET is_available = 0, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND is_available = 1`
	res, err := r.s.conn(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrRoomUnavailable
}

// expectOne maps an update that touched no row to notFound.  The DSN sets
// clientFoundRows so a row rewritten with identical values still counts.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
