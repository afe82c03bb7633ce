package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// GuestRepo provides MySQL access to the guests table.  The email column
// uses a case-insensitive collation, so uniqueness and GetByEmail ignore
// case.
type GuestRepo struct {
	s *Store
}

func NewGuestRepo(s *Store) *GuestRepo {
	return &GuestRepo{s: s}
}

const guestColumns = `id, name, email, phone`

func scanGuest(sc interface{ Scan(...any) error }) (*model.Guest, error) {
	var g model.Guest
	if err := sc.Scan(&g.ID, &g.Name, &g.Email, &g.Phone); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuestRepo) List(ctx context.Context) ([]*model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests ORDER BY name, id`
	rows, err := r.s.conn(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GuestRepo) Get(ctx context.Context, id string) (*model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE id = ?`
	g, err := scanGuest(r.s.conn(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	return g, err
}

func (r *GuestRepo) GetByEmail(ctx context.Context, email string) (*model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE email = ?`
	g, err := scanGuest(r.s.conn(ctx).QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	return g, err
}

// Create inserts a guest, reporting a duplicate email as ErrEmailExists.
func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	const q = `INSERT INTO guests (id, name, email, phone) VALUES (?, ?, ?, ?)`
	_, err := r.s.conn(ctx).ExecContext(ctx, q, g.ID, g.Name, g.Email, g.Phone)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

func (r *GuestRepo) Update(ctx context.Context, g *model.Guest) error {
	const q = `UPDATE guests SET name = ?, email = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.s.conn(ctx).ExecContext(ctx, q, g.Name, g.Email, g.Phone, g.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return expectOne(res, ErrGuestNotFound)
}

func (r *GuestRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrGuestNotFound)
}
