package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PaymentRepo provides MySQL access to the payments table.  card_number is
// NULL for every payment that is not a card payment.
type PaymentRepo struct {
	s *Store
}

// NewPaymentRepo constructs a PaymentRepo over the given store.
func NewPaymentRepo(s *Store) *PaymentRepo {
	return &PaymentRepo{s: s}
}

const paymentColumns = `id, reservation_id, amount, status, payment_type, card_number`

// scanPayment reads a row into a record and lets the model pick the
// payment variant from its type tag.
func scanPayment(sc interface{ Scan(...any) error }) (*model.Payment, error) {
	var (
		id, resID, status, tag string
		amount                 float64
		card                   sql.NullString
	)
	if err := sc.Scan(&id, &resID, &amount, &status, &tag, &card); err != nil {
		return nil, err
	}
	rec := model.Record{
		"id":             id,
		"reservation_id": resID,
		"amount":         amount,
		"status":         status,
		"payment_type":   tag,
	}
	if card.Valid {
		rec["card_number"] = card.String
	}
	return model.PaymentFromRecord(rec)
}

func (r *PaymentRepo) query(ctx context.Context, q string, args ...any) ([]*model.Payment, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) List(ctx context.Context) ([]*model.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at, id`)
}

func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID string) ([]*model.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reservation_id = ? ORDER BY created_at, id`, reservationID)
}

func (r *PaymentRepo) Get(ctx context.Context, id string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	p, err := scanPayment(r.s.conn(ctx).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// Create inserts a payment.  The full card number is stored; masking is a
// presentation concern.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (id, reservation_id, amount, status, payment_type, card_number)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var card sql.NullString
	if c, ok := p.Method.(model.Card); ok {
		card = sql.NullString{String: c.Number, Valid: true}
	}
	_, err := r.s.conn(ctx).ExecContext(ctx, q,
		p.ID, p.ReservationID, p.Amount, string(p.Status), string(p.Type()), card)
	return err
}

func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrPaymentNotFound)
}

// DeleteByReservation removes every payment of a reservation.  Deleting
// none is not an error.
func (r *PaymentRepo) DeleteByReservation(ctx context.Context, reservationID string) error {
	_, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM payments WHERE reservation_id = ?`, reservationID)
	return err
}
