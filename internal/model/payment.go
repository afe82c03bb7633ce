package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// MinCardNumberLength is the shortest card number a card payment accepts.
const MinCardNumberLength = 13

// PaymentType tags the payment variant.
type PaymentType string

const (
	PaymentCash    PaymentType = "cash"
	PaymentCard    PaymentType = "card"
	PaymentGeneric PaymentType = "generic"
)

// PaymentStatus tracks how a payment relates to the cost of its stay.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// ParsePaymentStatus maps a stored status string onto a known status.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentPending, PaymentPartial, PaymentCompleted, PaymentFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrInvalidRecord, s)
}

// Counted reports whether money in this status counts towards the amount
// paid for a reservation.
func (s PaymentStatus) Counted() bool {
	return s == PaymentCompleted || s == PaymentPartial
}

// PaymentMethod is the variant part of a payment.  It is implemented only by
// Cash, Card and Generic.
type PaymentMethod interface {
	Type() PaymentType
	isPaymentMethod()
}

// Cash is a payment made in cash at the desk.
type Cash struct{}

// Card is a card payment.  Number may be empty when the card was not
// recorded; a recorded number is at least MinCardNumberLength long.
type Card struct {
	Number string
}

// Generic is any other payment channel.
type Generic struct{}

func (Cash) Type() PaymentType    { return PaymentCash }
func (Card) Type() PaymentType    { return PaymentCard }
func (Generic) Type() PaymentType { return PaymentGeneric }

func (Cash) isPaymentMethod()    {}
func (Card) isPaymentMethod()    {}
func (Generic) isPaymentMethod() {}

// Payment is money received against a reservation.
//
// Fields:
//  ID            – UUID string identifier.
//  ReservationID – reservation the payment belongs to.
//  Amount        – strictly positive amount.
//  Status        – pending until processed, then partial or completed.
//  Method        – Cash, Card or Generic variant.
type Payment struct {
	ID            string        // payments.id
	ReservationID string        // payments.reservation_id
	Amount        float64       // payments.amount
	Status        PaymentStatus // payments.status
	Method        PaymentMethod // payments.payment_type (+ payments.card_number)
}

// NewPayment is the payment constructor.  The type tag is matched case
// insensitively: "cash" and "card" select their variants and any other tag
// yields a generic payment.  The payment starts pending; it is not stored.
func NewPayment(reservationID string, amount float64, paymentType, cardNumber string) (*Payment, error) {
	if amount < 0 {
		return nil, validationError("payment amount cannot be negative")
	}
	if !(amount > 0) {
		return nil, validationError("payment amount must be greater than zero")
	}
	if math.IsInf(amount, 0) {
		return nil, validationError("payment amount must be a finite number")
	}
	var method PaymentMethod
	switch PaymentType(strings.ToLower(strings.TrimSpace(paymentType))) {
	case PaymentCash:
		method = Cash{}
	case PaymentCard:
		number := strings.TrimSpace(cardNumber)
		if number != "" && len(number) < MinCardNumberLength {
			return nil, validationError("card number must be at least %d digits", MinCardNumberLength)
		}
		method = Card{Number: number}
	default:
		method = Generic{}
	}
	return &Payment{
		ID:            uuid.NewString(),
		ReservationID: strings.TrimSpace(reservationID),
		Amount:        amount,
		Status:        PaymentPending,
		Method:        method,
	}, nil
}

// Type returns the variant tag, defaulting to generic for a payment with no method.
func (p *Payment) Type() PaymentType {
	if p.Method == nil {
		return PaymentGeneric
	}
	return p.Method.Type()
}

// MaskedCardNumber returns the card number with all but the last four
// digits hidden.  Non-card payments return "".
func (p *Payment) MaskedCardNumber() string {
	if c, ok := p.Method.(Card); ok {
		return MaskCardNumber(c.Number)
	}
	return ""
}

// MaskCardNumber keeps only the last four characters of number.
func MaskCardNumber(number string) string {
	switch {
	case number == "":
		return ""
	case len(number) < 4:
		return "XXXX"
	}
	return "****" + number[len(number)-4:]
}

// Describe renders a one-line summary of the payment for logs and listings.
// Card numbers are always masked.
func (p *Payment) Describe() string {
	switch p.Method.(type) {
	case Cash:
		return fmt.Sprintf("cash payment of %.2f (%s)", p.Amount, p.Status)
	case Card:
		if masked := p.MaskedCardNumber(); masked != "" {
			return fmt.Sprintf("card payment of %.2f with card %s (%s)", p.Amount, masked, p.Status)
		}
		return fmt.Sprintf("card payment of %.2f (%s)", p.Amount, p.Status)
	}
	return fmt.Sprintf("payment of %.2f (%s)", p.Amount, p.Status)
}

type paymentJSON struct {
	ID            string        `json:"id"`
	ReservationID string        `json:"reservation_id"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	PaymentType   PaymentType   `json:"payment_type"`
	CardNumber    string        `json:"card_number,omitempty"`
}

// MarshalJSON renders the payment for API responses with the card number masked.
func (p *Payment) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentJSON{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Amount:        p.Amount,
		Status:        p.Status,
		PaymentType:   p.Type(),
		CardNumber:    p.MaskedCardNumber(),
	})
}

// Record returns the storage shape of the payment.  Only card payments
// carry the card_number field.
func (p *Payment) Record() Record {
	rec := Record{
		"id":             p.ID,
		"reservation_id": p.ReservationID,
		"amount":         p.Amount,
		"status":         string(p.Status),
		"payment_type":   string(p.Type()),
	}
	if c, ok := p.Method.(Card); ok {
		rec["card_number"] = c.Number
	}
	return rec
}

// PaymentFromRecord decodes a stored payment record, choosing the variant
// from its payment_type tag.
func PaymentFromRecord(rec Record) (*Payment, error) {
	var (
		p   Payment
		err error
	)
	if p.ID, err = rec.str("id"); err != nil {
		return nil, err
	}
	if p.ReservationID, err = rec.str("reservation_id"); err != nil {
		return nil, err
	}
	if p.Amount, err = rec.float("amount"); err != nil {
		return nil, err
	}
	status, err := rec.str("status")
	if err != nil {
		return nil, err
	}
	if p.Status, err = ParsePaymentStatus(status); err != nil {
		return nil, err
	}
	tag, err := rec.str("payment_type")
	if err != nil {
		return nil, err
	}
	switch PaymentType(tag) {
	case PaymentCash:
		p.Method = Cash{}
	case PaymentCard:
		p.Method = Card{Number: rec.optStr("card_number")}
	case PaymentGeneric:
		p.Method = Generic{}
	default:
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidRecord, tag)
	}
	return &p, nil
}
