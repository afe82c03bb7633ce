// Package queue defines message payloads exchanged over the message broker,
// the RabbitMQ publisher used by the booking coordinator and the consumer
// that turns those messages into an audit trail.
package queue

// Routing keys (queue names) for the events emitted by the coordinator.
const (
	ReservationCreated   = "reservation.created"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	ReservationDeleted   = "reservation.deleted"
	PaymentProcessed     = "payment.processed"
	PaymentDeleted       = "payment.deleted"
	RoomReconciled       = "room.reconciled"
)

// AuditQueue is the durable queue every event is routed to.  The audit
// consumer reads it and appends one line per event to the audit log.
const AuditQueue = "hotel.audit"

// Event is published after a state change has been committed.  It carries
// enough information for downstream consumers to log, notify or reconcile
// without querying the primary store.
type Event struct {
	Type          string  `json:"type"`
	ReservationID string  `json:"reservation_id,omitempty"`
	RoomID        string  `json:"room_id,omitempty"`
	GuestID       string  `json:"guest_id,omitempty"`
	PaymentID     string  `json:"payment_id,omitempty"`
	Status        string  `json:"status,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	CheckInDate   string  `json:"check_in_date,omitempty"`
	CheckOutDate  string  `json:"check_out_date,omitempty"`
	OccurredAt    string  `json:"occurred_at"`
}
