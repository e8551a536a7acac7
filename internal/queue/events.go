// Package queue publishes booking lifecycle events to the message
// broker for downstream consumers (analytics, audit, mail pipelines).
package queue

// Routing keys for booking lifecycle events.
const (
	RoutingKeyBookingConfirmed = "booking.confirmed"
	RoutingKeyBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is confirmed or cancelled.
// It carries enough for consumers to act without querying the primary
// database.
type BookingEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	EventID     string `json:"event_id"`
	EventTitle  string `json:"event_title,omitempty"`
	Seats       int    `json:"seats"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurred_at"`
}
