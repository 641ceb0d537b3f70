// Package queue defines booking event payloads exchanged over RabbitMQ and the
// consumer that records them.
package queue

// Queue names. Each event type has its own durable queue on the default
// exchange.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a booking is paid. It contains
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	BookingRef    string   `json:"booking_ref"`
	UserID        string   `json:"user_id"`
	FlightID      uint64   `json:"flight_id"`
	FlightNumber  string   `json:"flight_number"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureTime string   `json:"departure_time"`
	Seats         []string `json:"seats"`
	TotalPrice    float64  `json:"total_price"`
	PaymentRef    string   `json:"payment_ref"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// seats return to the flight.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	BookingRef  string   `json:"booking_ref"`
	UserID      string   `json:"user_id"`
	FlightID    uint64   `json:"flight_id"`
	Seats       []string `json:"seats"`
	Refunded    bool     `json:"refunded"`
	CancelledAt string   `json:"cancelled_at"`
}
