package model

import (
	"slices"
	"time"
)

// Booking statuses.
const (
	BookingActive    = "ACTIVE"
	BookingCancelled = "CANCELLED"

	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

// SpecialRequests are the optional service requests attached to a booking.
type SpecialRequests struct {
	Meal       string `json:"meal"`
	Wheelchair bool   `json:"wheelchair"`
}

// Booking records a user's purchase of seats on a flight. Passengers are
// referenced by id; SeatNumbers maps a passenger id (as string) to a seat
// label. The seat labels are mirrored into `booking_seats`, whose unique key
// on (flight_id, seat_label) prevents double booking.
//
// Fields:
//
//	ID            – primary key.
//	Reference     – public booking reference (uuid), exposed as booking_id.
//	Status        – ACTIVE or CANCELLED.
//	PaymentStatus – PENDING, PAID or REFUNDED.
//	BaseFare..    – price breakdown persisted at creation.
//	CardHash      – bcrypt fingerprint of the paying card, never serialised.
type Booking struct {
	ID              uint64            `json:"id"`               // bookings.id
	Reference       string            `json:"booking_id"`       // bookings.reference
	UserID          string            `json:"user_id"`          // bookings.user_id
	FlightID        uint64            `json:"flight_id"`        // bookings.flight_id
	BookingType     string            `json:"booking_type"`     // bookings.booking_type
	PassengerInfo   []uint64          `json:"passenger_info"`   // bookings.passenger_info (JSON)
	PaymentMethod   string            `json:"payment_method"`   // bookings.payment_method
	SeatNumbers     map[string]string `json:"seat_numbers"`     // bookings.seat_numbers (JSON)
	SpecialRequests SpecialRequests   `json:"special_requests"` // bookings.special_requests (JSON)
	BookingSource   string            `json:"booking_source"`   // bookings.booking_source
	PromocodeUsed   string            `json:"promocode_used"`   // bookings.promocode_used
	BaseFare        float64           `json:"base_fare"`        // bookings.base_fare
	Surcharge       float64           `json:"surcharge"`        // bookings.surcharge
	SeatFees        float64           `json:"seat_fees"`        // bookings.seat_fees
	Discount        float64           `json:"discount"`         // bookings.discount
	TotalPrice      float64           `json:"total_price"`      // bookings.total_price
	Status          string            `json:"status"`           // bookings.status
	PaymentStatus   string            `json:"payment_status"`   // bookings.payment_status
	PaymentDate     *time.Time        `json:"payment_date"`     // bookings.payment_date (nullable)
	PaymentRef      *string           `json:"payment_ref"`      // bookings.payment_ref (nullable)
	CardLast4       *string           `json:"card_last4"`       // bookings.card_last4 (nullable)
	CardHash        *string           `json:"-"`                // bookings.card_hash (nullable)
	CreatedAt       time.Time         `json:"created_at"`       // bookings.created_at
	UpdatedAt       time.Time         `json:"updated_at"`       // bookings.updated_at
}

// Seats returns the booked seat labels, sorted.
func (b Booking) Seats() []string {
	out := make([]string, 0, len(b.SeatNumbers))
	for _, l := range b.SeatNumbers {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
