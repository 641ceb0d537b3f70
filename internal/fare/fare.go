// Package fare computes the price breakdown shown on the booking page.
package fare

import (
	"fmt"
	"math"
)

// SurchargeRate is the taxes-and-fees share applied to the base fare.
const SurchargeRate = 0.20

// Breakdown is the itemised price of a booking.
type Breakdown struct {
	BaseFare  float64 `json:"base_fare"`
	Surcharge float64 `json:"surcharge"`
	SeatFees  float64 `json:"seat_fees"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// FormatDuration renders minutes as "Xh Ym".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Surcharge returns the taxes-and-fees amount for price.
func Surcharge(price float64) float64 {
	return round2(price * SurchargeRate)
}

// Quote prices a booking: the per-passenger fare times passengers, the
// surcharge on that amount, seat fees, minus discount. The total is never
// negative.
func Quote(farePerPassenger float64, passengers int, seatFees, discount float64) Breakdown {
	if passengers < 0 {
		passengers = 0
	}
	base := round2(farePerPassenger * float64(passengers))
	b := Breakdown{
		BaseFare:  base,
		Surcharge: Surcharge(base),
		SeatFees:  round2(seatFees),
		Discount:  round2(discount),
	}
	b.Total = round2(math.Max(0, b.BaseFare+b.Surcharge+b.SeatFees-b.Discount))
	return b
}

// Subtotal is the amount before any discount.
func (b Breakdown) Subtotal() float64 {
	return round2(b.BaseFare + b.Surcharge + b.SeatFees)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
