package model

import "time"

// Cabin classes accepted by flight search.
const (
	CabinEconomy  = "economy"
	CabinPremium  = "premium"
	CabinBusiness = "business"
	CabinFirst    = "first"
)

// Flight is a scheduled flight as stored in the `flights` table.
//
// Fields:
//
//	ID             – primary key, exposed as flight_id.
//	FlightNumber   – carrier flight number (e.g. AI-202).
//	Origin         – IATA code of the departure airport.
//	Destination    – IATA code of the arrival airport.
//	Duration       – block time in minutes.
//	SeatsAvailable – seats not yet booked; decremented per passenger.
//	TotalSeats     – cabin size, drives the seat map.
//	DynamicPrice   – demand-adjusted fare; falls back to Price.
type Flight struct {
	ID             uint64    `json:"flight_id"`       // flights.id
	FlightNumber   string    `json:"flight_number"`   // flights.flight_number
	Airline        string    `json:"airline"`         // flights.airline
	Origin         string    `json:"origin"`          // flights.origin
	Destination    string    `json:"destination"`     // flights.destination
	DepartureTime  time.Time `json:"departure_time"`  // flights.departure_time
	ArrivalTime    time.Time `json:"arrival_time"`    // flights.arrival_time
	Duration       int       `json:"duration"`        // flights.duration_minutes
	DurationLabel  string    `json:"duration_label"`  // derived, "Xh Ym"
	Price          float64   `json:"price"`           // flights.price
	SeatsAvailable int       `json:"seats_available"` // flights.seats_available
	CabinClass     string    `json:"cabin_class"`     // flights.cabin_class
	TotalSeats     int       `json:"total_seats"`     // flights.total_seats
	DynamicPrice   float64   `json:"dynamic_price"`   // flights.dynamic_price (nullable)
	CreatedAt      time.Time `json:"-"`               // flights.created_at
}

// Fare returns the per-passenger fare charged at booking time.
func (f Flight) Fare() float64 {
	if f.DynamicPrice > 0 {
		return f.DynamicPrice
	}
	return f.Price
}

// DatePrice is the cheapest fare on a given day for a route.
type DatePrice struct {
	Date  string  `json:"date"`  // YYYY-MM-DD
	Price float64 `json:"price"` // MIN(price)
}
