package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/flight-seat-booking/internal/fare"
	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// FlightRepo provides read access to flights and their booked seats. Seat
// inventory changes happen inside BookingRepo transactions.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a new FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

const flightColumns = `f.id, f.flight_number, f.airline, f.origin, f.destination,
	f.departure_time, f.arrival_time, f.duration_minutes, f.price, f.seats_available,
	f.cabin_class, f.total_seats, f.dynamic_price, f.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(s rowScanner) (*model.Flight, error) {
	var f model.Flight
	var dynamic sql.NullFloat64
	if err := s.Scan(
		&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.Duration, &f.Price, &f.SeatsAvailable,
		&f.CabinClass, &f.TotalSeats, &dynamic, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.DynamicPrice = f.Price
	if dynamic.Valid && dynamic.Float64 > 0 {
		f.DynamicPrice = dynamic.Float64
	}
	f.DurationLabel = fare.FormatDuration(f.Duration)
	return &f, nil
}

// GetByID loads a single flight.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.id = ?`, id)
	f, err := scanFlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFlightNotFound
	}
	return f, err
}

// BookedSeats returns the seat labels held by active bookings on a flight.
func (r *FlightRepo) BookedSeats(ctx context.Context, flightID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE flight_id = ? ORDER BY seat_label`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// PricesByDate returns the cheapest fare per day on a route for days
// consecutive days starting at start. Days without flights are omitted.
func (r *FlightRepo) PricesByDate(ctx context.Context, from, to string, start time.Time, days int) ([]model.DatePrice, error) {
	if days < 1 {
		days = 1
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	const q = `SELECT DATE_FORMAT(departure_time, '%Y-%m-%d') AS d,
			MIN(COALESCE(dynamic_price, price)) AS p
		FROM flights
		WHERE origin = ? AND destination = ?
		  AND departure_time >= ? AND departure_time < ?
		  AND seats_available > 0
		GROUP BY d
		ORDER BY d`
	rows, err := r.db.QueryContext(ctx, q, from, to, day, day.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DatePrice, 0, days)
	for rows.Next() {
		var dp model.DatePrice
		if err := rows.Scan(&dp.Date, &dp.Price); err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, rows.Err()
}
