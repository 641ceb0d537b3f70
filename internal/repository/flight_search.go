package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// FlightSearchQuery defines filters and pagination for searching flights.
// Origin, Destination and DepartDate are required; the handler validates
// them before calling Search.
type FlightSearchQuery struct {
	Origin      string
	Destination string
	DepartDate  time.Time
	Adults      int
	Cabin       string
	Page        int
	PageSize    int
}

// Search returns one page of flights departing on DepartDate with at least
// Adults seats left, cheapest first, plus the total match count.
func (r *FlightRepo) Search(ctx context.Context, q FlightSearchQuery) ([]model.Flight, int64, error) {
	day := time.Date(q.DepartDate.Year(), q.DepartDate.Month(), q.DepartDate.Day(), 0, 0, 0, 0, time.UTC)

	where := []string{
		"f.origin = ?",
		"f.destination = ?",
		"f.departure_time >= ?",
		"f.departure_time < ?",
		"f.seats_available >= ?",
	}
	args := []any{q.Origin, q.Destination, day, day.AddDate(0, 0, 1), q.Adults}
	if q.Cabin != "" {
		where = append(where, "f.cabin_class = ?")
		args = append(args, q.Cabin)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights f WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := `SELECT ` + flightColumns + `
		FROM flights f
		WHERE ` + cond + `
		ORDER BY COALESCE(f.dynamic_price, f.price) ASC, f.departure_time ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Flight, 0, limit)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
