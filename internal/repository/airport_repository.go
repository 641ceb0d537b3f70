package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/flight-seat-booking/internal/geo"
)

// AirportRepo reads the `airports` reference table.
type AirportRepo struct {
	db *sql.DB
}

// NewAirportRepo returns a new AirportRepo bound to the given database.
func NewAirportRepo(db *sql.DB) *AirportRepo { return &AirportRepo{db: db} }

const airportColumns = `code, name, city, country, latitude, longitude`

// List returns every airport ordered by city.
func (r *AirportRepo) List(ctx context.Context) ([]geo.Airport, error) {
	return r.query(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY city, code`)
}

// Search matches q against code, city and name, case-insensitively. Exact
// code matches sort first.
func (r *AirportRepo) Search(ctx context.Context, q string, limit int) ([]geo.Airport, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	like := "%" + strings.ToLower(q) + "%"
	return r.query(ctx, `SELECT `+airportColumns+`
		FROM airports
		WHERE LOWER(code) LIKE ? OR LOWER(city) LIKE ? OR LOWER(name) LIKE ?
		ORDER BY (UPPER(code) = ?) DESC, city, code
		LIMIT ?`,
		like, like, like, strings.ToUpper(q), limit)
}

func (r *AirportRepo) query(ctx context.Context, q string, args ...any) ([]geo.Airport, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []geo.Airport{}
	for rows.Next() {
		var a geo.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.Country, &a.Latitude, &a.Longitude); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
