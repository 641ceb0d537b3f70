package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/iliyamo/flight-seat-booking/internal/geo"
)

//go:embed schema.sql
var schema string

// Statements splits the embedded schema into individual statements. The
// driver runs one statement per Exec unless multiStatements is enabled.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schema, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate creates missing tables and seeds the airports table with the
// popular destinations. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	const seed = `INSERT IGNORE INTO airports (code, name, city, country, latitude, longitude) VALUES (?, ?, ?, ?, ?, ?)`
	for _, a := range geo.PopularDestinations {
		if _, err := db.ExecContext(ctx, seed, a.Code, a.Name, a.City, a.Country, a.Latitude, a.Longitude); err != nil {
			return fmt.Errorf("seed airport %s: %w", a.Code, err)
		}
	}
	return nil
}
