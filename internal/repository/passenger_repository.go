package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// PassengerRepo provides access to the passengers saved under a user.
type PassengerRepo struct {
	db *sql.DB
}

// NewPassengerRepo returns a new PassengerRepo bound to the given database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

const passengerColumns = `id, user_id, name, dob, type, email, country_code, phone_number, created_at`

func scanPassenger(s rowScanner) (model.Passenger, error) {
	var p model.Passenger
	var dob time.Time
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &dob, &p.Type, &p.Email, &p.CountryCode, &p.PhoneNumber, &p.CreatedAt)
	p.DOB = dob.Format(time.DateOnly)
	return p, err
}

// Create inserts p and fills in its id and created_at.
func (r *PassengerRepo) Create(ctx context.Context, p *model.Passenger) error {
	dob, err := time.Parse(time.DateOnly, p.DOB)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO passengers (user_id, name, dob, type, email, country_code, phone_number) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, dob, p.Type, p.Email, p.CountryCode, p.PhoneNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanPassenger(r.db.QueryRowContext(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*p = got
	return nil
}

// ListByUser returns the passengers saved by userID, oldest first.
func (r *PassengerRepo) ListByUser(ctx context.Context, userID string) ([]model.Passenger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+passengerColumns+` FROM passengers WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return collectPassengers(rows)
}

// GetByIDs returns the passengers with the given ids. It fails with
// ErrPassengerNotFound if any id is missing.
func (r *PassengerRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Passenger, error) {
	if len(ids) == 0 {
		return []model.Passenger{}, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+passengerColumns+` FROM passengers WHERE id IN (`+ph+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	out, err := collectPassengers(rows)
	if err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, ErrPassengerNotFound
	}
	return out, nil
}

func collectPassengers(rows *sql.Rows) ([]model.Passenger, error) {
	defer rows.Close()
	out := []model.Passenger{}
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
