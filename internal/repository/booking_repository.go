package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their seats. Every
// operation that touches seat inventory runs in a single transaction so the
// flight's seats_available, the booking row and booking_seats never drift.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// PaymentRecord carries the fields written when a booking is paid.
type PaymentRecord struct {
	Method   string
	Ref      string
	Last4    string
	CardHash string
	PaidAt   time.Time
}

const bookingColumns = `id, reference, user_id, flight_id, booking_type, passenger_info, payment_method,
	seat_numbers, special_requests, booking_source, promocode_used, base_fare, surcharge, seat_fees,
	discount, total_price, status, payment_status, payment_date, payment_ref, card_last4, card_hash,
	created_at, updated_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b                           model.Booking
		passengers, seats, requests []byte
		paymentDate                 sql.NullTime
		paymentRef, last4, cardHash sql.NullString
	)
	if err := s.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.FlightID, &b.BookingType, &passengers, &b.PaymentMethod,
		&seats, &requests, &b.BookingSource, &b.PromocodeUsed, &b.BaseFare, &b.Surcharge, &b.SeatFees,
		&b.Discount, &b.TotalPrice, &b.Status, &b.PaymentStatus, &paymentDate, &paymentRef, &last4, &cardHash,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(passengers, &b.PassengerInfo); err != nil {
		return nil, fmt.Errorf("passenger_info: %w", err)
	}
	if err := unmarshalColumn(seats, &b.SeatNumbers); err != nil {
		return nil, fmt.Errorf("seat_numbers: %w", err)
	}
	if err := unmarshalColumn(requests, &b.SpecialRequests); err != nil {
		return nil, fmt.Errorf("special_requests: %w", err)
	}
	if b.PassengerInfo == nil {
		b.PassengerInfo = []uint64{}
	}
	if b.SeatNumbers == nil {
		b.SeatNumbers = map[string]string{}
	}
	if paymentDate.Valid {
		t := paymentDate.Time
		b.PaymentDate = &t
	}
	if paymentRef.Valid {
		b.PaymentRef = &paymentRef.String
	}
	if last4.Valid {
		b.CardLast4 = &last4.String
	}
	if cardHash.Valid {
		b.CardHash = &cardHash.String
	}
	return &b, nil
}

func unmarshalColumn(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// Create reserves the booking's seats, takes len(PassengerInfo) seats from
// the flight's inventory and inserts the booking. It returns ErrFlightNotFound,
// ErrSoldOut or ErrSeatTaken when the booking cannot be placed. On success b
// is refreshed from the stored row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	passengers, err := json.Marshal(b.PassengerInfo)
	if err != nil {
		return err
	}
	seats, err := json.Marshal(b.SeatNumbers)
	if err != nil {
		return err
	}
	requests, err := json.Marshal(b.SpecialRequests)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var available int
	err = tx.QueryRowContext(ctx, `SELECT seats_available FROM flights WHERE id = ? FOR UPDATE`, b.FlightID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFlightNotFound
	}
	if err != nil {
		return err
	}
	if available < len(b.PassengerInfo) {
		return ErrSoldOut
	}

	const ins = `INSERT INTO bookings (reference, user_id, flight_id, booking_type, passenger_info, payment_method,
		seat_numbers, special_requests, booking_source, promocode_used, base_fare, surcharge, seat_fees,
		discount, total_price, status, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		b.Reference, b.UserID, b.FlightID, b.BookingType, passengers, b.PaymentMethod,
		seats, requests, b.BookingSource, b.PromocodeUsed, b.BaseFare, b.Surcharge, b.SeatFees,
		b.Discount, b.TotalPrice, model.BookingActive, model.PaymentPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err := insertSeatsTx(ctx, tx, uint64(id), b.FlightID, b.Seats()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE flights SET seats_available = seats_available - ? WHERE id = ?`,
		len(b.PassengerInfo), b.FlightID); err != nil {
		return err
	}

	stored, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*b = *stored
	return nil
}

// insertSeatsTx writes booking_seats rows in one statement. A duplicate
// (flight_id, seat_label) surfaces as ErrSeatTaken.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, flightID uint64, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, flight_id, seat_label) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?, ?, ?),", len(labels)), ",")
	args := make([]any, 0, len(labels)*3)
	for _, l := range labels {
		args = append(args, bookingID, flightID, l)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// GetByID loads a booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Update persists the mutable fields of an active booking: booking type,
// payment method, special requests and booking source.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	requests, err := json.Marshal(b.SpecialRequests)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET booking_type = ?, payment_method = ?, special_requests = ?, booking_source = ?
		WHERE id = ? AND status = ?`,
		b.BookingType, b.PaymentMethod, requests, b.BookingSource, b.ID, model.BookingActive)
	if err != nil {
		return err
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// Cancel releases the booking's seats, returns them to the flight's
// inventory and marks the booking CANCELLED. Paid bookings become REFUNDED.
// Cancelling twice yields ErrConflict.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return nil, ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE flights SET seats_available = LEAST(total_seats, seats_available + ?) WHERE id = ?`,
		len(b.PassengerInfo), b.FlightID); err != nil {
		return nil, err
	}
	paymentStatus := b.PaymentStatus
	if paymentStatus == model.PaymentPaid {
		paymentStatus = model.PaymentRefunded
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, payment_status = ? WHERE id = ?`,
		model.BookingCancelled, paymentStatus, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	b.Status = model.BookingCancelled
	b.PaymentStatus = paymentStatus
	return b, nil
}

// MarkPaid records a successful payment on a pending, active booking. Any
// other state yields ErrConflict.
func (r *BookingRepo) MarkPaid(ctx context.Context, id uint64, p PaymentRecord) (*model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		SET payment_status = ?, payment_date = ?, payment_ref = ?, card_last4 = ?, card_hash = ?,
			payment_method = COALESCE(NULLIF(?, ''), payment_method)
		WHERE id = ? AND status = ? AND payment_status = ?`,
		model.PaymentPaid, p.PaidAt, p.Ref, p.Last4, p.CardHash, p.Method,
		id, model.BookingActive, model.PaymentPending)
	if err != nil {
		return nil, err
	}
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, ErrConflict) {
			if _, gerr := r.GetByID(ctx, id); errors.Is(gerr, ErrBookingNotFound) {
				return nil, ErrBookingNotFound
			}
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
