// Package repository holds the MySQL data access layer. Sentinel errors
// below let handlers map storage outcomes to HTTP statuses without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrFlightNotFound is returned when a flight id does not exist.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrBookingNotFound is returned when a booking id does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrPassengerNotFound is returned when a passenger id does not exist.
	ErrPassengerNotFound = errors.New("passenger not found")
	// ErrSeatTaken is returned when a seat is already booked on the flight.
	// Handlers should translate this into an HTTP 409 response.
	ErrSeatTaken = errors.New("seat already booked")
	// ErrSoldOut is returned when the flight has fewer seats left than
	// passengers on the booking.
	ErrSoldOut = errors.New("not enough seats available")
	// ErrConflict is returned when an update cannot be applied because of the
	// booking's current state, such as paying a cancelled booking.
	ErrConflict = errors.New("conflict")
	// ErrForbidden is returned when the caller attempts an operation on a
	// resource owned by another user.
	ErrForbidden = errors.New("forbidden")
)

const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
