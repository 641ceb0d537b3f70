package handler // package handler holds the echo handlers of the booking API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/geo"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/payment"
	q "github.com/iliyamo/flight-seat-booking/internal/queue"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
)

// FlightStore is the flight storage the handlers use. *repository.FlightRepo
// satisfies it.
type FlightStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Flight, error)
	BookedSeats(ctx context.Context, flightID uint64) ([]string, error)
	Search(ctx context.Context, query repository.FlightSearchQuery) ([]model.Flight, int64, error)
	PricesByDate(ctx context.Context, from, to string, start time.Time, days int) ([]model.DatePrice, error)
}

// AirportStore is satisfied by *repository.AirportRepo.
type AirportStore interface {
	List(ctx context.Context) ([]geo.Airport, error)
	Search(ctx context.Context, query string, limit int) ([]geo.Airport, error)
}

// BookingStore is satisfied by *repository.BookingRepo.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	Update(ctx context.Context, b *model.Booking) error
	Cancel(ctx context.Context, id uint64) (*model.Booking, error)
	MarkPaid(ctx context.Context, id uint64, p repository.PaymentRecord) (*model.Booking, error)
}

// PassengerStore is satisfied by *repository.PassengerRepo.
type PassengerStore interface {
	Create(ctx context.Context, p *model.Passenger) error
	ListByUser(ctx context.Context, userID string) ([]model.Passenger, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Passenger, error)
}

// EventPublisher is satisfied by *service.Publisher.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, event q.BookingCancelledEvent) error
}

// Charger is satisfied by *payment.Processor.
type Charger interface {
	Charge(ctx context.Context, card payment.Card, amount float64) (payment.Receipt, error)
}

// respond writes the success envelope.
func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// fail writes {"error": msg}.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// storageError maps repository sentinels to HTTP statuses. Anything else is
// logged and reported as a 500.
func storageError(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrFlightNotFound):
		return fail(c, http.StatusNotFound, "flight not found")
	case errors.Is(err, repository.ErrBookingNotFound):
		return fail(c, http.StatusNotFound, "booking not found")
	case errors.Is(err, repository.ErrPassengerNotFound):
		return fail(c, http.StatusNotFound, "passenger not found")
	case errors.Is(err, repository.ErrSeatTaken):
		return fail(c, http.StatusConflict, "one or more seats are already booked")
	case errors.Is(err, repository.ErrSoldOut):
		return fail(c, http.StatusConflict, "not enough seats available")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "booking cannot be changed in its current state")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusServiceUnavailable, "request cancelled")
	}
	requestLogger(c, log).Error("storage error", "path", c.Path(), "err", err)
	return fail(c, http.StatusInternalServerError, "database error")
}

// requestLogger returns the request-scoped logger, or fallback.
func requestLogger(c echo.Context, fallback *logger.Logger) *logger.Logger {
	return logger.FromContext(c.Request().Context(), fallback)
}
