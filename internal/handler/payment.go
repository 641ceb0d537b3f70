package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/payment"
	q "github.com/iliyamo/flight-seat-booking/internal/queue"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
	"github.com/iliyamo/flight-seat-booking/internal/utils"
)

// PayBooking handles POST /api/booking/:id/payment. The card is charged for
// the stored total, the booking is marked PAID and an e-ticket is issued.
func (h *BookingHandler) PayBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	var card payment.Card
	if err := c.Bind(&card); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	log := requestLogger(c, h.Log)
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	switch {
	case b.Status != model.BookingActive:
		return fail(c, http.StatusConflict, "booking is cancelled")
	case b.PaymentStatus != model.PaymentPending:
		return fail(c, http.StatusConflict, "booking is already paid")
	}

	receipt, err := h.Payments.Charge(ctx, card, b.TotalPrice)
	if err != nil {
		var ve *payment.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ve.Error(), "field": ve.Field})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return fail(c, http.StatusServiceUnavailable, "payment was interrupted")
		}
		log.Error("payment failed", "booking_id", id, "err", err)
		return fail(c, http.StatusBadGateway, "payment failed")
	}

	paid, err := h.Bookings.MarkPaid(ctx, id, repository.PaymentRecord{
		Method:   "card",
		Ref:      receipt.Reference,
		Last4:    receipt.Last4,
		CardHash: receipt.CardHash,
		PaidAt:   receipt.ProcessedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "booking is already paid")
		}
		return storageError(c, h.Log, err)
	}

	flight, err := h.Flights.GetByID(ctx, paid.FlightID)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	ticket, err := h.issueTicket(paid, flight)
	if err != nil {
		log.Error("issue ticket failed", "booking_id", id, "err", err)
		return fail(c, http.StatusInternalServerError, "could not issue ticket")
	}
	h.publishConfirmed(ctx, log, paid, flight)

	log.Info("booking paid", "booking_id", paid.ID, "payment_ref", receipt.Reference, "amount", receipt.Amount)
	return respond(c, http.StatusOK, "Payment successful", echo.Map{
		"booking": paid,
		"receipt": receipt,
		"ticket":  ticket,
	})
}

func (h *BookingHandler) issueTicket(b *model.Booking, f *model.Flight) (utils.Ticket, error) {
	return utils.NewTicket(h.Tickets.Secret, b.UserID, utils.TicketClaims{
		BookingRef:   b.Reference,
		BookingID:    b.ID,
		FlightID:     f.ID,
		FlightNumber: f.FlightNumber,
		Seats:        b.Seats(),
	}, h.Tickets.TTL)
}

func (h *BookingHandler) publishConfirmed(ctx context.Context, log *logger.Logger, b *model.Booking, f *model.Flight) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ref := ""
	if b.PaymentRef != nil {
		ref = *b.PaymentRef
	}
	err := h.Events.PublishBookingConfirmed(ctx, q.BookingConfirmedEvent{
		BookingID:     b.ID,
		BookingRef:    b.Reference,
		UserID:        b.UserID,
		FlightID:      f.ID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime.UTC().Format(time.RFC3339),
		Seats:         b.Seats(),
		TotalPrice:    b.TotalPrice,
		PaymentRef:    ref,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Warn("publish booking.confirmed failed", "booking_id", b.ID, "err", err)
	}
}
