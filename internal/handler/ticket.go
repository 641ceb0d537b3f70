package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
	"github.com/iliyamo/flight-seat-booking/internal/service"
	"github.com/iliyamo/flight-seat-booking/internal/utils"
)

// GetTicket handles GET /api/booking/:id/ticket. Only paid, active bookings
// have a ticket.
func (h *BookingHandler) GetTicket(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	if b.Status != model.BookingActive || b.PaymentStatus != model.PaymentPaid {
		return fail(c, http.StatusConflict, "booking is not paid")
	}
	f, err := h.Flights.GetByID(ctx, b.FlightID)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	t, err := h.issueTicket(b, f)
	if err != nil {
		requestLogger(c, h.Log).Error("issue ticket failed", "booking_id", id, "err", err)
		return fail(c, http.StatusInternalServerError, "could not issue ticket")
	}
	return respond(c, http.StatusOK, "Ticket issued", t)
}

// VerifyTicket handles POST /api/tickets/verify {token}.
func (h *BookingHandler) VerifyTicket(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fail(c, http.StatusBadRequest, "token is required")
	}
	claims, err := utils.ParseTicket(h.Tickets.Secret, token)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid or expired ticket")
	}
	return respond(c, http.StatusOK, "Ticket is valid", echo.Map{
		"booking_ref":   claims.BookingRef,
		"booking_id":    claims.BookingID,
		"flight_id":     claims.FlightID,
		"flight_number": claims.FlightNumber,
		"seats":         claims.Seats,
		"user_id":       claims.Subject,
		"expires_at":    claims.ExpiresAt.Time,
	})
}

// Itinerary handles GET /api/booking/:id/itinerary.pdf.
func (h *BookingHandler) Itinerary(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	f, err := h.Flights.GetByID(ctx, b.FlightID)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	// passengers deleted since booking are left out of the document
	passengers, err := h.Passengers.GetByIDs(ctx, b.PassengerInfo)
	if err != nil && !errors.Is(err, repository.ErrPassengerNotFound) {
		return storageError(c, h.Log, err)
	}

	doc, err := service.ItineraryPDF(b, f, passengers)
	if err != nil {
		requestLogger(c, h.Log).Error("render itinerary failed", "booking_id", id, "err", err)
		return fail(c, http.StatusInternalServerError, "could not render itinerary")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="itinerary-%s.pdf"`, b.Reference))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
