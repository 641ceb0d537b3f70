package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

// SeatSelectionHandler exposes seat-selection sessions over HTTP. A session
// keeps a party's picks between requests until a booking is made.
type SeatSelectionHandler struct {
	Svc *service.SeatSelectionService
	Log *logger.Logger
}

// NewSeatSelectionHandler wires a SeatSelectionHandler. log may be nil.
func NewSeatSelectionHandler(svc *service.SeatSelectionService, log *logger.Logger) *SeatSelectionHandler {
	if svc == nil {
		panic("nil service passed to NewSeatSelectionHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SeatSelectionHandler{Svc: svc, Log: log}
}

type startSelectionRequest struct {
	FlightID       uint64 `json:"flight_id"`
	PassengerCount int    `json:"passenger_count"`
}

type toggleRequest struct {
	Label string `json:"label"`
}

type passengersRequest struct {
	PassengerCount int `json:"passenger_count"`
}

// Start handles POST /api/seat-selection.
func (h *SeatSelectionHandler) Start(c echo.Context) error {
	var req startSelectionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.FlightID == 0 {
		return fail(c, http.StatusBadRequest, "flight_id is required")
	}
	v, err := h.Svc.Start(c.Request().Context(), req.FlightID, req.PassengerCount)
	if err != nil {
		return h.sessionError(c, err)
	}
	return respond(c, http.StatusCreated, "Seat selection started", v)
}

// Get handles GET /api/seat-selection/:id.
func (h *SeatSelectionHandler) Get(c echo.Context) error {
	v, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	return respond(c, http.StatusOK, "Seat selection retrieved", v)
}

// Toggle handles POST /api/seat-selection/:id/toggle. Unknown and booked
// labels leave the selection unchanged and report changed=false.
func (h *SeatSelectionHandler) Toggle(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	label := strings.ToUpper(strings.TrimSpace(req.Label))
	if label == "" {
		return fail(c, http.StatusBadRequest, "label is required")
	}
	v, err := h.Svc.Toggle(c.Request().Context(), c.Param("id"), label)
	if err != nil {
		return h.sessionError(c, err)
	}
	msg := "Seat selection updated"
	if !v.Changed {
		msg = "Seat selection unchanged"
	}
	return respond(c, http.StatusOK, msg, v)
}

// SetPassengers handles PUT /api/seat-selection/:id/passengers.
func (h *SeatSelectionHandler) SetPassengers(c echo.Context) error {
	var req passengersRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	v, err := h.Svc.SetPassengers(c.Request().Context(), c.Param("id"), req.PassengerCount)
	if err != nil {
		return h.sessionError(c, err)
	}
	return respond(c, http.StatusOK, "Passenger count updated", v)
}

// Discard handles DELETE /api/seat-selection/:id.
func (h *SeatSelectionHandler) Discard(c echo.Context) error {
	if err := h.Svc.Discard(c.Request().Context(), c.Param("id")); err != nil {
		return h.sessionError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SeatSelectionHandler) sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fail(c, http.StatusNotFound, "seat selection not found or expired")
	case errors.Is(err, service.ErrInvalidPassengerCount):
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return storageError(c, h.Log, err)
}
