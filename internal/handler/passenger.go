package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
)

// PassengerHandler manages the travellers saved under a user.
type PassengerHandler struct {
	Passengers PassengerStore
	Log        *logger.Logger
	now        func() time.Time
}

// NewPassengerHandler wires a PassengerHandler. log may be nil.
func NewPassengerHandler(passengers PassengerStore, log *logger.Logger) *PassengerHandler {
	if passengers == nil {
		panic("nil repository passed to NewPassengerHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PassengerHandler{Passengers: passengers, Log: log, now: time.Now}
}

// ListPassengers handles GET /api/passenger/user/:userId.
func (h *PassengerHandler) ListPassengers(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		return fail(c, http.StatusBadRequest, "user id is required")
	}
	list, err := h.Passengers.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Passengers retrieved successfully", list)
}

// CreatePassenger handles POST /api/passenger. An empty type is derived
// from the date of birth.
func (h *PassengerHandler) CreatePassenger(c echo.Context) error {
	var p model.Passenger
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	p.ID = 0
	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))

	if p.UserID == "" {
		return fail(c, http.StatusBadRequest, "user_id is required")
	}
	if p.Name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	dob, err := time.Parse(time.DateOnly, strings.TrimSpace(p.DOB))
	if err != nil {
		return fail(c, http.StatusBadRequest, "dob must be YYYY-MM-DD")
	}
	now := h.now().UTC()
	if dob.After(now) {
		return fail(c, http.StatusBadRequest, "dob must not be in the future")
	}
	p.DOB = dob.Format(time.DateOnly)
	switch p.Type {
	case "":
		p.Type = passengerType(dob, now)
	case model.PassengerAdult, model.PassengerChild, model.PassengerInfant:
	default:
		return fail(c, http.StatusBadRequest, "type must be adult, child or infant")
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fail(c, http.StatusBadRequest, "email_id is invalid")
	}

	if err := h.Passengers.Create(c.Request().Context(), &p); err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusCreated, "Passenger created successfully", p)
}

// passengerType classifies by age on now: under 2 infant, under 12 child.
func passengerType(dob, now time.Time) string {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	switch {
	case age < 2:
		return model.PassengerInfant
	case age < 12:
		return model.PassengerChild
	default:
		return model.PassengerAdult
	}
}
