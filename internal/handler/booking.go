package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/fare"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/promo"
	q "github.com/iliyamo/flight-seat-booking/internal/queue"
	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 5 * time.Second

// TicketConfig holds the e-ticket signing settings.
type TicketConfig struct {
	Secret string
	TTL    time.Duration
}

// BookingHandler groups the booking, payment and ticket endpoints. Storage
// operations that move seat inventory run inside a single transaction in the
// repository; the handler validates input and prices the booking.
type BookingHandler struct {
	Bookings   BookingStore
	Flights    FlightStore
	Passengers PassengerStore
	Seats      *service.SeatSelectionService
	Promo      *promo.Engine
	Payments   Charger
	Events     EventPublisher // nil disables publishing
	Tickets    TicketConfig
	Log        *logger.Logger
}

// NewBookingHandler constructs a BookingHandler and panics if a required
// dependency is nil. events and log may be nil.
func NewBookingHandler(bookings BookingStore, flights FlightStore, passengers PassengerStore, seats *service.SeatSelectionService,
	promoEngine *promo.Engine, payments Charger, events EventPublisher, tickets TicketConfig, log *logger.Logger) *BookingHandler {
	if bookings == nil || flights == nil || passengers == nil || seats == nil || promoEngine == nil || payments == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BookingHandler{
		Bookings:   bookings,
		Flights:    flights,
		Passengers: passengers,
		Seats:      seats,
		Promo:      promoEngine,
		Payments:   payments,
		Events:     events,
		Tickets:    tickets,
		Log:        log,
	}
}

type createBookingRequest struct {
	UserID          string                `json:"user_id"`
	FlightID        uint64                `json:"flight_id"`
	BookingType     string                `json:"booking_type"`
	PassengerInfo   []uint64              `json:"passenger_info"`
	PaymentMethod   string                `json:"payment_method"`
	SeatNumbers     map[string]string     `json:"seat_numbers"`
	SeatSelectionID string                `json:"seat_selection_id"`
	SpecialRequests model.SpecialRequests `json:"special_requests"`
	BookingSource   string                `json:"booking_source"`
	PromocodeUsed   string                `json:"promocode_used"`
	TotalPrice      float64               `json:"total_price"` // ignored; the server prices the booking
}

// CreateBooking handles POST /api/booking. Seats are taken from
// seat_numbers or, when that is empty, from the seat-selection session named
// by seat_selection_id in pick order.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return fail(c, http.StatusBadRequest, "user_id is required")
	}
	if req.FlightID == 0 {
		return fail(c, http.StatusBadRequest, "flight_id is required")
	}
	n := len(req.PassengerInfo)
	if n == 0 {
		return fail(c, http.StatusBadRequest, "passenger_info must list at least one passenger")
	}
	if n > service.MaxPassengers {
		return fail(c, http.StatusBadRequest, "a booking can seat at most 9 passengers")
	}
	seen := make(map[uint64]struct{}, n)
	for _, id := range req.PassengerInfo {
		if id == 0 {
			return fail(c, http.StatusBadRequest, "passenger ids must be positive")
		}
		if _, dup := seen[id]; dup {
			return fail(c, http.StatusBadRequest, "passenger_info contains duplicates")
		}
		seen[id] = struct{}{}
	}

	ctx := c.Request().Context()
	flight, seatMap, err := h.Seats.SeatMap(ctx, req.FlightID)
	if err != nil {
		return storageError(c, h.Log, err)
	}

	passengers, err := h.Passengers.GetByIDs(ctx, req.PassengerInfo)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	for _, p := range passengers {
		if p.UserID != req.UserID {
			return fail(c, http.StatusForbidden, fmt.Sprintf("passenger %d does not belong to user", p.ID))
		}
	}

	seats := req.SeatNumbers
	if len(seats) == 0 && req.SeatSelectionID != "" {
		if seats, err = h.seatsFromSession(ctx, req.SeatSelectionID, req.FlightID, req.PassengerInfo); err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				return fail(c, http.StatusNotFound, "seat selection not found or expired")
			}
			return fail(c, http.StatusBadRequest, err.Error())
		}
	}
	seats, seatFees, serr := validateSeats(seats, seen, seatMap)
	if serr != nil {
		return fail(c, serr.status, serr.msg)
	}

	quote := fare.Quote(flight.Fare(), n, seatFees, 0)
	code := strings.ToUpper(strings.TrimSpace(req.PromocodeUsed))
	if code != "" {
		discount, err := h.Promo.Apply(code, promo.Input{
			TotalPrice:    quote.Subtotal(),
			Passengers:    n,
			Seats:         model.Booking{SeatNumbers: seats}.Seats(),
			CabinClass:    flight.CabinClass,
			BookingSource: req.BookingSource,
			Origin:        flight.Origin,
			Destination:   flight.Destination,
		})
		switch {
		case errors.Is(err, promo.ErrUnknownCode), errors.Is(err, promo.ErrNotEligible):
			return fail(c, http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			requestLogger(c, h.Log).Error("promo evaluation failed", "code", code, "err", err)
			return fail(c, http.StatusInternalServerError, "promo evaluation failed")
		}
		quote = fare.Quote(flight.Fare(), n, seatFees, discount)
	}

	b := &model.Booking{
		Reference:       uuid.NewString(),
		UserID:          req.UserID,
		FlightID:        flight.ID,
		BookingType:     orDefault(req.BookingType, "one-way"),
		PassengerInfo:   req.PassengerInfo,
		PaymentMethod:   orDefault(req.PaymentMethod, "card"),
		SeatNumbers:     seats,
		SpecialRequests: req.SpecialRequests,
		BookingSource:   orDefault(req.BookingSource, "web"),
		PromocodeUsed:   code,
		BaseFare:        quote.BaseFare,
		Surcharge:       quote.Surcharge,
		SeatFees:        quote.SeatFees,
		Discount:        quote.Discount,
		TotalPrice:      quote.Total,
	}
	if err := h.Bookings.Create(ctx, b); err != nil {
		return storageError(c, h.Log, err)
	}
	if req.SeatSelectionID != "" {
		if err := h.Seats.Discard(ctx, req.SeatSelectionID); err != nil {
			requestLogger(c, h.Log).Warn("discard seat selection failed",
				"session_id", req.SeatSelectionID, "booking_id", b.ID, "err", err)
		}
	}
	requestLogger(c, h.Log).Info("booking created",
		"booking_id", b.ID, "reference", b.Reference, "flight_id", b.FlightID, "total", b.TotalPrice)
	return respond(c, http.StatusCreated, "Booking created successfully", echo.Map{
		"booking": b,
		"fare":    quote,
	})
}

// seatsFromSession assigns a session's selected seats to passengers in
// order. The session must belong to flightID.
func (h *BookingHandler) seatsFromSession(ctx context.Context, sessionID string, flightID uint64, passengers []uint64) (map[string]string, error) {
	v, err := h.Seats.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if v.Session.FlightID != flightID {
		return nil, errors.New("seat selection belongs to another flight")
	}
	out := make(map[string]string, len(v.Selection.Seats))
	for i, label := range v.Selection.Seats {
		if i >= len(passengers) {
			break
		}
		out[strconv.FormatUint(passengers[i], 10)] = label
	}
	return out, nil
}

// seatError is a validation failure with the status to report.
type seatError struct {
	status int
	msg    string
}

// validateSeats normalises labels and checks them against the flight's seat
// map. It returns the cleaned assignment and the sum of the seat prices.
func validateSeats(in map[string]string, passengers map[uint64]struct{}, m *seatmap.Map) (map[string]string, float64, *seatError) {
	if len(in) > len(passengers) {
		return nil, 0, &seatError{http.StatusBadRequest, "more seats than passengers"}
	}
	out := make(map[string]string, len(in))
	used := make(map[string]struct{}, len(in))
	var fees float64
	for key, label := range in {
		pid, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, 0, &seatError{http.StatusBadRequest, "seat_numbers keys must be passenger ids"}
		}
		if _, ok := passengers[pid]; !ok {
			return nil, 0, &seatError{http.StatusBadRequest, fmt.Sprintf("passenger %d is not on this booking", pid)}
		}
		label = strings.ToUpper(strings.TrimSpace(label))
		seat := m.Seat(label)
		if seat == nil {
			return nil, 0, &seatError{http.StatusBadRequest, fmt.Sprintf("seat %q does not exist on this flight", label)}
		}
		if seat.IsUnavailable {
			return nil, 0, &seatError{http.StatusConflict, fmt.Sprintf("seat %s is already booked", label)}
		}
		if _, dup := used[label]; dup {
			return nil, 0, &seatError{http.StatusBadRequest, fmt.Sprintf("seat %s is assigned twice", label)}
		}
		used[label] = struct{}{}
		fees += float64(seat.Price)
		out[strconv.FormatUint(pid, 10)] = label
	}
	return out, fees, nil
}

func orDefault(v, d string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return d
}

// GetBooking handles GET /api/booking/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Booking retrieved successfully", b)
}

// ListUserBookings handles GET /api/bookings/user/:userId.
func (h *BookingHandler) ListUserBookings(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		return fail(c, http.StatusBadRequest, "user id is required")
	}
	list, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Bookings retrieved successfully", list)
}

// editableBooking is the document a merge patch is applied to.
type editableBooking struct {
	BookingType     string                `json:"booking_type"`
	PaymentMethod   string                `json:"payment_method"`
	SpecialRequests model.SpecialRequests `json:"special_requests"`
	BookingSource   string                `json:"booking_source"`
}

var editableFields = map[string]bool{
	"booking_type":     true,
	"payment_method":   true,
	"special_requests": true,
	"booking_source":   true,
}

// UpdateBooking handles PUT /api/booking/:id with an RFC 7386 merge patch.
// Only the fields of editableBooking may appear in the patch.
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	patch, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<10))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return fail(c, http.StatusBadRequest, "body must be a JSON object")
	}
	for k := range fields {
		if !editableFields[k] {
			return fail(c, http.StatusUnprocessableEntity, fmt.Sprintf("field %q cannot be changed", k))
		}
	}

	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	if b.Status != model.BookingActive {
		return fail(c, http.StatusConflict, "cancelled bookings cannot be changed")
	}

	current, err := json.Marshal(editableBooking{
		BookingType:     b.BookingType,
		PaymentMethod:   b.PaymentMethod,
		SpecialRequests: b.SpecialRequests,
		BookingSource:   b.BookingSource,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "encode booking")
	}
	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid merge patch")
	}
	var next editableBooking
	if err := json.Unmarshal(merged, &next); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "patched booking has invalid field types")
	}

	b.BookingType = orDefault(next.BookingType, b.BookingType)
	b.PaymentMethod = orDefault(next.PaymentMethod, b.PaymentMethod)
	b.BookingSource = orDefault(next.BookingSource, b.BookingSource)
	b.SpecialRequests = next.SpecialRequests
	if err := h.Bookings.Update(ctx, b); err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Booking updated successfully", b)
}

// DeleteBooking handles DELETE /api/booking/:id. The booking is kept as
// CANCELLED and its seats return to the flight.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.Cancel(ctx, id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	h.publishCancelled(ctx, requestLogger(c, h.Log), b)
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) publishCancelled(ctx context.Context, log *logger.Logger, b *model.Booking) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := h.Events.PublishBookingCancelled(ctx, q.BookingCancelledEvent{
		BookingID:   b.ID,
		BookingRef:  b.Reference,
		UserID:      b.UserID,
		FlightID:    b.FlightID,
		Seats:       b.Seats(),
		Refunded:    b.PaymentStatus == model.PaymentRefunded,
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Warn("publish booking.cancelled failed", "booking_id", b.ID, "err", err)
	}
}
