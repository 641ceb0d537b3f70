package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/geo"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

const (
	defaultPageSize   = 100
	maxPageSize       = 100
	priceCalendarDays = 7
	airportSearchMax  = 20
)

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

var cabinClasses = map[string]bool{
	model.CabinEconomy:  true,
	model.CabinPremium:  true,
	model.CabinBusiness: true,
	model.CabinFirst:    true,
}

// FlightHandler serves the public flight endpoints: search, details,
// airports, price calendar and seat maps.
type FlightHandler struct {
	Flights  FlightStore
	Airports AirportStore
	Seats    *service.SeatSelectionService
	Log      *logger.Logger
}

// NewFlightHandler wires a FlightHandler. log may be nil.
func NewFlightHandler(flights FlightStore, airports AirportStore, seats *service.SeatSelectionService, log *logger.Logger) *FlightHandler {
	if flights == nil || airports == nil || seats == nil {
		panic("nil dependency passed to NewFlightHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FlightHandler{Flights: flights, Airports: airports, Seats: seats, Log: log}
}

// SearchFlights handles GET /api/flight/search-flights.
func (h *FlightHandler) SearchFlights(c echo.Context) error {
	origin := strings.ToUpper(strings.TrimSpace(c.QueryParam("origin")))
	destination := strings.ToUpper(strings.TrimSpace(c.QueryParam("destination")))
	if !iataCode.MatchString(origin) || !iataCode.MatchString(destination) {
		return fail(c, http.StatusBadRequest, "origin and destination must be 3-letter IATA codes")
	}
	if origin == destination {
		return fail(c, http.StatusBadRequest, "origin and destination must differ")
	}
	depart, err := time.Parse(time.DateOnly, c.QueryParam("depart_date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "depart_date must be YYYY-MM-DD")
	}
	if rd := c.QueryParam("return_date"); rd != "" {
		ret, err := time.Parse(time.DateOnly, rd)
		if err != nil {
			return fail(c, http.StatusBadRequest, "return_date must be YYYY-MM-DD")
		}
		if ret.Before(depart) {
			return fail(c, http.StatusBadRequest, "return_date must not be before depart_date")
		}
	}

	adults := 1
	if v := c.QueryParam("adults"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > service.MaxPassengers {
			return fail(c, http.StatusBadRequest, "adults must be between 1 and 9")
		}
		adults = n
	}
	cabin := strings.ToLower(strings.TrimSpace(c.QueryParam("cabin")))
	if cabin == "" {
		cabin = model.CabinEconomy
	}
	if !cabinClasses[cabin] {
		return fail(c, http.StatusBadRequest, "cabin must be one of economy, premium, business, first")
	}

	page, _ := strconv.Atoi(c.QueryParam("page_number"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = defaultPageSize
	}
	if ps > maxPageSize {
		ps = maxPageSize
	}

	flights, total, err := h.Flights.Search(c.Request().Context(), repository.FlightSearchQuery{
		Origin:      origin,
		Destination: destination,
		DepartDate:  depart,
		Adults:      adults,
		Cabin:       cabin,
		Page:        page,
		PageSize:    ps,
	})
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Flights retrieved successfully", echo.Map{
		"flights":     flights,
		"total":       total,
		"page_number": page,
		"page_size":   ps,
	})
}

// GetFlight handles GET /api/flight/get-flight-by-id/:id.
func (h *FlightHandler) GetFlight(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid flight id")
	}
	f, err := h.Flights.GetByID(c.Request().Context(), id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Flight retrieved successfully", f)
}

// ListAirports handles GET /api/flight/airports.
func (h *FlightHandler) ListAirports(c echo.Context) error {
	airports, err := h.Airports.List(c.Request().Context())
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Airports retrieved successfully", airports)
}

// SearchAirports handles GET /api/flight/airports/search?q=.
func (h *FlightHandler) SearchAirports(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return fail(c, http.StatusBadRequest, "q is required")
	}
	airports, err := h.Airports.Search(c.Request().Context(), term, airportSearchMax)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Airports retrieved successfully", airports)
}

// PopularDestinations handles GET /api/flight/popular-destinations.
func (h *FlightHandler) PopularDestinations(c echo.Context) error {
	return respond(c, http.StatusOK, "Popular destinations retrieved successfully", geo.PopularDestinations)
}

// NearestAirport handles GET /api/flight/airports/nearest?lat&lng. When no
// stored airport has coordinates the popular destinations are searched.
func (h *FlightHandler) NearestAirport(c echo.Context) error {
	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil || !geo.ValidCoordinates(lat, lng) {
		return fail(c, http.StatusBadRequest, "lat and lng must be valid coordinates")
	}

	candidates, err := h.Airports.List(c.Request().Context())
	if err != nil {
		requestLogger(c, h.Log).Warn("airport list failed, using popular destinations", "err", err)
		candidates = nil
	}
	if len(candidates) == 0 {
		candidates = geo.PopularDestinations
	}

	a, km, ok := geo.Nearest(lat, lng, candidates)
	if !ok {
		return respond(c, http.StatusOK, "No nearby airport found", echo.Map{"city": geo.FallbackCity})
	}
	return respond(c, http.StatusOK, "Nearest airport found", echo.Map{
		"city":        a.City,
		"airport":     a,
		"distance_km": km,
	})
}

// PriceCalendar handles GET /api/flight/prices?from&to&date and returns the
// cheapest fare for each of the seven days starting at date.
func (h *FlightHandler) PriceCalendar(c echo.Context) error {
	from := strings.ToUpper(strings.TrimSpace(c.QueryParam("from")))
	to := strings.ToUpper(strings.TrimSpace(c.QueryParam("to")))
	if !iataCode.MatchString(from) || !iataCode.MatchString(to) {
		return fail(c, http.StatusBadRequest, "from and to must be 3-letter IATA codes")
	}
	start, err := time.Parse(time.DateOnly, c.QueryParam("date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	prices, err := h.Flights.PricesByDate(c.Request().Context(), from, to, start, priceCalendarDays)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Prices retrieved successfully", prices)
}

// SeatMap handles GET /api/flight/:id/seat-map. Booked seats are marked
// unavailable.
func (h *FlightHandler) SeatMap(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid flight id")
	}
	passengers := 1
	if v := c.QueryParam("passengers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > service.MaxPassengers {
			return fail(c, http.StatusBadRequest, "passengers must be between 1 and 9")
		}
		passengers = n
	}
	f, m, err := h.Seats.SeatMap(c.Request().Context(), id)
	if err != nil {
		return storageError(c, h.Log, err)
	}
	return respond(c, http.StatusOK, "Seat map retrieved successfully", echo.Map{
		"flight_id":       f.ID,
		"total_seats":     m.TotalSeats(),
		"passenger_count": passengers,
		"unavailable":     m.Unavailable(),
		"rows":            m.Rows(),
	})
}
