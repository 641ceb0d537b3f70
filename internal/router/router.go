package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-booking/internal/handler"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Ready         *handler.ReadyHandler
	Flights       *handler.FlightHandler
	SeatSelection *handler.SeatSelectionHandler
	Bookings      *handler.BookingHandler
	Passengers    *handler.PassengerHandler
}

// RegisterRoutes mounts all routes on e.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	RegisterHealth(e, h.Ready)
	api := e.Group("/api")
	RegisterFlights(api, h.Flights)
	RegisterSeatSelection(api, h.SeatSelection)
	RegisterBookings(api, h.Bookings)
	RegisterPassengers(api, h.Passengers)
}

// RegisterHealth exposes the liveness and readiness probes used by load
// balancers and orchestrators.
func RegisterHealth(e *echo.Echo, r *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	if r != nil {
		e.GET("/readyz", r.Ready)
	}
}

// RegisterFlights registers the public flight endpoints. GET responses under
// these paths are eligible for the Redis response cache.
func RegisterFlights(g *echo.Group, f *handler.FlightHandler) {
	fg := g.Group("/flight")
	fg.GET("/search-flights", f.SearchFlights)
	fg.GET("/get-flight-by-id/:id", f.GetFlight)
	fg.GET("/airports", f.ListAirports)
	fg.GET("/airports/search", f.SearchAirports)
	fg.GET("/airports/nearest", f.NearestAirport)
	fg.GET("/popular-destinations", f.PopularDestinations)
	fg.GET("/prices", f.PriceCalendar)
	fg.GET("/:id/seat-map", f.SeatMap)
}

// RegisterSeatSelection registers the seat-selection session endpoints.
func RegisterSeatSelection(g *echo.Group, s *handler.SeatSelectionHandler) {
	sg := g.Group("/seat-selection")
	sg.POST("", s.Start)
	sg.GET("/:id", s.Get)
	sg.POST("/:id/toggle", s.Toggle)
	sg.PUT("/:id/passengers", s.SetPassengers)
	sg.DELETE("/:id", s.Discard)
}

// RegisterBookings registers booking, payment and ticket endpoints.
func RegisterBookings(g *echo.Group, b *handler.BookingHandler) {
	g.POST("/booking", b.CreateBooking)
	g.GET("/booking/:id", b.GetBooking)
	g.PUT("/booking/:id", b.UpdateBooking)
	g.DELETE("/booking/:id", b.DeleteBooking)
	g.GET("/bookings/user/:userId", b.ListUserBookings)
	g.POST("/booking/:id/payment", b.PayBooking)
	g.GET("/booking/:id/ticket", b.GetTicket)
	g.GET("/booking/:id/itinerary.pdf", b.Itinerary)
	g.POST("/tickets/verify", b.VerifyTicket)
}

// RegisterPassengers registers the saved-passenger endpoints.
func RegisterPassengers(g *echo.Group, p *handler.PassengerHandler) {
	g.GET("/passenger/user/:userId", p.ListPassengers)
	g.POST("/passenger", p.CreatePassenger)
}
