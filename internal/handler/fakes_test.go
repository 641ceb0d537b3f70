package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/flight-seat-booking/internal/geo"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/payment"
	"github.com/iliyamo/flight-seat-booking/internal/promo"
	q "github.com/iliyamo/flight-seat-booking/internal/queue"
	"github.com/iliyamo/flight-seat-booking/internal/repository"
	"github.com/iliyamo/flight-seat-booking/internal/service"
)

type fakeFlights struct {
	mu        sync.Mutex
	flights   map[uint64]*model.Flight
	booked    map[uint64][]string
	lastQuery repository.FlightSearchQuery
}

func (f *fakeFlights) GetByID(_ context.Context, id uint64) (*model.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.flights[id]
	if !ok {
		return nil, repository.ErrFlightNotFound
	}
	cp := *fl
	return &cp, nil
}

func (f *fakeFlights) BookedSeats(_ context.Context, id uint64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.booked[id]...), nil
}

func (f *fakeFlights) Search(_ context.Context, query repository.FlightSearchQuery) ([]model.Flight, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	out := []model.Flight{}
	for _, fl := range f.flights {
		if fl.Origin == query.Origin && fl.Destination == query.Destination {
			out = append(out, *fl)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeFlights) PricesByDate(_ context.Context, from, to string, start time.Time, days int) ([]model.DatePrice, error) {
	return []model.DatePrice{{Date: start.Format(time.DateOnly), Price: 4200}}, nil
}

type fakeAirports struct{ list []geo.Airport }

func (f *fakeAirports) List(context.Context) ([]geo.Airport, error) { return f.list, nil }

func (f *fakeAirports) Search(_ context.Context, term string, limit int) ([]geo.Airport, error) {
	out := []geo.Airport{}
	for _, a := range f.list {
		if strings.Contains(strings.ToLower(a.City), strings.ToLower(term)) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePassengers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.Passenger
}

func (f *fakePassengers) Create(_ context.Context, p *model.Passenger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now().UTC()
	f.byID[p.ID] = *p
	return nil
}

func (f *fakePassengers) ListByUser(_ context.Context, userID string) ([]model.Passenger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Passenger{}
	for id := uint64(1); id <= f.nextID; id++ {
		if p, ok := f.byID[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePassengers) GetByIDs(_ context.Context, ids []uint64) ([]model.Passenger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Passenger, 0, len(ids))
	for _, id := range ids {
		p, ok := f.byID[id]
		if !ok {
			return nil, repository.ErrPassengerNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeBookings mirrors BookingRepo's state rules in memory and books seats
// into the shared fakeFlights so seat maps reflect them.
type fakeBookings struct {
	mu      sync.Mutex
	flights *fakeFlights
	nextID  uint64
	byID    map[uint64]*model.Booking
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flights.mu.Lock()
	defer f.flights.mu.Unlock()
	fl, ok := f.flights.flights[b.FlightID]
	if !ok {
		return repository.ErrFlightNotFound
	}
	if fl.SeatsAvailable < len(b.PassengerInfo) {
		return repository.ErrSoldOut
	}
	for _, l := range b.Seats() {
		for _, taken := range f.flights.booked[b.FlightID] {
			if l == taken {
				return repository.ErrSeatTaken
			}
		}
	}
	f.flights.booked[b.FlightID] = append(f.flights.booked[b.FlightID], b.Seats()...)
	fl.SeatsAvailable -= len(b.PassengerInfo)

	f.nextID++
	b.ID = f.nextID
	b.Status = model.BookingActive
	b.PaymentStatus = model.PaymentPending
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Booking{}
	for id := f.nextID; id >= 1; id-- {
		if b, ok := f.byID[id]; ok && b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[b.ID]
	if !ok || cur.Status != model.BookingActive {
		return repository.ErrConflict
	}
	cur.BookingType = b.BookingType
	cur.PaymentMethod = b.PaymentMethod
	cur.SpecialRequests = b.SpecialRequests
	cur.BookingSource = b.BookingSource
	*b = *cur
	return nil
}

func (f *fakeBookings) Cancel(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status == model.BookingCancelled {
		return nil, repository.ErrConflict
	}
	f.flights.mu.Lock()
	kept := []string{}
	for _, l := range f.flights.booked[b.FlightID] {
		if !contains(b.Seats(), l) {
			kept = append(kept, l)
		}
	}
	f.flights.booked[b.FlightID] = kept
	f.flights.flights[b.FlightID].SeatsAvailable += len(b.PassengerInfo)
	f.flights.mu.Unlock()

	b.Status = model.BookingCancelled
	if b.PaymentStatus == model.PaymentPaid {
		b.PaymentStatus = model.PaymentRefunded
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) MarkPaid(_ context.Context, id uint64, p repository.PaymentRecord) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status != model.BookingActive || b.PaymentStatus != model.PaymentPending {
		return nil, repository.ErrConflict
	}
	b.PaymentStatus = model.PaymentPaid
	paidAt := p.PaidAt
	b.PaymentDate = &paidAt
	b.PaymentRef = &p.Ref
	b.CardLast4 = &p.Last4
	b.CardHash = &p.CardHash
	cp := *b
	return &cp, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type fakeEvents struct {
	mu        sync.Mutex
	confirmed []q.BookingConfirmedEvent
	cancelled []q.BookingCancelledEvent
}

func (f *fakeEvents) PublishBookingConfirmed(_ context.Context, e q.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, e)
	return nil
}

func (f *fakeEvents) PublishBookingCancelled(_ context.Context, e q.BookingCancelledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, e)
	return nil
}

// flakySessions fails Delete with deleteErr when it is set.
type flakySessions struct {
	service.SessionStore
	deleteErr error
}

func (f *flakySessions) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.SessionStore.Delete(ctx, id)
}

const testTicketSecret = "test-secret"

// testAPI is an echo instance wired to in-memory fakes. Flight 1 runs
// DEL to BOM with 12 seats, B1 already booked and a 5000 fare.
// Passengers 1 and 2 belong to user u1, passenger 3 to user u2.
type testAPI struct {
	e          *echo.Echo
	flights    *fakeFlights
	airports   *fakeAirports
	passengers *fakePassengers
	bookings   *fakeBookings
	events     *fakeEvents
	sessions   *flakySessions
	logs       bytes.Buffer // warn and above, JSON lines
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	flights := &fakeFlights{
		flights: map[uint64]*model.Flight{
			1: {
				ID: 1, FlightNumber: "AI-202", Airline: "Air India", Origin: "DEL", Destination: "BOM",
				DepartureTime: time.Date(2030, 3, 1, 6, 0, 0, 0, time.UTC),
				ArrivalTime:   time.Date(2030, 3, 1, 8, 10, 0, 0, time.UTC),
				Duration:      130, DurationLabel: "2h 10m", Price: 5000, SeatsAvailable: 11,
				CabinClass: model.CabinEconomy, TotalSeats: 12,
			},
		},
		booked: map[uint64][]string{1: {"B1"}},
	}
	passengers := &fakePassengers{nextID: 3, byID: map[uint64]model.Passenger{
		1: {ID: 1, UserID: "u1", Name: "Asha Rao", DOB: "1990-04-02", Type: model.PassengerAdult},
		2: {ID: 2, UserID: "u1", Name: "Ravi Rao", DOB: "2018-07-09", Type: model.PassengerChild},
		3: {ID: 3, UserID: "u2", Name: "Someone Else", DOB: "1985-01-01", Type: model.PassengerAdult},
	}}
	api := &testAPI{
		e:          echo.New(),
		flights:    flights,
		airports:   &fakeAirports{},
		passengers: passengers,
		bookings:   &fakeBookings{flights: flights, byID: map[uint64]*model.Booking{}},
		events:     &fakeEvents{},
		sessions:   &flakySessions{SessionStore: service.NewMemorySessionStore(time.Minute)},
	}

	engine, err := promo.NewEngine(promo.DefaultRules)
	require.NoError(t, err)
	log := logger.NewWithWriter(&api.logs, "warn", "json")
	seats := service.NewSeatSelectionService(api.sessions, flights, 60, log)

	fh := NewFlightHandler(flights, api.airports, seats, log)
	sh := NewSeatSelectionHandler(seats, log)
	bh := NewBookingHandler(api.bookings, flights, passengers, seats, engine,
		payment.NewProcessor(0, bcrypt.MinCost), api.events,
		TicketConfig{Secret: testTicketSecret, TTL: time.Hour}, log)
	ph := NewPassengerHandler(passengers, log)

	e := api.e
	e.GET("/healthz", Health)
	e.GET("/api/flight/search-flights", fh.SearchFlights)
	e.GET("/api/flight/get-flight-by-id/:id", fh.GetFlight)
	e.GET("/api/flight/airports", fh.ListAirports)
	e.GET("/api/flight/airports/search", fh.SearchAirports)
	e.GET("/api/flight/airports/nearest", fh.NearestAirport)
	e.GET("/api/flight/popular-destinations", fh.PopularDestinations)
	e.GET("/api/flight/prices", fh.PriceCalendar)
	e.GET("/api/flight/:id/seat-map", fh.SeatMap)
	e.POST("/api/seat-selection", sh.Start)
	e.GET("/api/seat-selection/:id", sh.Get)
	e.POST("/api/seat-selection/:id/toggle", sh.Toggle)
	e.PUT("/api/seat-selection/:id/passengers", sh.SetPassengers)
	e.DELETE("/api/seat-selection/:id", sh.Discard)
	e.POST("/api/booking", bh.CreateBooking)
	e.GET("/api/booking/:id", bh.GetBooking)
	e.PUT("/api/booking/:id", bh.UpdateBooking)
	e.DELETE("/api/booking/:id", bh.DeleteBooking)
	e.GET("/api/bookings/user/:userId", bh.ListUserBookings)
	e.POST("/api/booking/:id/payment", bh.PayBooking)
	e.GET("/api/booking/:id/ticket", bh.GetTicket)
	e.GET("/api/booking/:id/itinerary.pdf", bh.Itinerary)
	e.POST("/api/tickets/verify", bh.VerifyTicket)
	e.GET("/api/passenger/user/:userId", ph.ListPassengers)
	e.POST("/api/passenger", ph.CreatePassenger)
	return api
}

func (a *testAPI) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a success body and returns its data member.
func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.True(t, body.Success, rec.Body.String())
	return body.Data
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	msg, _ := body["error"].(string)
	return msg
}
