package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
)

var errNoFlight = errors.New("no flight")

type fakeFlights struct {
	flight *model.Flight
	booked []string
}

func (f *fakeFlights) GetByID(_ context.Context, id uint64) (*model.Flight, error) {
	if f.flight == nil || f.flight.ID != id {
		return nil, errNoFlight
	}
	return f.flight, nil
}

func (f *fakeFlights) BookedSeats(context.Context, uint64) ([]string, error) {
	return f.booked, nil
}

func newSelection(t *testing.T, flights *fakeFlights) *SeatSelectionService {
	t.Helper()
	return NewSeatSelectionService(NewMemorySessionStore(time.Minute), flights, 60, logger.Nop())
}

func TestSeatSelection_StartAndToggle(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 7, TotalSeats: 24}, booked: []string{"B1"}}
	svc := newSelection(t, flights)
	ctx := context.Background()

	v, err := svc.Start(ctx, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 24, v.Session.TotalSeats)
	assert.Len(t, v.Rows, 4)
	assert.Empty(t, v.Selection.Seats)
	assert.True(t, v.CanSelectMore)

	v, err = svc.Toggle(ctx, v.Session.ID, "A1")
	require.NoError(t, err)
	assert.True(t, v.Changed)
	assert.Equal(t, []string{"A1"}, v.Selection.Seats)
	assert.Equal(t, 950, v.Selection.TotalPrice)

	v, err = svc.Toggle(ctx, v.Session.ID, "B1")
	require.NoError(t, err)
	assert.False(t, v.Changed, "booked seat cannot be picked")

	v, err = svc.Toggle(ctx, v.Session.ID, "A2")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, v.Selection.Seats)
	assert.Equal(t, 1650, v.Selection.TotalPrice)
	assert.False(t, v.CanSelectMore)

	// a third pick displaces the oldest
	v, err = svc.Toggle(ctx, v.Session.ID, "A3")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A3"}, v.Selection.Seats)

	got, err := svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A3"}, got.Session.Selected)
}

func TestSeatSelection_DefaultSeatsAndValidation(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 1}}
	svc := newSelection(t, flights)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPassengerCount)
	_, err = svc.Start(ctx, 1, MaxPassengers+1)
	assert.ErrorIs(t, err, ErrInvalidPassengerCount)
	_, err = svc.Start(ctx, 2, 1)
	assert.ErrorIs(t, err, errNoFlight)

	v, err := svc.Start(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, v.Session.TotalSeats)
}

func TestSeatSelection_BookedSinceDropsFromSelection(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 3, TotalSeats: 12}}
	svc := newSelection(t, flights)
	ctx := context.Background()

	v, err := svc.Start(ctx, 3, 2)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, v.Session.ID, "C1")
	require.NoError(t, err)

	flights.booked = []string{"C1"}
	got, err := svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Selection.Seats)
}

func TestSeatSelection_SetPassengersClears(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 3, TotalSeats: 12}}
	svc := newSelection(t, flights)
	ctx := context.Background()

	v, err := svc.Start(ctx, 3, 1)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, v.Session.ID, "A1")
	require.NoError(t, err)

	v, err = svc.SetPassengers(ctx, v.Session.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Session.PassengerCount)
	assert.Empty(t, v.Selection.Seats)
	assert.Zero(t, v.Selection.TotalPrice)

	_, err = svc.SetPassengers(ctx, v.Session.ID, 10)
	assert.ErrorIs(t, err, ErrInvalidPassengerCount)
}

func TestSeatSelection_Discard(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 3, TotalSeats: 12}}
	svc := newSelection(t, flights)
	ctx := context.Background()

	v, err := svc.Start(ctx, 3, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, v.Session.ID))
	assert.ErrorIs(t, svc.Discard(ctx, v.Session.ID), ErrSessionNotFound)
	_, err = svc.Get(ctx, v.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Toggle(ctx, "missing", "A1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSeatMap(t *testing.T) {
	flights := &fakeFlights{flight: &model.Flight{ID: 5, TotalSeats: 18}, booked: []string{"A1", "F3"}}
	svc := newSelection(t, flights)

	f, m, err := svc.SeatMap(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), f.ID)
	assert.Equal(t, 18, m.Len())
	assert.True(t, m.Seat("A1").IsUnavailable)
	assert.True(t, m.Seat("F3").IsUnavailable)
	assert.False(t, m.Seat("B1").IsUnavailable)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &SeatSession{ID: "s1", PassengerCount: 1}))
	assert.Error(t, store.Create(ctx, &SeatSession{ID: "s1"}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.PassengerCount = 99
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.PassengerCount, "returned sessions are copies")

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_UpdateErrorKeepsState(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &SeatSession{ID: "s1", Selected: []string{"A1"}}))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "s1", func(s *SeatSession) error {
		s.Selected = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, got.Selected)
}

func TestItineraryPDF(t *testing.T) {
	ref := "PAY-1"
	b := &model.Booking{
		ID:            1,
		Reference:     "BK-ABC123",
		PassengerInfo: []uint64{11, 12},
		SeatNumbers:   map[string]string{"11": "A1", "12": "B1"},
		BaseFare:      9000,
		Surcharge:     1800,
		SeatFees:      1900,
		Discount:      500,
		PromocodeUsed: "SEATSAVER",
		TotalPrice:    12200,
		Status:        model.BookingActive,
		PaymentStatus: model.PaymentPaid,
		PaymentRef:    &ref,
	}
	f := &model.Flight{
		ID:            4,
		FlightNumber:  "AI-202",
		Airline:       "Air India",
		Origin:        "DEL",
		Destination:   "BOM",
		DepartureTime: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2025, 3, 1, 8, 10, 0, 0, time.UTC),
		DurationLabel: "2h 10m",
		CabinClass:    model.CabinEconomy,
	}
	passengers := []model.Passenger{
		{ID: 11, Name: "Asha Rao", Type: model.PassengerAdult},
		{ID: 12, Name: "Ravi Rao", Type: model.PassengerChild},
	}

	out, err := ItineraryPDF(b, f, passengers)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	b.Status = model.BookingCancelled
	out, err = ItineraryPDF(b, f, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
