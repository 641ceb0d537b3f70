package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-booking/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.ClientConfig{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second, RetryAttempts: 3, RetryBackoff: time.Millisecond})
}

func TestSearchFlights(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flight/search-flights", r.URL.Path)
		assert.Equal(t, "DEL", r.URL.Query().Get("origin"))
		assert.Equal(t, "2", r.URL.Query().Get("adults"))
		assert.Empty(t, r.URL.Query().Get("return_date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"flights":[{"flight_id":7,"flight_number":"6E-101","price":4100}],"total":1,"page_number":1,"page_size":100}}`))
	})

	res, err := c.SearchFlights(context.Background(), SearchParams{Origin: "DEL", Destination: "BOM", DepartDate: "2030-03-01", Adults: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Flights, 1)
	assert.Equal(t, uint64(7), res.Flights[0].ID)
	assert.Equal(t, "6E-101", res.Flights[0].FlightNumber)
}

func TestSeatMap(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flight/3/seat-map", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("passengers"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"flight_id":3,"total_seats":8,"passenger_count":2,"unavailable":["C1"],
			"rows":[{"rowIndex":1,"seats":[{"label":"A1","position":1,"row":1,"column":"A","price":950}]}]}}`))
	})

	m, err := c.SeatMap(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, m.TotalSeats)
	assert.Equal(t, []string{"C1"}, m.Unavailable)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, 950, m.Rows[0].Seats[0].Price)
}

func TestRetriesOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"flight_id":1,"flight_number":"AI-202"}}`))
	})

	f, err := c.GetFlight(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "AI-202", f.FlightNumber)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAPIErrorMessages(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   string
		calls  int32
	}{
		{http.StatusNotFound, `{"error":"flight not found"}`, "No flights found for the specified criteria", 1},
		{http.StatusBadRequest, `{"error":"bad"}`, "Invalid request parameters", 1},
		{http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`, "Too many requests. Please try again later", 3},
		{http.StatusConflict, `{"error":"seat B1 is already booked"}`, "seat B1 is already booked", 1},
		{http.StatusTeapot, `not json`, "I'm a teapot", 1},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.GetFlight(context.Background(), 1)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, tc.calls, calls.Load())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusConflict}))
	assert.False(t, IsNotFound(context.Canceled))
}

func TestContextCancelStopsRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(config.ClientConfig{BaseURL: srv.URL, RetryAttempts: 5, RetryBackoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GetFlight(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}
