// Package client is a small REST client for the flight booking API, used by
// seatctl. GET requests are retried on network errors, 429 and 5xx with a
// linear backoff.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/flight-seat-booking/internal/config"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
)

// Client wraps HTTP access to the booking API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	backoff     time.Duration
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request parameters",
	http.StatusUnauthorized:        "Authentication required",
	http.StatusForbidden:           "Access denied",
	http.StatusNotFound:            "No flights found for the specified criteria",
	http.StatusTooManyRequests:     "Too many requests. Please try again later",
	http.StatusInternalServerError: "Server error. Please try again later",
	http.StatusServiceUnavailable:  "Service temporarily unavailable",
}

// New creates a client from cfg. Zero values fall back to a 30s timeout and
// three attempts.
func New(cfg config.ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 3
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: attempts,
		backoff:     cfg.RetryBackoff,
	}
}

// SearchParams are the query parameters of a flight search.
type SearchParams struct {
	Origin      string
	Destination string
	DepartDate  string // YYYY-MM-DD
	ReturnDate  string
	Adults      int
	Cabin       string
	Page        int
	PageSize    int
}

// SearchResult is one page of matching flights.
type SearchResult struct {
	Flights    []model.Flight `json:"flights"`
	Total      int64          `json:"total"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
}

// SeatMap is the seat layout of a flight with booked seats marked.
type SeatMap struct {
	FlightID       uint64        `json:"flight_id"`
	TotalSeats     int           `json:"total_seats"`
	PassengerCount int           `json:"passenger_count"`
	Unavailable    []string      `json:"unavailable"`
	Rows           []seatmap.Row `json:"rows"`
}

// SearchFlights calls GET /flight/search-flights.
func (c *Client) SearchFlights(ctx context.Context, p SearchParams) (SearchResult, error) {
	q := url.Values{}
	q.Set("origin", p.Origin)
	q.Set("destination", p.Destination)
	q.Set("depart_date", p.DepartDate)
	if p.ReturnDate != "" {
		q.Set("return_date", p.ReturnDate)
	}
	if p.Adults > 0 {
		q.Set("adults", strconv.Itoa(p.Adults))
	}
	if p.Cabin != "" {
		q.Set("cabin", p.Cabin)
	}
	if p.Page > 0 {
		q.Set("page_number", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	var out SearchResult
	err := c.getJSON(ctx, "/flight/search-flights?"+q.Encode(), &out)
	return out, err
}

// GetFlight calls GET /flight/get-flight-by-id/:id.
func (c *Client) GetFlight(ctx context.Context, id uint64) (model.Flight, error) {
	var out model.Flight
	err := c.getJSON(ctx, fmt.Sprintf("/flight/get-flight-by-id/%d", id), &out)
	return out, err
}

// SeatMap calls GET /flight/:id/seat-map.
func (c *Client) SeatMap(ctx context.Context, flightID uint64, passengers int) (SeatMap, error) {
	endpoint := fmt.Sprintf("/flight/%d/seat-map", flightID)
	if passengers > 0 {
		endpoint += "?passengers=" + strconv.Itoa(passengers)
	}
	var out SeatMap
	err := c.getJSON(ctx, endpoint, &out)
	return out, err
}

// envelope is the API's success wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			if retryableNetworkError(err) && attempt < c.maxAttempts {
				if waitErr := c.wait(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
		_ = res.Body.Close()
		if err != nil {
			return fmt.Errorf("read response from %s: %w", path, err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			if retryableStatus(res.StatusCode) && attempt < c.maxAttempts {
				if waitErr := c.wait(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return newAPIError(res.StatusCode, body)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
		if len(env.Data) == 0 || out == nil {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data from %s: %w", path, err)
		}
		return nil
	}
	return errors.New("request failed after retries")
}

func newAPIError(status int, body []byte) *APIError {
	if msg, ok := statusMessages[status]; ok {
		return &APIError{StatusCode: status, Message: msg}
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return &APIError{StatusCode: status, Message: payload.Error}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func retryableNetworkError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// wait sleeps backoff*attempt or until ctx is done.
func (c *Client) wait(ctx context.Context, attempt int) error {
	d := c.backoff * time.Duration(attempt)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
