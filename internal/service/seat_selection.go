package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/flight-seat-booking/internal/logger"
	"github.com/iliyamo/flight-seat-booking/internal/model"
	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
)

// MaxPassengers is the largest party a single booking may seat.
const MaxPassengers = 9

// ErrInvalidPassengerCount is returned for counts outside 1..MaxPassengers.
var ErrInvalidPassengerCount = errors.New("passenger_count must be between 1 and 9")

// FlightSource is the subset of flight storage seat selection needs.
type FlightSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Flight, error)
	BookedSeats(ctx context.Context, flightID uint64) ([]string, error)
}

// SeatSelectionView is what the API returns after every seat-selection call.
type SeatSelectionView struct {
	Session       *SeatSession      `json:"session"`
	Selection     seatmap.Selection `json:"selection"`
	CanSelectMore bool              `json:"can_select_more"`
	Changed       bool              `json:"changed"`
	Rows          []seatmap.Row     `json:"rows,omitempty"`
}

// SeatSelectionService drives seat selection across requests. Each call
// rebuilds a seatmap.Selector from the stored session, applies one
// operation and stores the result.
type SeatSelectionService struct {
	store        SessionStore
	flights      FlightSource
	defaultSeats int
	log          *logger.Logger
	now          func() time.Time
}

// NewSeatSelectionService wires the service. defaultSeats is used for
// flights that carry no total_seats.
func NewSeatSelectionService(store SessionStore, flights FlightSource, defaultSeats int, log *logger.Logger) *SeatSelectionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SeatSelectionService{store: store, flights: flights, defaultSeats: defaultSeats, log: log, now: time.Now}
}

// SeatMap builds the current map for a flight, marking booked seats.
func (s *SeatSelectionService) SeatMap(ctx context.Context, flightID uint64) (*model.Flight, *seatmap.Map, error) {
	f, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, nil, err
	}
	booked, err := s.flights.BookedSeats(ctx, flightID)
	if err != nil {
		return nil, nil, err
	}
	return f, seatmap.Build(s.totalSeats(f), booked...), nil
}

// Start opens a new session for flightID and passengers.
func (s *SeatSelectionService) Start(ctx context.Context, flightID uint64, passengers int) (*SeatSelectionView, error) {
	if passengers < 1 || passengers > MaxPassengers {
		return nil, ErrInvalidPassengerCount
	}
	f, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &SeatSession{
		ID:             uuid.NewString(),
		FlightID:       f.ID,
		TotalSeats:     s.totalSeats(f),
		PassengerCount: passengers,
		Selected:       []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

// Get returns the session with its selection re-resolved against seats
// booked since the last call.
func (s *SeatSelectionService) Get(ctx context.Context, id string) (*SeatSelectionView, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

// Toggle selects or deselects label in session id.
func (s *SeatSelectionService) Toggle(ctx context.Context, id, label string) (*SeatSelectionView, error) {
	var (
		changed bool
		sel     *seatmap.Selector
	)
	sess, err := s.store.Update(ctx, id, func(sess *SeatSession) error {
		booked, err := s.flights.BookedSeats(ctx, sess.FlightID)
		if err != nil {
			return err
		}
		sel = seatmap.Restore(sess.TotalSeats, sess.PassengerCount, booked, sess.Selected,
			seatmap.WithListener(s.listener(sess.ID)))
		_, changed = sel.Toggle(label)
		sess.Selected = sel.Selected()
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SeatSelectionView{
		Session:       sess,
		Selection:     sel.Selection(),
		CanSelectMore: sel.CanSelectMore(),
		Changed:       changed,
	}, nil
}

// SetPassengers changes the party size, which always clears the selection.
func (s *SeatSelectionService) SetPassengers(ctx context.Context, id string, passengers int) (*SeatSelectionView, error) {
	if passengers < 1 || passengers > MaxPassengers {
		return nil, ErrInvalidPassengerCount
	}
	var sel seatmap.Selection
	sess, err := s.store.Update(ctx, id, func(sess *SeatSession) error {
		selector := seatmap.NewSelector(sess.TotalSeats, sess.PassengerCount, nil,
			seatmap.WithListener(s.listener(sess.ID)))
		sel = selector.SetPassengerCount(passengers)
		sess.PassengerCount = passengers
		sess.Selected = selector.Selected()
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SeatSelectionView{Session: sess, Selection: sel, CanSelectMore: true, Changed: true}, nil
}

// Discard deletes a session.
func (s *SeatSelectionService) Discard(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *SeatSelectionService) view(ctx context.Context, sess *SeatSession) (*SeatSelectionView, error) {
	booked, err := s.flights.BookedSeats(ctx, sess.FlightID)
	if err != nil {
		return nil, err
	}
	sel := seatmap.Restore(sess.TotalSeats, sess.PassengerCount, booked, sess.Selected)
	sess.Selected = sel.Selected()
	v := &SeatSelectionView{
		Session:       sess,
		Selection:     sel.Selection(),
		CanSelectMore: sel.CanSelectMore(),
		Rows:          sel.Map().Rows(),
	}
	return v, nil
}

func (s *SeatSelectionService) listener(sessionID string) seatmap.Listener {
	return func(sel seatmap.Selection) {
		s.log.Debug("seat selection changed",
			"session_id", sessionID, "seats", sel.Seats, "total_price", sel.TotalPrice)
	}
}

func (s *SeatSelectionService) totalSeats(f *model.Flight) int {
	if f.TotalSeats > 0 {
		return f.TotalSeats
	}
	return s.defaultSeats
}
