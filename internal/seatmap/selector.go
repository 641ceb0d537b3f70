package seatmap

// Selector owns a seat map, its tracker and the listener that is told about
// every change. It is not safe for concurrent use; callers that share a
// selector across goroutines must serialise access themselves.
type Selector struct {
	seats    *Map
	tracker  *Tracker
	listener Listener
}

// Option configures a Selector.
type Option func(*Selector)

// WithListener registers fn to receive every selection change.
func WithListener(fn Listener) Option {
	return func(s *Selector) { s.listener = fn }
}

// NewSelector builds the map for totalSeats and an empty selection for
// passengerCount passengers.
func NewSelector(totalSeats, passengerCount int, unavailable []string, opts ...Option) *Selector {
	s := &Selector{
		seats:   Build(totalSeats, unavailable...),
		tracker: NewTracker(passengerCount),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore rebuilds a selector from saved state. Labels that are absent or
// unavailable on the rebuilt map are dropped and at most passengerCount of
// the most recent labels are kept. The listener is not called.
func Restore(totalSeats, passengerCount int, unavailable, selected []string, opts ...Option) *Selector {
	s := NewSelector(totalSeats, passengerCount, unavailable, opts...)
	for _, l := range selected {
		seat := s.seats.Seat(l)
		if seat == nil || s.tracker.IsSelected(l) {
			continue
		}
		s.tracker.Toggle(seat)
	}
	return s
}

// Rebuild regenerates the map and clears the selection, since labels on the
// old grid may not exist on the new one.
func (s *Selector) Rebuild(totalSeats int, unavailable ...string) Selection {
	s.seats = Build(totalSeats, unavailable...)
	s.tracker.Reset(s.tracker.Capacity())
	return s.notify()
}

// SetPassengerCount resets the selection for a new party size.
func (s *Selector) SetPassengerCount(n int) Selection {
	s.tracker.Reset(n)
	return s.notify()
}

// Toggle flips label and returns the resulting selection. changed is false
// when the label is unknown or unavailable; the listener is not called then.
func (s *Selector) Toggle(label string) (sel Selection, changed bool) {
	if !s.tracker.Toggle(s.seats.Seat(label)) {
		return s.Selection(), false
	}
	return s.notify(), true
}

// Selection summarises the current state without notifying.
func (s *Selector) Selection() Selection {
	return Summarize(s.seats, s.tracker.Selected())
}

// Map returns the current seat map.
func (s *Selector) Map() *Map { return s.seats }

// Selected returns the selected labels in pick order.
func (s *Selector) Selected() []string { return s.tracker.Selected() }

// IsSelected reports whether label is selected.
func (s *Selector) IsSelected(label string) bool { return s.tracker.IsSelected(label) }

// CanSelectMore reports whether another seat fits without displacement.
func (s *Selector) CanSelectMore() bool { return s.tracker.CanSelectMore() }

// PassengerCount returns the current capacity.
func (s *Selector) PassengerCount() int { return s.tracker.Capacity() }

func (s *Selector) notify() Selection {
	sel := s.Selection()
	if s.listener != nil {
		s.listener(sel)
	}
	return sel
}
