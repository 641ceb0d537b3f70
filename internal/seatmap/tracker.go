package seatmap

// Tracker holds the ordered selection of seat labels for one booking party.
// The selection never grows beyond the passenger count: selecting another
// seat when full drops the earliest pick.
type Tracker struct {
	capacity int
	selected []string
}

// NewTracker returns an empty tracker for passengerCount passengers.
func NewTracker(passengerCount int) *Tracker {
	t := &Tracker{}
	t.Reset(passengerCount)
	return t
}

// Reset clears the selection and sets a new capacity.
func (t *Tracker) Reset(passengerCount int) {
	if passengerCount < 0 {
		passengerCount = 0
	}
	t.capacity = passengerCount
	t.selected = make([]string, 0, passengerCount)
}

// Toggle selects or deselects seat and reports whether the selection changed.
// A nil or unavailable seat leaves the selection untouched.
func (t *Tracker) Toggle(seat *Seat) bool {
	if seat == nil || seat.IsUnavailable || t.capacity < 1 {
		return false
	}
	if i := t.indexOf(seat.Label); i >= 0 {
		t.selected = append(t.selected[:i], t.selected[i+1:]...)
		return true
	}
	if len(t.selected) >= t.capacity {
		// drop the oldest pick
		t.selected = append(t.selected[:0], t.selected[1:]...)
	}
	t.selected = append(t.selected, seat.Label)
	return true
}

// IsSelected reports whether label is part of the selection.
func (t *Tracker) IsSelected(label string) bool { return t.indexOf(label) >= 0 }

// CanSelectMore reports whether another seat fits without displacing one.
func (t *Tracker) CanSelectMore() bool { return len(t.selected) < t.capacity }

// Selected returns a copy of the selection in the order seats were picked.
func (t *Tracker) Selected() []string {
	out := make([]string, len(t.selected))
	copy(out, t.selected)
	return out
}

// Capacity returns the passenger count the tracker was reset with.
func (t *Tracker) Capacity() int { return t.capacity }

// Len returns the number of selected seats.
func (t *Tracker) Len() int { return len(t.selected) }

func (t *Tracker) indexOf(label string) int {
	for i, l := range t.selected {
		if l == label {
			return i
		}
	}
	return -1
}
