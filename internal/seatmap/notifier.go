package seatmap

// SeatDetail is the per-seat part of a selection notification.
type SeatDetail struct {
	Label          string `json:"label"`
	Price          int    `json:"price"`
	IsExit         bool   `json:"isExit"`
	IsNonReclining bool   `json:"isNonReclining"`
}

// Selection is the payload handed to the booking flow after every change.
type Selection struct {
	Seats       []string     `json:"seats"`
	TotalPrice  int          `json:"totalPrice"`
	SeatDetails []SeatDetail `json:"seatDetails"`
}

// Listener receives the recomputed selection synchronously.
type Listener func(Selection)

// Summarize resolves labels against m and totals their surcharges. Seats
// keeps the selection order; SeatDetails follows map order. Labels missing
// from m are kept in Seats but contribute no detail and no price.
func Summarize(m *Map, labels []string) Selection {
	sel := Selection{
		Seats:       make([]string, len(labels)),
		SeatDetails: []SeatDetail{},
	}
	copy(sel.Seats, labels)
	if m == nil || len(labels) == 0 {
		return sel
	}

	want := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		want[l] = struct{}{}
	}
	m.Each(func(s *Seat) {
		if _, ok := want[s.Label]; !ok {
			return
		}
		sel.SeatDetails = append(sel.SeatDetails, SeatDetail{
			Label:          s.Label,
			Price:          s.Price,
			IsExit:         s.IsExit,
			IsNonReclining: s.IsNonReclining,
		})
		sel.TotalPrice += s.Price
	})
	return sel
}
