// Package seatmap builds the cabin seat grid for a flight and tracks which
// seats a booking party has chosen. The grid is derived from a total seat
// count alone: six seats per row, fixed surcharges for the first two rows,
// an exit row at row 10 and non-reclining seats in the first two rows.
package seatmap

import "strconv"

// SeatsPerRow is the fixed cabin width.
const SeatsPerRow = 6

// Surcharges by seat position.
const (
	PremiumSurcharge = 950 // positions 1-6
	ForwardSurcharge = 700 // positions 7-12
)

const (
	exitRowNumber    = 10
	nonRecliningRows = 2
)

// Columns holds the seat letters from window to window.
var Columns = [SeatsPerRow]string{"A", "B", "C", "D", "E", "F"}

// Seat is a single generated seat. Seats are never mutated after Build
// returns; a new seat count produces a new Map.
type Seat struct {
	Label          string `json:"label"`          // column letter + row number, e.g. "C4"
	Position       int    `json:"position"`       // 1-based position in row-major order
	Row            int    `json:"row"`            // 1-based row number
	Column         string `json:"column"`         // A-F
	Price          int    `json:"price"`          // surcharge, 0 means free
	IsExit         bool   `json:"isExit"`         // row 10
	IsNonReclining bool   `json:"isNonReclining"` // first two rows
	IsUnavailable  bool   `json:"isUnavailable"`  // already booked on the flight
}

// Free reports whether the seat carries no surcharge.
func (s *Seat) Free() bool { return s.Price == 0 }

// Row is one line of the cabin. Seats beyond the total seat count are nil.
type Row struct {
	Number int     `json:"rowIndex"`
	Seats  []*Seat `json:"seats"`
}

// Map is the generated seat grid for a given total seat count.
type Map struct {
	total   int
	rows    []Row
	byLabel map[string]*Seat
}

// PriceFor returns the surcharge for a 1-based seat position.
func PriceFor(position int) int {
	switch {
	case position <= SeatsPerRow:
		return PremiumSurcharge
	case position <= 2*SeatsPerRow:
		return ForwardSurcharge
	default:
		return 0
	}
}

// Label returns the seat label for a 0-based row index and column index.
func Label(rowIndex, col int) string {
	return Columns[col] + strconv.Itoa(rowIndex+1)
}

// Build generates the seat grid for totalSeats. Negative counts are treated
// as zero. Labels listed in unavailable are flagged as booked; labels that do
// not exist on the map are ignored.
func Build(totalSeats int, unavailable ...string) *Map {
	if totalSeats < 0 {
		totalSeats = 0
	}
	taken := make(map[string]struct{}, len(unavailable))
	for _, l := range unavailable {
		taken[l] = struct{}{}
	}

	rowsCount := (totalSeats + SeatsPerRow - 1) / SeatsPerRow
	m := &Map{
		total:   totalSeats,
		rows:    make([]Row, 0, rowsCount),
		byLabel: make(map[string]*Seat, totalSeats),
	}
	for r := 0; r < rowsCount; r++ {
		row := Row{Number: r + 1, Seats: make([]*Seat, SeatsPerRow)}
		for c := 0; c < SeatsPerRow; c++ {
			pos := r*SeatsPerRow + c + 1
			if pos > totalSeats {
				continue
			}
			s := &Seat{
				Label:          Label(r, c),
				Position:       pos,
				Row:            r + 1,
				Column:         Columns[c],
				Price:          PriceFor(pos),
				IsExit:         r+1 == exitRowNumber,
				IsNonReclining: r < nonRecliningRows,
			}
			if _, ok := taken[s.Label]; ok {
				s.IsUnavailable = true
			}
			row.Seats[c] = s
			m.byLabel[s.Label] = s
		}
		m.rows = append(m.rows, row)
	}
	return m
}

// Rows returns the generated rows in cabin order.
func (m *Map) Rows() []Row { return m.rows }

// TotalSeats returns the seat count the map was built from.
func (m *Map) TotalSeats() int { return m.total }

// Len returns the number of present seats.
func (m *Map) Len() int { return len(m.byLabel) }

// Seat looks up a seat by label. It returns nil for unknown labels.
func (m *Map) Seat(label string) *Seat {
	if m == nil {
		return nil
	}
	return m.byLabel[label]
}

// Each calls fn for every present seat in row-major order.
func (m *Map) Each(fn func(*Seat)) {
	for _, row := range m.rows {
		for _, s := range row.Seats {
			if s != nil {
				fn(s)
			}
		}
	}
}

// Unavailable returns the labels flagged as booked, in map order.
func (m *Map) Unavailable() []string {
	out := []string{}
	m.Each(func(s *Seat) {
		if s.IsUnavailable {
			out = append(out, s.Label)
		}
	})
	return out
}
