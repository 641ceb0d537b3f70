package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
)

// seatCell renders a seat for the static table: booked seats as XX, priced
// seats with their surcharge. Empty slots in a short last row are blank.
func seatCell(s *seatmap.Seat) string {
	switch {
	case s == nil:
		return ""
	case s.IsUnavailable:
		return "XX"
	case s.Free():
		return s.Label
	default:
		return fmt.Sprintf("%s %d", s.Label, s.Price)
	}
}

func rowNotes(r seatmap.Row) string {
	if len(r.Seats) == 0 {
		return ""
	}
	var notes []string
	if r.Seats[0].IsExit {
		notes = append(notes, "exit")
	}
	if r.Seats[0].IsNonReclining {
		notes = append(notes, "no recline")
	}
	return strings.Join(notes, ", ")
}

// RenderSeatMap writes m as a table with one line per row.
func RenderSeatMap(w io.Writer, m *seatmap.Map) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	header := table.Row{"Row"}
	for _, c := range seatmap.Columns {
		header = append(header, c)
	}
	header = append(header, "")
	t.AppendHeader(header)

	for _, r := range m.Rows() {
		line := table.Row{r.Number}
		for i := 0; i < seatmap.SeatsPerRow; i++ {
			if i < len(r.Seats) {
				line = append(line, seatCell(r.Seats[i]))
			} else {
				line = append(line, "")
			}
		}
		line = append(line, rowNotes(r))
		t.AppendRow(line)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d seats", m.TotalSeats()), fmt.Sprintf("%d booked", len(m.Unavailable()))})
	t.Style().Options.SeparateRows = false
	t.Render()
}

// RenderSelection writes the chosen seats and their total.
func RenderSelection(w io.Writer, sel seatmap.Selection) {
	if len(sel.Seats) == 0 {
		fmt.Fprintln(w, "No seats selected.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Seat", "Price", "Exit", "Non-reclining"})
	for _, d := range sel.SeatDetails {
		t.AppendRow(table.Row{d.Label, d.Price, yesNo(d.IsExit), yesNo(d.IsNonReclining)})
	}
	t.AppendFooter(table.Row{"Total", sel.TotalPrice, "", ""})
	t.Render()
	fmt.Fprintf(w, "Selected: %s\n", strings.Join(sel.Seats, ", "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
