package seatmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RowCountAndPresentSeats(t *testing.T) {
	t.Parallel()

	for _, total := range []int{0, 1, 5, 6, 7, 12, 14, 59, 60, 61, 180} {
		m := Build(total)
		wantRows := (total + SeatsPerRow - 1) / SeatsPerRow
		assert.Len(t, m.Rows(), wantRows, "total=%d", total)
		assert.Equal(t, total, m.Len(), "total=%d", total)

		present := 0
		for _, row := range m.Rows() {
			assert.Len(t, row.Seats, SeatsPerRow)
			for _, s := range row.Seats {
				if s != nil {
					present++
				}
			}
		}
		assert.Equal(t, total, present, "total=%d", total)
	}
}

func TestBuild_NegativeIsEmpty(t *testing.T) {
	t.Parallel()

	m := Build(-4)
	assert.Empty(t, m.Rows())
	assert.Equal(t, 0, m.TotalSeats())
}

func TestBuild_TruncatesLastRow(t *testing.T) {
	t.Parallel()

	m := Build(14)
	require.Len(t, m.Rows(), 3)
	last := m.Rows()[2]
	assert.NotNil(t, last.Seats[0])
	assert.NotNil(t, last.Seats[1])
	for _, s := range last.Seats[2:] {
		assert.Nil(t, s)
	}
	assert.Nil(t, m.Seat("C3"))
}

func TestBuild_LabelsAndPositions(t *testing.T) {
	t.Parallel()

	m := Build(18)
	cases := []struct {
		label    string
		position int
		row      int
		column   string
	}{
		{"A1", 1, 1, "A"},
		{"F1", 6, 1, "F"},
		{"A2", 7, 2, "A"},
		{"C2", 9, 2, "C"},
		{"A3", 13, 3, "A"},
		{"F3", 18, 3, "F"},
	}
	for _, tc := range cases {
		s := m.Seat(tc.label)
		require.NotNil(t, s, tc.label)
		assert.Equal(t, tc.position, s.Position, tc.label)
		assert.Equal(t, tc.row, s.Row, tc.label)
		assert.Equal(t, tc.column, s.Column, tc.label)
	}
	assert.Equal(t, 1, m.Rows()[0].Number)
	assert.Equal(t, 3, m.Rows()[2].Number)
}

func TestPriceFor(t *testing.T) {
	t.Parallel()

	for p := 1; p <= 40; p++ {
		switch {
		case p <= 6:
			assert.Equal(t, 950, PriceFor(p), "position %d", p)
		case p <= 12:
			assert.Equal(t, 700, PriceFor(p), "position %d", p)
		default:
			assert.Equal(t, 0, PriceFor(p), "position %d", p)
		}
	}
}

func TestBuild_PricesFollowPosition(t *testing.T) {
	t.Parallel()

	m := Build(60)
	m.Each(func(s *Seat) {
		assert.Equal(t, PriceFor(s.Position), s.Price, s.Label)
		assert.Equal(t, s.Price == 0, s.Free(), s.Label)
	})
}

func TestBuild_ExitAndRecliningFlags(t *testing.T) {
	t.Parallel()

	m := Build(66)
	m.Each(func(s *Seat) {
		assert.Equal(t, s.Row == 10, s.IsExit, s.Label)
		assert.Equal(t, s.Row <= 2, s.IsNonReclining, s.Label)
	})

	// no row 10 on a short cabin
	Build(54).Each(func(s *Seat) { assert.False(t, s.IsExit, s.Label) })
}

func TestBuild_Unavailable(t *testing.T) {
	t.Parallel()

	m := Build(12, "B1", "D2", "Z9")
	assert.True(t, m.Seat("B1").IsUnavailable)
	assert.True(t, m.Seat("D2").IsUnavailable)
	assert.False(t, m.Seat("A1").IsUnavailable)
	assert.Equal(t, []string{"B1", "D2"}, m.Unavailable())
}

func TestTracker_ToggleAndDeselect(t *testing.T) {
	t.Parallel()

	m := Build(12)
	tr := NewTracker(3)

	assert.True(t, tr.Toggle(m.Seat("A1")))
	assert.True(t, tr.Toggle(m.Seat("B1")))
	assert.Equal(t, []string{"A1", "B1"}, tr.Selected())
	assert.True(t, tr.CanSelectMore())

	assert.True(t, tr.Toggle(m.Seat("A1")))
	assert.Equal(t, []string{"B1"}, tr.Selected())
	assert.False(t, tr.IsSelected("A1"))
	assert.True(t, tr.IsSelected("B1"))
}

func TestTracker_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	m := Build(12)
	tr := NewTracker(2)
	tr.Toggle(m.Seat("C1"))
	tr.Toggle(m.Seat("A1"))
	assert.False(t, tr.CanSelectMore())

	assert.True(t, tr.Toggle(m.Seat("B1")))
	assert.Equal(t, []string{"A1", "B1"}, tr.Selected())
	assert.Equal(t, 2, tr.Len())
}

func TestTracker_IgnoresMissingAndUnavailable(t *testing.T) {
	t.Parallel()

	m := Build(12, "E2")
	tr := NewTracker(2)
	assert.False(t, tr.Toggle(nil))
	assert.False(t, tr.Toggle(m.Seat("A9")))
	assert.False(t, tr.Toggle(m.Seat("E2")))
	assert.Empty(t, tr.Selected())
}

func TestTracker_NeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	m := Build(30)
	labels := []string{"A1", "B2", "C3", "A1", "D4", "E5", "F1", "B2", "C3", "A5", "Q1", "F5"}
	for capacity := 0; capacity <= 4; capacity++ {
		tr := NewTracker(capacity)
		for _, l := range labels {
			tr.Toggle(m.Seat(l))
			assert.LessOrEqual(t, tr.Len(), capacity)
		}
	}
}

func TestTracker_ResetClears(t *testing.T) {
	t.Parallel()

	m := Build(12)
	tr := NewTracker(2)
	tr.Toggle(m.Seat("A1"))
	tr.Reset(2)
	assert.Empty(t, tr.Selected())
	tr.Toggle(m.Seat("A1"))
	tr.Reset(4)
	assert.Empty(t, tr.Selected())
	assert.Equal(t, 4, tr.Capacity())
}

func TestSummarize_MapOrderDetails(t *testing.T) {
	t.Parallel()

	m := Build(14)
	sel := Summarize(m, []string{"A3", "B1"})
	assert.Equal(t, []string{"A3", "B1"}, sel.Seats)
	require.Len(t, sel.SeatDetails, 2)
	assert.Equal(t, "B1", sel.SeatDetails[0].Label)
	assert.Equal(t, "A3", sel.SeatDetails[1].Label)
	assert.Equal(t, 950, sel.TotalPrice)
}

func TestSummarize_EmptyJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Summarize(Build(0), nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"seats":[],"totalPrice":0,"seatDetails":[]}`, string(b))
}
