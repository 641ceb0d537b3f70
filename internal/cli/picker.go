package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/flight-seat-booking/internal/seatmap"
)

// ErrPickAborted is returned when the picker is closed with ctrl+c.
var ErrPickAborted = errors.New("seat picking aborted")

type pickKeys struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Reset  key.Binding
	Done   key.Binding
	Abort  key.Binding
}

func (k pickKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Done, k.Abort}
}

func (k pickKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, {k.Toggle, k.Reset, k.Done, k.Abort}}
}

var defaultPickKeys = pickKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle seat")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Done:   key.NewBinding(key.WithKeys("q", "enter"), key.WithHelp("q/enter", "done")),
	Abort:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
}

var (
	styleFree     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stylePriced   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTaken    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Bold(true)
	styleCursor   = lipgloss.NewStyle().Underline(true).Bold(true)
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleFaint    = lipgloss.NewStyle().Faint(true)
)

// pickModel is the bubbletea model behind `seatctl pick`. The cursor moves
// over the seat grid and toggles go through the selector.
type pickModel struct {
	sel      *seatmap.Selector
	row, col int
	keys     pickKeys
	help     help.Model
	status   string
	done     bool
	aborted  bool
}

func newPickModel(sel *seatmap.Selector) pickModel {
	return pickModel{sel: sel, keys: defaultPickKeys, help: help.New()}
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) rows() []seatmap.Row { return m.sel.Map().Rows() }

// lastCol returns the index of the last seat in r. Only the final row of a
// map can be short.
func lastCol(r seatmap.Row) int {
	for i := len(r.Seats) - 1; i >= 0; i-- {
		if r.Seats[i] != nil {
			return i
		}
	}
	return 0
}

// current returns the seat under the cursor, or nil on an empty map.
func (m pickModel) current() *seatmap.Seat {
	rows := m.rows()
	if m.row >= len(rows) || m.col >= len(rows[m.row].Seats) {
		return nil
	}
	return rows[m.row].Seats[m.col]
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		rows := m.rows()
		switch {
		case key.Matches(msg, m.keys.Abort):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Done):
			m.done = true
			return m, tea.Quit
		case len(rows) == 0:
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.row > 0 {
				m.row--
			}
		case key.Matches(msg, m.keys.Down):
			if m.row < len(rows)-1 {
				m.row++
			}
		case key.Matches(msg, m.keys.Left):
			if m.col > 0 {
				m.col--
			}
		case key.Matches(msg, m.keys.Right):
			if m.col < seatmap.SeatsPerRow-1 {
				m.col++
			}
		case key.Matches(msg, m.keys.Toggle):
			m.status = m.toggle()
		case key.Matches(msg, m.keys.Reset):
			m.sel.SetPassengerCount(m.sel.PassengerCount())
			m.status = "selection cleared"
		}
		if last := lastCol(rows[m.row]); m.col > last {
			m.col = last
		}
	}
	return m, nil
}

func (m pickModel) toggle() string {
	seat := m.current()
	if seat == nil {
		return ""
	}
	if seat.IsUnavailable {
		return seat.Label + " is already booked"
	}
	if _, changed := m.sel.Toggle(seat.Label); !changed {
		return ""
	}
	if m.sel.IsSelected(seat.Label) {
		return seat.Label + " selected"
	}
	return seat.Label + " released"
}

func (m pickModel) View() string {
	var b strings.Builder
	sel := m.sel.Selection()
	b.WriteString(styleTitle.Render(fmt.Sprintf("Pick %d seat(s)", m.sel.PassengerCount())))
	b.WriteString("\n\n")

	for ri, r := range m.rows() {
		fmt.Fprintf(&b, "%3d  ", r.Number)
		for ci, s := range r.Seats {
			if ci == seatmap.SeatsPerRow/2 {
				b.WriteString("   ")
			}
			b.WriteString(m.cell(s, ri == m.row && ci == m.col))
			b.WriteString(" ")
		}
		if len(r.Seats) > 0 && r.Seats[0].IsExit {
			b.WriteString(styleFaint.Render(" exit"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(sel.Seats) == 0 {
		b.WriteString("No seats selected")
	} else {
		fmt.Fprintf(&b, "Selected: %s  Total: %d", strings.Join(sel.Seats, ", "), sel.TotalPrice)
	}
	if m.status != "" {
		b.WriteString("  " + styleFaint.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m pickModel) cell(s *seatmap.Seat, cursor bool) string {
	if s == nil {
		return "     "
	}
	label := fmt.Sprintf("%-3s", s.Label)
	var out string
	switch {
	case s.IsUnavailable:
		out = styleTaken.Render("XX ")
	case m.sel.IsSelected(s.Label):
		out = styleSelected.Render(label)
	case s.Free():
		out = styleFree.Render(label)
	default:
		out = stylePriced.Render(label)
	}
	if cursor {
		return styleCursor.Render("[") + out + styleCursor.Render("]")
	}
	return " " + out + " "
}

// runPicker runs the picker until the user finishes and returns the final
// selection.
func runPicker(in io.Reader, out io.Writer, sel *seatmap.Selector) (seatmap.Selection, error) {
	final, err := tea.NewProgram(newPickModel(sel), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return seatmap.Selection{}, err
	}
	if m, ok := final.(pickModel); ok && m.aborted {
		return seatmap.Selection{}, ErrPickAborted
	}
	return sel.Selection(), nil
}
