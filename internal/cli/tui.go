package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/storyline/pkg/timeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorRed)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EventListModel - Interactive event selection
// =============================================================================

// EventListModel is the bubbletea model for picking events to delete.
type EventListModel struct {
	Events    []timeline.Event
	Cursor    int
	Marked    map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewEventListModel creates a new event list model.
func NewEventListModel(events []timeline.Event) EventListModel {
	return EventListModel{
		Events: events,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m EventListModel) Init() tea.Cmd {
	return nil
}

func (m EventListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Events)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Events) > 0 {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "enter":
			// Enter with nothing marked deletes the row under the cursor.
			if len(m.Events) > 0 && len(m.SelectedIndices()) == 0 {
				m.Marked[m.Cursor] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// SelectedIndices returns the marked positions in ascending order.
func (m EventListModel) SelectedIndices() []int {
	var out []int
	for i := range m.Events {
		if m.Marked[i] {
			out = append(out, i)
		}
	}
	return out
}

func (m EventListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Delete Events"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  ⏎ delete  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Events))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Events[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.Marked[i] {
			mark = iconError
		}
		rows = append(rows, []string{cursor + mark, e.Title, e.Place, formatSpan(e)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "Place", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx >= len(m.Events):
				return lipgloss.NewStyle()
			case m.Marked[idx]:
				return listMarkedStyle
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 3:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d marked", m.Cursor+1, len(m.Events), len(m.SelectedIndices()))))

	return b.String()
}
