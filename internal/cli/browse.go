package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// ResourceRow is one entity resource shown by the browser.
type ResourceRow struct {
	Key        string
	EntityType string
	Bundle     string
	Methods    []string
}

// =============================================================================
// ResourceListModel - Interactive resource selection
// =============================================================================

// ResourceListModel is the bubbletea model for interactive resource selection.
type ResourceListModel struct {
	Rows     []ResourceRow
	Cursor   int
	Selected *ResourceRow
	Height   int
	Offset   int
	Filter   string
}

// NewResourceListModel creates a new resource list model.
func NewResourceListModel(rows []ResourceRow) ResourceListModel {
	return ResourceListModel{
		Rows:   rows,
		Height: 15,
	}
}

func (m ResourceListModel) Init() tea.Cmd {
	return nil
}

// visible returns the rows matching the current filter.
func (m ResourceListModel) visible() []ResourceRow {
	if m.Filter == "" {
		return m.Rows
	}
	var out []ResourceRow
	for _, r := range m.Rows {
		if strings.Contains(r.Key, m.Filter) {
			out = append(out, r)
		}
	}
	return out
}

func (m ResourceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m = m.move(-1)
		case tea.KeyDown:
			m = m.move(1)
		case tea.KeyEnter:
			rows := m.visible()
			if len(rows) == 0 {
				return m, nil
			}
			row := rows[m.Cursor]
			m.Selected = &row
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ResourceListModel) move(delta int) ResourceListModel {
	n := len(m.visible())
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor > n-1 {
		m.Cursor = max(n-1, 0)
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m ResourceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Resource"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show fields  type to filter  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
	}
	b.WriteString("\n")

	rows := m.visible()
	end := min(m.Offset+m.Height, len(rows))

	cells := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		bundle := r.Bundle
		if bundle == "" || bundle == r.EntityType {
			bundle = "—"
		}
		cells = append(cells, []string{cursor, r.Key, r.EntityType, bundle, strings.Join(r.Methods, " ")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Key", "Entity type", "Bundle", "Methods").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(rows)), len(rows))))

	return b.String()
}
