package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tally/pkg/composition"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// RecordListModel is the bubbletea model for interactive record selection.
type RecordListModel struct {
	Paths    []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewRecordListModel creates a new record list model.
func NewRecordListModel(paths []string) RecordListModel {
	return RecordListModel{
		Paths:  paths,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m RecordListModel) Init() tea.Cmd {
	return nil
}

func (m RecordListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Paths)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Paths[m.Cursor]
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

func (m RecordListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Record"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Paths) {
		end = len(m.Paths)
	}

	for i := m.Offset; i < end; i++ {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := cursor + style.Render(m.Paths[i])
		if printed := recordPreview(m.Paths[i]); printed != "" {
			line += "  " + listDimStyle.Render(printed)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// recordPreview returns the printed form of a record file, truncated for
// list display. Unreadable files return "".
func recordPreview(path string) string {
	c, err := composition.ReadFile(path)
	if err != nil {
		return ""
	}
	printed := c.String()
	if len(printed) > 40 {
		printed = printed[:37] + "..."
	}
	return printed
}
