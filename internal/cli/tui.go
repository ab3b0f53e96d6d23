package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patchbaylabs/patchbay/pkg/store"
)

// List styles
var (
	listSelectedStyle = StyleHighlight.Bold(true)
	listNormalStyle   = StyleValue
	listDimStyle      = StyleDim
)

// docListModel is the bubbletea model for interactive document
// selection over a store listing.
type docListModel struct {
	docs     []store.Info
	cursor   int
	selected string
	height   int
	offset   int
}

func newDocListModel(docs []store.Info) docListModel {
	return docListModel{docs: docs, height: 15}
}

func (m docListModel) Init() tea.Cmd {
	return nil
}

func (m docListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.docs)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.selected = m.docs[m.cursor].ID
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m docListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Document"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.docs) {
		end = len(m.docs)
	}

	for i := m.offset; i < end; i++ {
		d := m.docs[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		name := d.Name
		if name == "" {
			name = d.ID
		}
		line := fmt.Sprintf("%s%s", cursor, style.Render(name))
		detail := fmt.Sprintf("%d nodes · %d connections · %s",
			d.Nodes, d.Connections, d.UpdatedAt.Format("2006-01-02 15:04"))
		b.WriteString(line)
		b.WriteString("  ")
		b.WriteString(listDimStyle.Render(detail))
		b.WriteString("\n")
	}

	return b.String()
}

// pickDocument runs the picker and returns the chosen document ID.
// An empty ID with a nil error means the user quit without choosing.
func pickDocument(docs []store.Info) (string, error) {
	final, err := tea.NewProgram(newDocListModel(docs)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(docListModel); ok {
		return m.selected, nil
	}
	return "", nil
}
