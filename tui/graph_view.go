// ABOUTME: Graph and summary screens over the loaded directory
// ABOUTME: Shows DOT source for a group or the whole directory and the dashboard statistics
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/roster/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("GRAPH VIEW"))
	s.WriteString("\n\n")

	switch {
	case m.graphErr != nil:
		s.WriteString(errorStyle.Render("Graph failed: " + m.graphErr.Error()))
	case m.graphDOT == "":
		s.WriteString("Generating graph...\n")
	default:
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderDashboardView() string {
	stats := viz.GenerateDashboardStats(m.ctrl.Records(), m.storedAt)
	return viz.RenderDashboard(stats) + "\n" + m.renderGraphHelp()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.graphDOT = ""
		m.graphErr = nil
	}

	return m, nil
}

// openGraph renders the focused group, else the group under the cursor or
// the first membership of the person under the cursor, else everything.
func (m *Model) openGraph() {
	generator := viz.NewGraphGenerator(m.ctrl.Records())
	m.viewMode = ViewGraph

	id, ok := m.ctrl.Focused()
	if !ok {
		if c, found := m.selected(); found {
			switch {
			case c.IsGroup():
				id, ok = c.ID, true
			case len(c.Groups) > 0:
				id, ok = c.Groups[0].ID, true
			}
		}
	}

	if ok {
		m.graphDOT, m.graphErr = generator.GenerateGroupGraph(id)
		return
	}
	m.graphDOT, m.graphErr = generator.GenerateCompleteGraph()
}
