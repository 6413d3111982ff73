// ABOUTME: Detail view of a single person with links to the groups it belongs to
// ABOUTME: Following a membership focuses that group in the contacts table
package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/roster/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	if m.detail == nil {
		s.WriteString("Nothing selected.\n")
	} else {
		s.WriteString(renderContactDetail(*m.detail))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func renderField(s *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	s.WriteString(fieldLabelStyle.Render(label + ":"))
	s.WriteString(fieldValueStyle.Render(value))
	s.WriteString("\n")
}

func renderContactDetail(c models.Contact) string {
	var s strings.Builder

	renderField(&s, "Name", c.Name)
	renderField(&s, "Landline", c.Landline)
	renderField(&s, "Mobile", c.Mobile)
	renderField(&s, "Email", c.Email)
	renderField(&s, "Tasks", c.TasksText())
	renderField(&s, "Address", c.Address)
	renderField(&s, "Fax", c.Fax)

	if len(c.Groups) > 0 {
		s.WriteString("\n")
		s.WriteString(fieldLabelStyle.Render("Groups:"))
		s.WriteString("\n")
		for i, g := range c.Groups {
			s.WriteString(fieldValueStyle.Render("  " + strconv.Itoa(i+1) + ". " + g.Name))
			s.WriteString("\n")
		}
	}

	return s.String()
}

func (m Model) renderDetailHelp() string {
	help := []string{"Esc: Back"}
	if m.detail != nil && len(m.detail.Groups) > 0 {
		help = append(help, "g / 1-9: Show group")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.detail = nil
		return m, nil
	case "g":
		if m.detail != nil {
			m.focusMembership(*m.detail)
		}
		return m, nil
	}

	// Number keys pick a specific membership.
	if n, err := strconv.Atoi(key); err == nil && m.detail != nil && n >= 1 && n <= len(m.detail.Groups) {
		if m.ctrl.FocusGroup(m.detail.Groups[n-1].ID) {
			m.search.SetValue(m.ctrl.State().Query)
			m.selectedRow = 0
			m.viewMode = ViewList
		}
	}

	return m, nil
}
