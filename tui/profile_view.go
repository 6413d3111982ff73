// ABOUTME: Profile tab showing the signed-in user's employee record and memberships
// ABOUTME: Reads the cached /me payload and refreshes it on demand
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/roster/directory"
)

func (m Model) renderProfileView() string {
	var s strings.Builder

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.profile != nil:
		p := m.profile
		renderField(&s, "Name", p.DisplayName())
		renderField(&s, "Username", p.User.Username)
		renderField(&s, "Email", p.DisplayEmail())
		renderField(&s, "Occupation", p.Occupation())
		phone, mobile := p.Phones()
		renderField(&s, "Phone", phone)
		renderField(&s, "Mobile", mobile)

		if len(p.Groups) > 0 {
			s.WriteString("\n")
			s.WriteString(fieldLabelStyle.Render("Groups:"))
			s.WriteString("\n")
			for _, g := range p.Groups {
				if g.Name == nil || *g.Name == "" {
					continue
				}
				s.WriteString(fieldValueStyle.Render("  • " + *g.Name))
				s.WriteString("\n")
			}
		}
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.profileFrom.String()))
		if m.profileErr != nil {
			s.WriteString("\n")
			s.WriteString(errorStyle.Render("Refresh failed: " + m.profileErr.Error()))
		}
	case m.profileState == directory.StateLoading:
		s.WriteString("Loading profile...")
	case m.profileState == directory.StateUnauthorized:
		s.WriteString(errorStyle.Render("Not signed in or session expired. Run 'roster login'."))
	default:
		msg := "Could not load profile."
		if m.profileErr != nil {
			msg = "Could not load profile: " + m.profileErr.Error()
		}
		s.WriteString(errorStyle.Render(msg))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(strings.Join([]string{
		"1: Contacts",
		"r: Refresh",
		"L: Logout",
		"q: Quit",
	}, " • ")))

	return s.String()
}

func (m Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "tab", "esc":
		return m.selectTab(ViewList), nil
	case "r":
		return m, m.reloadProfile()
	case "L":
		m.viewMode = ViewConfirmLogout
	}
	return m, nil
}
