// ABOUTME: Logout confirmation dialog for TUI
// ABOUTME: Ends the session on confirmation, which also drops the cached directory and profile
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmLogoutView() string {
	title := warningStyle.Render("LOG OUT")

	who := "this account"
	if m.profile != nil {
		who = m.profile.DisplayName()
	}
	message := "Log out " + who + "?"
	warning := "\nCached contacts and profile are removed from this device."

	var buttons string
	if m.loggingOut {
		buttons = "Logging out..."
	} else {
		buttons = lipgloss.JoinHorizontal(
			lipgloss.Left,
			confirmButtonStyle.Render("Yes, log out (y)"),
			cancelButtonStyle.Render("Cancel (n/esc)"),
		)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		strings.TrimSpace(warning),
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmLogoutKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loggingOut {
		return m, nil
	}
	switch msg.String() {
	case "y", "Y":
		m.loggingOut = true
		return m, m.logout()
	case "n", "N", "esc", "q":
		m.viewMode = ViewList
	}

	return m, nil
}
