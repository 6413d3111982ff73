// ABOUTME: Interactive terminal UI subcommand
// ABOUTME: Runs the bubbletea directory browser over the configured cache and backend
package cli

import (
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/roster/tui"
)

// TUICommand starts the full-screen browser.
func TUICommand(app *App, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	scroll := fs.Bool("scroll", false, "Reveal rows while scrolling instead of paging")
	sortedFocus := fs.Bool("sort-members", false, "Sort the members of a focused group")
	_ = fs.Parse(args)

	model := tui.NewModel(tui.Options{
		Contacts:    app.Contacts,
		Profile:     app.UserInfo,
		Logout:      app.Logout,
		Backend:     app.Config.Backend,
		PageSize:    app.Config.PageSize,
		RevealFloor: app.Config.RevealFloor,
		Scroll:      *scroll,
		SortFocused: *sortedFocus,
		Logger:      app.Logger,
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.LoggedOut() {
		_, _ = fmt.Fprintln(app.Out, "✓ Logged out")
	}
	return nil
}
