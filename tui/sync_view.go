// ABOUTME: TUI view for the local cache of contacts and profile
// ABOUTME: Shows age against the freshness window and allows refreshing or evicting each entry
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncServiceStyle = lipgloss.NewStyle().
				Bold(true).
				Width(12)

	syncIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncStaleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	syncSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	syncMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

const (
	cacheContacts = iota
	cacheProfile
	cacheEntries
)

// CacheEntryStatus describes one cached resource.
type CacheEntryStatus struct {
	Name     string
	Cached   bool
	StoredAt time.Time
	MaxAge   time.Duration
}

// Fresh reports whether the entry is still within its window at now.
func (e CacheEntryStatus) Fresh(now time.Time) bool {
	return e.Cached && now.Sub(e.StoredAt) <= e.MaxAge
}

func (m Model) cacheStatus() []CacheEntryStatus {
	ctx := context.Background()
	out := make([]CacheEntryStatus, 0, cacheEntries)

	contacts := CacheEntryStatus{Name: "Contacts"}
	if l := m.opts.Contacts; l != nil {
		contacts.MaxAge = l.MaxAge()
		_, contacts.StoredAt, contacts.Cached = l.Cached(ctx)
	}
	out = append(out, contacts)

	profile := CacheEntryStatus{Name: "Profile"}
	if l := m.opts.Profile; l != nil {
		profile.MaxAge = l.MaxAge()
		_, profile.StoredAt, profile.Cached = l.Cached(ctx)
	}
	out = append(out, profile)

	return out
}

func (m Model) renderCacheView() string {
	var s strings.Builder
	now := timeNow()

	s.WriteString(titleStyle.Render("Local Cache"))
	s.WriteString("\n\n")

	backend := m.opts.Backend
	if backend == "" {
		backend = "unknown"
	}
	s.WriteString(syncHeaderStyle.Render("Store: " + backend))
	s.WriteString("\n\n")

	for i, entry := range m.cacheStatus() {
		var row strings.Builder

		if i == m.selectedCache {
			row.WriteString("▶ ")
			row.WriteString(syncSelectedStyle.Render(syncServiceStyle.Render(entry.Name)))
		} else {
			row.WriteString("  ")
			row.WriteString(syncServiceStyle.Render(entry.Name))
		}

		switch {
		case !entry.Cached:
			row.WriteString(syncMessageStyle.Render("  Not cached"))
		case entry.Fresh(now):
			row.WriteString(syncIdleStyle.Render("  ✓ Fresh"))
		default:
			row.WriteString(syncStaleStyle.Render("  ⟳ Stale"))
		}
		if entry.Cached {
			row.WriteString(syncMessageStyle.Render(fmt.Sprintf(" • stored %s • window %s",
				formatTimeSince(entry.StoredAt, now), entry.MaxAge)))
		}

		s.WriteString(row.String())
		s.WriteString("\n")
	}

	s.WriteString("\n")

	if len(m.cacheMessages) > 0 {
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := 0
		if len(m.cacheMessages) > 5 {
			start = len(m.cacheMessages) - 5
		}
		for i := start; i < len(m.cacheMessages); i++ {
			s.WriteString(syncMessageStyle.Render("  " + m.cacheMessages[i]))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.renderCacheHelp())

	return s.String()
}

func (m Model) renderCacheHelp() string {
	help := []string{
		"↑/↓: Select",
		"Enter: Refresh selected",
		"x: Evict selected",
		"a: Refresh all",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleCacheKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedCache > 0 {
			m.selectedCache--
		}
	case "down", "j":
		if m.selectedCache < cacheEntries-1 {
			m.selectedCache++
		}
	case "enter":
		m.addCacheMessage(fmt.Sprintf("Refreshing %s...", m.cacheStatus()[m.selectedCache].Name))
		return m, m.refreshEntry(m.selectedCache)
	case "a":
		m.addCacheMessage("Refreshing all...")
		return m, tea.Batch(m.refreshEntry(cacheContacts), m.refreshEntry(cacheProfile))
	case "x":
		m.evictEntry(m.selectedCache)
	case "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) refreshEntry(entry int) tea.Cmd {
	if entry == cacheProfile {
		return m.reloadProfile()
	}
	return m.reloadContacts()
}

// evictEntry drops one cached resource. The loaded data stays on screen
// until the next refresh.
func (m *Model) evictEntry(entry int) {
	ctx := context.Background()
	switch entry {
	case cacheContacts:
		if m.opts.Contacts != nil {
			m.opts.Contacts.Invalidate(ctx)
		}
	case cacheProfile:
		if m.opts.Profile != nil {
			m.opts.Profile.Invalidate(ctx)
		}
	}
	m.addCacheMessage(fmt.Sprintf("Evicted %s", m.cacheStatus()[entry].Name))
}

func (m *Model) addCacheMessage(msg string) {
	timestamp := timeNow().Format("15:04:05")
	m.cacheMessages = append(m.cacheMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

// formatTimeSince formats the age of t at now in a human-readable way.
func formatTimeSince(t, now time.Time) string {
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
