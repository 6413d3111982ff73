// ABOUTME: Commands and messages that move loader snapshots into the model
// ABOUTME: Background refreshes are applied through the controller's generation check
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/loader"
	"github.com/harperreed/roster/models"
)

type contactsMsg struct {
	snap    loader.Snapshot[[]models.Contact]
	updates <-chan loader.Snapshot[[]models.Contact]
}

type contactsErrMsg struct{ err error }

type profileMsg struct {
	snap    loader.Snapshot[models.UserInfo]
	updates <-chan loader.Snapshot[models.UserInfo]
}

type profileErrMsg struct{ err error }

type loggedOutMsg struct{ err error }

func (m Model) loadContacts() tea.Cmd {
	l := m.opts.Contacts
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		snap, updates, err := l.Load(context.Background())
		if err != nil {
			return contactsErrMsg{err: err}
		}
		return contactsMsg{snap: snap, updates: updates}
	}
}

func (m Model) reloadContacts() tea.Cmd {
	l := m.opts.Contacts
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := l.Reload(context.Background())
		if err != nil {
			return contactsErrMsg{err: err}
		}
		return contactsMsg{snap: snap}
	}
}

func (m Model) loadProfile() tea.Cmd {
	l := m.opts.Profile
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		snap, updates, err := l.Load(context.Background())
		if err != nil {
			return profileErrMsg{err: err}
		}
		return profileMsg{snap: snap, updates: updates}
	}
}

func (m Model) reloadProfile() tea.Cmd {
	l := m.opts.Profile
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := l.Reload(context.Background())
		if err != nil {
			return profileErrMsg{err: err}
		}
		return profileMsg{snap: snap}
	}
}

// waitFor delivers the background refresh of a cache hit, if any.
func waitFor[T any](updates <-chan loader.Snapshot[T], wrap func(loader.Snapshot[T]) tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return wrap(snap)
	}
}

func (m Model) applyContacts(msg contactsMsg) (tea.Model, tea.Cmd) {
	next := waitFor(msg.updates, func(s loader.Snapshot[[]models.Contact]) tea.Msg {
		return contactsMsg{snap: s}
	})

	if !m.ctrl.Replace(msg.snap.Value, msg.snap.Generation) {
		m.logger.Debug("ignoring stale contacts", "generation", msg.snap.Generation, "current", m.ctrl.Generation())
		return m, next
	}
	m.state = directory.StateReady
	m.loadErr = nil
	m.source = msg.snap.Source
	m.storedAt = msg.snap.StoredAt
	m.search.SetValue(m.ctrl.State().Query)
	m.clampSelection()
	return m, next
}

func (m Model) applyProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	next := waitFor(msg.updates, func(s loader.Snapshot[models.UserInfo]) tea.Msg {
		return profileMsg{snap: s}
	})

	if m.profile != nil && msg.snap.Generation < m.profileGen {
		return m, next
	}
	info := msg.snap.Value
	m.profile = &info
	m.profileGen = msg.snap.Generation
	m.profileFrom = msg.snap.Source
	m.profileState = directory.StateReady
	m.profileErr = nil
	return m, next
}

func (m Model) logout() tea.Cmd {
	fn := m.opts.Logout
	return func() tea.Msg {
		if fn == nil {
			return loggedOutMsg{}
		}
		return loggedOutMsg{err: fn(context.Background())}
	}
}
