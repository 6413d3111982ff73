// ABOUTME: Tests for the TUI model
// ABOUTME: Drives Update with key and load messages against loaders over an in-memory cache
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/loader"
	"github.com/harperreed/roster/models"
)

type staticTokens struct{}

func (staticTokens) Valid(context.Context) (string, error) { return "tok", nil }

type fakeAPI struct {
	contacts []models.Contact
	err      error
}

func (f *fakeAPI) Contacts(context.Context, string, int) ([]models.Contact, error) {
	return f.contacts, f.err
}

func (f *fakeAPI) UserInfo(context.Context, string) (*models.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserInfo{User: models.User{ID: 7, Username: "m.keller", Name: "Maria Keller"}}, nil
}

func fixture() []models.Contact {
	nord := models.GroupRef{ID: 1, Name: "Kindergarten Nord"}
	sued := models.GroupRef{ID: 2, Name: "Hort Süd"}
	return []models.Contact{
		{ID: 1, Type: models.KindGroup, Name: "Kindergarten Nord", Children: []models.Contact{
			{ID: 10, Type: models.KindPerson, Name: "Keller, Maria", Groups: []models.GroupRef{nord}},
			{ID: 11, Type: models.KindPerson, Name: "Braun, Jonas", Groups: []models.GroupRef{nord}},
		}},
		{ID: 2, Type: models.KindGroup, Name: "Hort Süd", Children: []models.Contact{
			{ID: 12, Type: models.KindPerson, Name: "Ochs, Petra", Groups: []models.GroupRef{sued}},
		}},
		{ID: 20, Type: models.KindPerson, Name: "Zimmer, Lea", Groups: []models.GroupRef{sued}},
	}
}

func newTestModel(t *testing.T, backend *fakeAPI, opts Options) Model {
	t.Helper()
	tc := cache.NewTimedCache(cache.NewMemory())
	opts.Contacts = loader.Contacts(tc, staticTokens{}, backend, models.ContactsAreaID, 10*time.Minute)
	opts.Profile = loader.UserInfo(tc, staticTokens{}, backend, 24*time.Hour)
	return NewModel(opts)
}

// loaded runs the initial contacts load through Update.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadContacts()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func rowIDs(m Model) []int {
	var ids []int
	for _, c := range m.rows() {
		ids = append(ids, c.ID)
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func TestInitialLoad(t *testing.T) {
	m := newTestModel(t, &fakeAPI{contacts: fixture()}, Options{})
	if m.state != directory.StateLoading {
		t.Fatalf("expected loading state, got %v", m.state)
	}
	if !contains(m.View(), "Loading contacts") {
		t.Error("loading view should say so")
	}

	m = loaded(t, m)
	if m.state != directory.StateReady {
		t.Fatalf("expected ready, got %v", m.state)
	}
	if got, want := rowIDs(m), []int{2, 1, 11, 10, 12, 20}; !equalIDs(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if m.source != loader.SourceNetwork {
		t.Errorf("first load should come from the network, got %v", m.source)
	}

	view := m.View()
	for _, want := range []string{"Hort Süd", "Zimmer, Lea", "Name ▲"} {
		if !contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSecondLoadServesCacheAndRefreshes(t *testing.T) {
	backend := &fakeAPI{contacts: fixture()}
	m := loaded(t, newTestModel(t, backend, Options{}))

	msg := m.loadContacts()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if m.source != loader.SourceCache {
		t.Fatalf("expected cached snapshot, got %v", m.source)
	}
	if cmd == nil {
		t.Fatal("expected a command waiting for the background refresh")
	}

	refreshed := cmd()
	next, _ = m.Update(refreshed)
	m = next.(Model)
	if m.source != loader.SourceNetwork {
		t.Errorf("refresh should replace the cached snapshot, got %v", m.source)
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, Options{})

	newer := contactsMsg{snap: loader.Snapshot[[]models.Contact]{Value: fixture(), Generation: 2}}
	older := contactsMsg{snap: loader.Snapshot[[]models.Contact]{Value: fixture()[:1], Generation: 1}}

	next, _ := m.Update(newer)
	next, _ = next.(Model).Update(older)
	m = next.(Model)

	if len(m.ctrl.Records()) != 3 {
		t.Errorf("older snapshot must not replace newer records, got %d records", len(m.ctrl.Records()))
	}
	if m.ctrl.Generation() != 2 {
		t.Errorf("generation = %d, want 2", m.ctrl.Generation())
	}
}

func TestEnterTogglesGroupFocus(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))

	m, _ = press(t, m, "enter")
	id, ok := m.ctrl.Focused()
	if !ok || id != 2 {
		t.Fatalf("expected focus on group 2, got %d %v", id, ok)
	}
	if m.search.Value() != "Hort Süd" {
		t.Errorf("search text = %q, want group name", m.search.Value())
	}
	if got, want := rowIDs(m), []int{2, 12}; !equalIDs(got, want) {
		t.Errorf("focused rows = %v, want %v", got, want)
	}

	m, _ = press(t, m, "enter")
	if _, ok := m.ctrl.Focused(); ok {
		t.Error("second enter should leave focus")
	}
	if m.search.Value() != "" {
		t.Errorf("leaving focus should clear search, got %q", m.search.Value())
	}
}

func TestEnterOnPersonOpensDetail(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))

	m, _ = press(t, m, "down", "down", "enter")
	if m.viewMode != ViewDetail {
		t.Fatalf("expected detail view, got %v", m.viewMode)
	}
	if m.detail == nil || m.detail.ID != 11 {
		t.Fatalf("expected detail of person 11, got %+v", m.detail)
	}
	if !contains(m.View(), "Kindergarten Nord") {
		t.Error("detail view should list memberships")
	}

	m, _ = press(t, m, "1")
	if m.viewMode != ViewList {
		t.Fatalf("membership link should return to the list, got %v", m.viewMode)
	}
	if id, ok := m.ctrl.Focused(); !ok || id != 1 {
		t.Errorf("expected focus on group 1, got %d %v", id, ok)
	}
}

func TestSearchTypingDropsFocus(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))
	m, _ = press(t, m, "enter")

	m, _ = press(t, m, "/")
	if !m.searching {
		t.Fatal("slash should start searching")
	}
	m, _ = press(t, m, "x")
	if _, ok := m.ctrl.Focused(); ok {
		t.Error("editing the search text must leave focus")
	}
	if q := m.ctrl.State().Query; q != "Hort Südx" {
		t.Errorf("query = %q", q)
	}

	m, _ = press(t, m, "esc")
	if m.searching {
		t.Error("esc should stop searching")
	}
	m, _ = press(t, m, "esc")
	if m.ctrl.State().Query != "" {
		t.Error("esc outside the search field should clear the query")
	}
}

func TestSearchFlattensMatches(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))

	m, _ = press(t, m, "/", "z", "i", "m")
	if got, want := rowIDs(m), []int{20}; !equalIDs(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if m.rows()[0].Level != 1 {
		t.Error("matching persons are shown indented")
	}
	if m, _ = press(t, m, "q"); m.ctrl.State().Query != "zimq" {
		t.Error("q while searching is text, not quit")
	}
}

func TestSortKeys(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))

	m, _ = press(t, m, "o")
	if st := m.ctrl.State(); st.Sort != directory.SortName || st.Direction != directory.Desc {
		t.Fatalf("o should flip direction, got %s %s", st.Sort, st.Direction)
	}
	if got, want := rowIDs(m), []int{1, 2, 20, 12, 10, 11}; !equalIDs(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}

	m, _ = press(t, m, "s")
	if st := m.ctrl.State(); st.Sort != directory.SortLandline || st.Direction != directory.Asc {
		t.Errorf("s should move to the next column ascending, got %s %s", st.Sort, st.Direction)
	}
}

func TestPagingKeys(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{PageSize: 4}))

	if got := len(m.rows()); got != 4 {
		t.Fatalf("page 1 has %d rows, want 4", got)
	}
	m, _ = press(t, m, "right")
	if m.ctrl.State().Page != 2 {
		t.Fatalf("page = %d, want 2", m.ctrl.State().Page)
	}
	if got, want := rowIDs(m), []int{12, 20}; !equalIDs(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	m, _ = press(t, m, "right")
	if m.ctrl.State().Page != 2 {
		t.Error("paging past the last page is clamped")
	}
	if !contains(m.View(), "2/2") {
		t.Error("pager should show 2/2")
	}
}

func TestScrollRevealsMore(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{Scroll: true, RevealFloor: 2}))

	if got := len(m.rows()); got != 2 {
		t.Fatalf("initially %d rows, want 2", got)
	}
	m, _ = press(t, m, "down")
	if got := len(m.rows()); got != 2 {
		t.Fatalf("moving within the window must not reveal, got %d rows", got)
	}
	m, _ = press(t, m, "down")
	if got := len(m.rows()); got != 6 {
		t.Fatalf("reaching the end reveals the rest, got %d rows", got)
	}
	if m.selectedRow != 2 {
		t.Errorf("selected row = %d, want 2", m.selectedRow)
	}
	if !contains(m.View(), "showing 6 of 6") {
		t.Error("scroll mode shows the reveal count")
	}

	m, _ = press(t, m, "/", "o")
	if got := len(m.rows()); got > 2 {
		t.Errorf("a query change resets the window, got %d rows", got)
	}
}

func TestReselectContactsTabResets(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))
	m, _ = press(t, m, "enter", "2")
	if m.viewMode != ViewProfile {
		t.Fatalf("expected profile tab, got %v", m.viewMode)
	}
	m, _ = press(t, m, "1")
	if _, ok := m.ctrl.Focused(); !ok {
		t.Error("switching back keeps the focus")
	}
	m, _ = press(t, m, "1")
	if _, ok := m.ctrl.Focused(); ok {
		t.Error("reselecting the contacts tab clears focus")
	}
}

func TestPermissionDenied(t *testing.T) {
	m := newTestModel(t, &fakeAPI{err: api.ErrForbidden}, Options{})
	m = loaded(t, m)

	if m.state != directory.StatePermissionDenied {
		t.Fatalf("expected permission denied, got %v", m.state)
	}
	if !contains(m.View(), "do not have access") {
		t.Error("view should explain the missing permission")
	}
}

func TestRefreshFailureKeepsRows(t *testing.T) {
	backend := &fakeAPI{contacts: fixture()}
	m := loaded(t, newTestModel(t, backend, Options{}))

	backend.err = errors.New("boom")
	next, _ := m.Update(m.reloadContacts()())
	m = next.(Model)

	if len(m.rows()) == 0 {
		t.Fatal("rows must survive a failed reload")
	}
	if !contains(m.View(), "Refresh failed") {
		t.Error("failed reload should be reported")
	}
}

func TestProfileTab(t *testing.T) {
	m := newTestModel(t, &fakeAPI{}, Options{})
	next, _ := m.Update(m.loadProfile()())
	m = next.(Model)
	m, _ = press(t, m, "2")

	view := m.View()
	if !contains(view, "Maria Keller") || !contains(view, "m.keller") {
		t.Errorf("profile view missing user, got:\n%s", view)
	}
}

func TestLogoutConfirmation(t *testing.T) {
	called := false
	m := newTestModel(t, &fakeAPI{contacts: fixture()}, Options{
		Logout: func(context.Context) error {
			called = true
			return nil
		},
	})
	m = loaded(t, m)

	m, _ = press(t, m, "L")
	if m.viewMode != ViewConfirmLogout {
		t.Fatalf("expected confirmation, got %v", m.viewMode)
	}
	m, _ = press(t, m, "n")
	if m.viewMode != ViewList || called {
		t.Fatal("n cancels")
	}

	m, cmd := press(t, m, "L", "y")
	if cmd == nil {
		t.Fatal("y should start the logout")
	}
	next, quit := m.Update(cmd())
	m = next.(Model)
	if !called || !m.LoggedOut() {
		t.Error("logout should run and be recorded")
	}
	if quit == nil {
		t.Error("logout quits the program")
	}
}

func TestCacheViewEvict(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{Backend: "sqlite"}))

	m, _ = press(t, m, "c")
	if m.viewMode != ViewCache {
		t.Fatalf("expected cache view, got %v", m.viewMode)
	}
	if !m.cacheStatus()[cacheContacts].Cached {
		t.Fatal("contacts should be cached after loading")
	}
	if !contains(m.View(), "sqlite") {
		t.Error("cache view names the store")
	}

	m, _ = press(t, m, "x")
	if m.cacheStatus()[cacheContacts].Cached {
		t.Error("x evicts the selected entry")
	}
	if len(m.rows()) == 0 {
		t.Error("evicting keeps the loaded rows on screen")
	}
}

func TestGraphView(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeAPI{contacts: fixture()}, Options{}))

	m, _ = press(t, m, "v")
	if m.viewMode != ViewGraph {
		t.Fatalf("expected graph view, got %v", m.viewMode)
	}
	if m.graphErr != nil {
		t.Fatalf("graph failed: %v", m.graphErr)
	}
	if !contains(m.graphDOT, "g_2") || !contains(m.graphDOT, "p_12") {
		t.Error("graph of the selected group shows it and its members")
	}

	m, _ = press(t, m, "esc", "i")
	if !contains(m.View(), "ROSTER DIRECTORY") {
		t.Error("summary view shows the dashboard")
	}
}

func TestFormatTimeSince(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	cases := map[time.Duration]string{
		30 * time.Second: "just now",
		time.Minute:      "1 minute ago",
		5 * time.Minute:  "5 minutes ago",
		2 * time.Hour:    "2 hours ago",
		48 * time.Hour:   "2 days ago",
	}
	for age, want := range cases {
		if got := formatTimeSince(now.Add(-age), now); got != want {
			t.Errorf("formatTimeSince(%s) = %q, want %q", age, got, want)
		}
	}
}
