// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Contacts and profile tabs driven by the directory controller and the cached loaders
package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/loader"
	"github.com/harperreed/roster/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewProfile
	ViewGraph
	ViewDashboard
	ViewCache
	ViewConfirmLogout
)

// Options wires the model to its data.
type Options struct {
	Contacts *loader.Loader[[]models.Contact]
	Profile  *loader.Loader[models.UserInfo]
	// Logout ends the session on the server and locally.
	Logout func(ctx context.Context) error
	// Backend names the cache store shown on the cache screen.
	Backend string

	PageSize    int
	RevealFloor int
	// Scroll selects incremental reveal instead of pages.
	Scroll bool
	// SortFocused sorts the members of a focused group.
	SortFocused bool

	Logger *log.Logger
}

// Model is the main bubbletea model
type Model struct {
	opts     Options
	ctrl     *directory.Controller
	viewMode ViewMode
	logger   *log.Logger

	// Contacts tab
	state       directory.LoadState
	loadErr     error
	source      loader.Source
	storedAt    time.Time
	search      textinput.Model
	searching   bool
	selectedRow int
	pager       paginator.Model
	detail      *models.Contact

	// Profile tab
	profile      *models.UserInfo
	profileState directory.LoadState
	profileErr   error
	profileGen   uint64
	profileFrom  loader.Source

	// Graph and dashboard
	graphDOT string
	graphErr error

	// Cache screen
	selectedCache int
	cacheMessages []string

	// Logout
	loggingOut bool
	loggedOut  bool
	logoutErr  error

	// UI state
	width  int
	height int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	ctrlOpts := []directory.ControllerOption{}
	if opts.PageSize > 0 {
		ctrlOpts = append(ctrlOpts, directory.WithPageSize(opts.PageSize))
	}
	if opts.RevealFloor > 0 {
		ctrlOpts = append(ctrlOpts, directory.WithRevealFloor(opts.RevealFloor))
	}
	if opts.SortFocused {
		ctrlOpts = append(ctrlOpts, directory.WithSortedFocus())
	}
	ctrl := directory.NewController(ctrlOpts...)

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	search := textinput.New()
	search.Placeholder = "Search name, phone, email, task, group..."
	search.Prompt = "/ "
	search.CharLimit = 120

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.PerPage = ctrl.PageSize()

	return Model{
		opts:         opts,
		ctrl:         ctrl,
		viewMode:     ViewList,
		logger:       logger,
		state:        directory.StateLoading,
		profileState: directory.StateLoading,
		search:       search,
		pager:        pager,
		width:        80,
		height:       24,
	}
}

// Controller exposes the directory state, mainly for tests.
func (m Model) Controller() *directory.Controller { return m.ctrl }

// LoggedOut reports whether the session ended from within the TUI.
func (m Model) LoggedOut() bool { return m.loggedOut }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadContacts(), m.loadProfile())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case contactsMsg:
		return m.applyContacts(msg)

	case contactsErrMsg:
		m.state = loader.StateOf(msg.err)
		m.loadErr = msg.err
		m.logger.Debug("contacts load failed", "state", m.state, "err", msg.err)
		return m, nil

	case profileMsg:
		return m.applyProfile(msg)

	case profileErrMsg:
		m.profileState = loader.StateOf(msg.err)
		m.profileErr = msg.err
		return m, nil

	case loggedOutMsg:
		m.loggingOut = false
		m.logoutErr = msg.err
		m.loggedOut = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.searching {
		return m.handleSearchKeys(msg)
	}

	if msg.String() == "q" && m.viewMode != ViewConfirmLogout {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewProfile:
		return m.handleProfileKeys(msg)
	case ViewGraph, ViewDashboard:
		return m.handleGraphKeys(msg)
	case ViewCache:
		return m.handleCacheKeys(msg)
	case ViewConfirmLogout:
		return m.handleConfirmLogoutKeys(msg)
	}

	return m, nil
}

// selectTab switches between the two tabs. Reselecting the contacts tab
// returns it to its initial browsing state.
func (m Model) selectTab(mode ViewMode) Model {
	if mode == ViewList && m.viewMode == ViewList {
		m.ctrl.Reset()
		m.search.SetValue("")
		m.selectedRow = 0
	}
	m.viewMode = mode
	return m
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewProfile:
		return m.renderProfileView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewDashboard:
		return m.renderDashboardView()
	case ViewCache:
		return m.renderCacheView()
	case ViewConfirmLogout:
		return m.renderConfirmLogoutView()
	}
	return ""
}

func (m Model) renderTabs() string {
	contacts, profile := tabInactiveStyle, tabInactiveStyle
	if m.viewMode == ViewProfile {
		profile = tabActiveStyle
	} else {
		contacts = tabActiveStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		contacts.Render("1 Contacts"),
		profile.Render("2 Profile"),
	)
}

var timeNow = time.Now

func describeAge(source loader.Source, storedAt time.Time, now time.Time) string {
	if storedAt.IsZero() {
		return source.String()
	}
	age := now.Sub(storedAt).Round(time.Second)
	if age < time.Second {
		return source.String() + ", just now"
	}
	return source.String() + ", " + age.String() + " old"
}
