// ABOUTME: Contacts table with search, sort, group focus and paging or incremental reveal
// ABOUTME: Every key maps onto one directory controller transition
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/models"
)

var columnTitles = map[directory.SortField]string{
	directory.SortType:           "Type",
	directory.SortName:           "Name",
	directory.SortLandline:       "Landline",
	directory.SortMobile:         "Mobile",
	directory.SortEmail:          "Email",
	directory.SortTasks:          "Tasks",
	directory.SortGroupOrAddress: "Group / Address",
}

var columnWidths = map[directory.SortField]int{
	directory.SortType:           6,
	directory.SortName:           26,
	directory.SortLandline:       16,
	directory.SortMobile:         16,
	directory.SortEmail:          26,
	directory.SortTasks:          20,
	directory.SortGroupOrAddress: 28,
}

// rows returns the rows currently on screen.
func (m Model) rows() []models.Contact {
	view := m.ctrl.View()
	if m.opts.Scroll {
		return view.Visible
	}
	return view.Page.Items
}

func (m *Model) clampSelection() {
	n := len(m.rows())
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) selected() (models.Contact, bool) {
	rows := m.rows()
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return models.Contact{}, false
	}
	return rows[m.selectedRow], true
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if !m.ctrl.Loaded() {
		s.WriteString(m.renderLoadState())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("r: Retry • q: Quit"))
		return s.String()
	}

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}
	s.WriteString(statusStyle.Render(m.renderStatus()))
	s.WriteString("\n")
	if m.loadErr != nil {
		s.WriteString(errorStyle.Render("Refresh failed: " + m.renderLoadState()))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		s.WriteString("No contacts match.\n")
	} else {
		s.WriteString(m.renderTable(rows))
		s.WriteString("\n")
	}

	s.WriteString(m.renderWindow())
	s.WriteString("\n\n")
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderLoadState() string {
	switch m.state {
	case directory.StateLoading:
		return "Loading contacts..."
	case directory.StatePermissionDenied:
		return errorStyle.Render("You do not have access to the contact directory.")
	case directory.StateUnauthorized:
		return errorStyle.Render("Not signed in or session expired. Run 'roster login'.")
	case directory.StateFailed:
		if m.loadErr != nil {
			return errorStyle.Render(fmt.Sprintf("Could not load contacts: %v", m.loadErr))
		}
		return errorStyle.Render("Could not load contacts.")
	}
	return ""
}

func (m Model) renderStatus() string {
	st := m.ctrl.State()
	parts := []string{
		fmt.Sprintf("%d contacts", len(m.ctrl.View().All)),
		fmt.Sprintf("sort: %s %s", sortLabel(st.Sort), st.Direction),
	}
	if id, ok := m.ctrl.Focused(); ok {
		if g, found := directory.FindGroup(m.ctrl.Records(), id); found {
			parts = append(parts, "group: "+g.Name)
		}
	}
	parts = append(parts, describeAge(m.source, m.storedAt, timeNow()))
	return strings.Join(parts, " • ")
}

func sortLabel(f directory.SortField) string {
	if f == directory.SortNone {
		return "none"
	}
	return string(f)
}

func (m Model) renderTable(rows []models.Contact) string {
	st := m.ctrl.State()

	columns := make([]table.Column, 0, len(directory.SortFields))
	for _, f := range directory.SortFields {
		title := columnTitles[f]
		if f == st.Sort {
			if st.Direction == directory.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		columns = append(columns, table.Column{Title: title, Width: columnWidths[f]})
	}

	tableRows := make([]table.Row, 0, len(rows))
	for _, c := range rows {
		tableRows = append(tableRows, contactRow(c))
	}

	height := m.height - 10
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetCursor(m.selectedRow)

	return t.View()
}

func contactRow(c models.Contact) table.Row {
	kind := "Person"
	if c.IsGroup() {
		kind = "Group"
	}
	name := c.Name
	if c.Level > 0 {
		name = "  " + name
	}
	return table.Row{
		kind,
		name,
		c.Landline,
		c.Mobile,
		c.Email,
		c.TasksText(),
		c.GroupOrAddress(),
	}
}

// renderWindow shows the pager in page mode and the reveal count in scroll mode.
func (m Model) renderWindow() string {
	view := m.ctrl.View()
	if m.opts.Scroll {
		return statusStyle.Render(fmt.Sprintf("showing %d of %d", len(view.Visible), len(view.All)))
	}
	p := m.pager
	p.SetTotalPages(view.Page.TotalItems)
	if view.Focused {
		p.TotalPages = 1
	}
	p.Page = view.Page.Number - 1
	return statusStyle.Render("page " + p.View())
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"/: Search",
		"Enter: Open",
		"s: Sort column",
		"o: Order",
	}
	if m.opts.Scroll {
		help = append(help, "PgDn: More")
	} else {
		help = append(help, "←/→: Page")
	}
	help = append(help,
		"g: Go to group",
		"v: Graph",
		"i: Summary",
		"c: Cache",
		"r: Refresh",
		"L: Logout",
		"q: Quit",
	)
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		return m.selectTab(ViewList), nil
	case "2", "tab":
		return m.selectTab(ViewProfile), nil
	case "r":
		if !m.ctrl.Loaded() {
			m.state = directory.StateLoading
			return m, m.loadContacts()
		}
		return m, m.reloadContacts()
	}

	if !m.ctrl.Loaded() {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		m.moveDown(1, directory.RevealStep)
	case "pgdown", "ctrl+d":
		if m.opts.Scroll {
			m.moveDown(10, directory.RevealFastStep)
		} else {
			m.ctrl.NextPage()
			m.selectedRow = 0
		}
	case "pgup", "ctrl+u":
		if m.opts.Scroll {
			m.selectedRow -= 10
			m.clampSelection()
		} else {
			m.ctrl.PrevPage()
			m.selectedRow = 0
		}
	case "right", "l", "n":
		if !m.opts.Scroll {
			m.ctrl.NextPage()
			m.selectedRow = 0
		}
	case "left", "h", "p":
		if !m.opts.Scroll {
			m.ctrl.PrevPage()
			m.selectedRow = 0
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.ctrl.ClearQuery()
			m.search.SetValue("")
			m.selectedRow = 0
		}
	case "enter":
		c, ok := m.selected()
		if !ok {
			break
		}
		if c.IsGroup() {
			m.ctrl.ToggleGroup(c.ID)
			m.search.SetValue(m.ctrl.State().Query)
			m.selectedRow = 0
			break
		}
		m.detail = &c
		m.viewMode = ViewDetail
	case "g":
		if c, ok := m.selected(); ok {
			m.focusMembership(c)
		}
	case "s":
		m.ctrl.SortBy(nextSortField(m.ctrl.State().Sort))
		m.selectedRow = 0
	case "o":
		m.ctrl.SortBy(m.ctrl.State().Sort)
		m.selectedRow = 0
	case "v":
		m.openGraph()
	case "i":
		m.viewMode = ViewDashboard
	case "c":
		m.viewMode = ViewCache
	case "L":
		m.viewMode = ViewConfirmLogout
	}

	return m, nil
}

// moveDown advances the selection. In scroll mode reaching the last visible
// row reveals step more rows.
func (m *Model) moveDown(n, step int) {
	if m.opts.Scroll && m.selectedRow+n >= len(m.rows()) {
		m.ctrl.RevealMore(step)
	}
	m.selectedRow += n
	m.clampSelection()
}

// focusMembership focuses the group a row belongs to: the row itself for a
// group, the first membership for a person.
func (m *Model) focusMembership(c models.Contact) {
	id := c.ID
	if c.IsPerson() {
		if len(c.Groups) == 0 {
			return
		}
		id = c.Groups[0].ID
	}
	if m.ctrl.FocusGroup(id) {
		m.search.SetValue(m.ctrl.State().Query)
		m.selectedRow = 0
		m.viewMode = ViewList
	}
}

func nextSortField(current directory.SortField) directory.SortField {
	for i, f := range directory.SortFields {
		if f == current {
			return directory.SortFields[(i+1)%len(directory.SortFields)]
		}
	}
	return directory.SortFields[0]
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "down":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.ctrl.SetQuery(after)
		m.selectedRow = 0
	}
	return m, cmd
}
