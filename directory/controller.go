// ABOUTME: Mutable directory screen state and its transitions
// ABOUTME: Couples the search text and group focus: clearing text drops focus, focusing overwrites text
package directory

import "github.com/harperreed/roster/models"

// State is the complete mutable state of a directory screen.
type State struct {
	Query     string
	FocusID   *int
	Sort      SortField
	Direction Direction
	Page      int
	Reveal    Reveal
}

// Controller owns the loaded records and the screen state. Every transition
// resets whatever windowing state it invalidates; View recomputes the list.
// A Controller is not safe for concurrent use; drive it from one goroutine.
type Controller struct {
	records    []models.Contact
	generation uint64
	loaded     bool
	state      State
	pageSize   int
	sortFocus  bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithPageSize sets the Mode A page size.
func WithPageSize(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRevealFloor sets the Mode B initial row count.
func WithRevealFloor(n int) ControllerOption {
	return func(c *Controller) { c.state.Reveal = NewReveal(n) }
}

// WithSortedFocus sorts the members of a focused group.
func WithSortedFocus() ControllerOption {
	return func(c *Controller) { c.sortFocus = true }
}

// NewController starts sorted by name ascending on page 1.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		pageSize: DefaultPageSize,
		state: State{
			Sort:      SortName,
			Direction: Asc,
			Page:      1,
			Reveal:    NewReveal(RevealFloor),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Replace swaps in a new record set loaded under generation. Sets from a
// generation older than the current one are ignored and Replace reports
// false. A replacement keeps query, sort and focus; the focus is dropped if
// the group no longer exists.
func (c *Controller) Replace(records []models.Contact, generation uint64) bool {
	if c.loaded && generation < c.generation {
		return false
	}
	c.records = records
	c.generation = generation
	c.loaded = true
	if c.state.FocusID != nil {
		if _, ok := FindGroup(records, *c.state.FocusID); !ok {
			c.state.FocusID = nil
		}
	}
	return true
}

// Records returns the current unfiltered record set.
func (c *Controller) Records() []models.Contact { return c.records }

// Generation returns the generation of the current record set.
func (c *Controller) Generation() uint64 { return c.generation }

// Loaded reports whether any record set has been applied.
func (c *Controller) Loaded() bool { return c.loaded }

// State returns a copy of the screen state.
func (c *Controller) State() State { return c.state }

// PageSize returns the Mode A page size.
func (c *Controller) PageSize() int { return c.pageSize }

// Query returns the view inputs for the current state.
func (c *Controller) Query() Query {
	return Query{
		Text:        c.state.Query,
		FocusID:     c.state.FocusID,
		Sort:        c.state.Sort,
		Direction:   c.state.Direction,
		Page:        c.state.Page,
		PageSize:    c.pageSize,
		Visible:     c.state.Reveal.Count,
		SortFocused: c.sortFocus,
	}
}

// View derives the displayed rows.
func (c *Controller) View() View {
	return Derive(c.records, c.Query())
}

func (c *Controller) resetWindows() {
	c.state.Page = 1
	c.state.Reveal = c.state.Reveal.Reset()
}

// SetQuery replaces the search text. Editing the text always leaves group
// focus.
func (c *Controller) SetQuery(text string) {
	c.state.Query = text
	c.state.FocusID = nil
	c.resetWindows()
}

// ClearQuery empties the search text and drops group focus.
func (c *Controller) ClearQuery() {
	c.SetQuery("")
}

// ToggleGroup focuses group id, or leaves focus if id is already focused.
// Entering focus writes the group name into the search text; leaving it
// clears the text. It reports whether a focus is active afterwards.
func (c *Controller) ToggleGroup(id int) bool {
	if c.state.FocusID != nil && *c.state.FocusID == id {
		c.ClearQuery()
		return false
	}
	return c.FocusGroup(id)
}

// FocusGroup focuses group id. Focusing the already focused group is a
// no-op. Unknown ids leave the state untouched and report false.
func (c *Controller) FocusGroup(id int) bool {
	if c.state.FocusID != nil && *c.state.FocusID == id {
		return true
	}
	group, ok := FindGroup(c.records, id)
	if !ok {
		return false
	}
	focus := id
	c.state.FocusID = &focus
	c.state.Query = group.Name
	c.resetWindows()
	return true
}

// Focused returns the focused group id.
func (c *Controller) Focused() (int, bool) {
	if c.state.FocusID == nil {
		return 0, false
	}
	return *c.state.FocusID, true
}

// SortBy sorts by field. Choosing the current field flips the direction; a
// new field starts ascending.
func (c *Controller) SortBy(field SortField) {
	if c.state.Sort == field {
		c.state.Direction = c.state.Direction.Flip()
	} else {
		c.state.Sort = field
		c.state.Direction = Asc
	}
	c.resetWindows()
}

// SetSort sets field and direction explicitly.
func (c *Controller) SetSort(field SortField, dir Direction) {
	c.state.Sort = field
	c.state.Direction = dir
	c.resetWindows()
}

// GoToPage selects page n, clamped to the pages of the current view.
func (c *Controller) GoToPage(n int) {
	total := c.View().Page.TotalPages
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	c.state.Page = n
}

// NextPage moves one page forward if there is one.
func (c *Controller) NextPage() { c.GoToPage(c.state.Page + 1) }

// PrevPage moves one page back if there is one.
func (c *Controller) PrevPage() { c.GoToPage(c.state.Page - 1) }

// RevealMore grows the Mode B window by step rows. Focused views are
// already complete and never grow.
func (c *Controller) RevealMore(step int) {
	if c.state.FocusID != nil {
		return
	}
	total := len(c.View().All)
	c.state.Reveal = c.state.Reveal.Grow(step, total)
}

// Reset returns to the initial browsing state: no query, no focus, first
// page, reveal floor. Sort is kept.
func (c *Controller) Reset() {
	c.ClearQuery()
}
