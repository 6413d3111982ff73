// ABOUTME: Page-based and incremental-reveal windows over an ordered row list
// ABOUTME: Pages are 1-based; reveal counts only grow until an explicit reset
package directory

import "github.com/harperreed/roster/models"

const (
	// DefaultPageSize is the number of rows per page in paged views.
	DefaultPageSize = 10
	// RevealFloor is the number of rows shown after a reset.
	RevealFloor = 10
	// RevealStep is added when the end of the list is reached.
	RevealStep = 30
	// RevealFastStep is added while scrolling quickly towards the end.
	RevealFastStep = 20
)

// Page is one window of a paged view.
type Page struct {
	Items      []models.Contact
	Number     int
	TotalPages int
	TotalItems int
}

// TotalPages returns ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (total + size - 1) / size
}

// Paginate returns page number of rows. Page numbers outside
// [1, TotalPages] yield an empty page; callers reset to page 1 whenever the
// list changes instead of relying on clamping.
func Paginate(rows []models.Contact, size, number int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := Page{
		Number:     number,
		TotalItems: len(rows),
		TotalPages: TotalPages(len(rows), size),
	}
	if number < 1 {
		return p
	}
	start := (number - 1) * size
	if start >= len(rows) {
		return p
	}
	end := min(start+size, len(rows))
	p.Items = rows[start:end]
	return p
}

// VisibleSlice returns the first count rows, clamped to the list length.
func VisibleSlice(rows []models.Contact, count int) []models.Contact {
	if count < 0 {
		count = 0
	}
	return rows[:min(count, len(rows))]
}

// Reveal tracks how many rows of an incrementally loaded list are shown.
type Reveal struct {
	Count int
	Floor int
}

// NewReveal starts at floor rows.
func NewReveal(floor int) Reveal {
	if floor <= 0 {
		floor = RevealFloor
	}
	return Reveal{Count: floor, Floor: floor}
}

// Grow adds step rows, clamped to total. It never shrinks the count and is a
// no-op once everything is visible.
func (r Reveal) Grow(step, total int) Reveal {
	if r.Count >= total || step <= 0 {
		return r
	}
	r.Count = min(r.Count+step, total)
	return r
}

// Reset snaps the count back to the floor.
func (r Reveal) Reset() Reveal {
	r.Count = r.Floor
	return r
}
