// ABOUTME: Pure derivation of the displayed directory from records plus view inputs
// ABOUTME: Focus short-circuits search, sort and paging; otherwise search → arrange → window
package directory

import "github.com/harperreed/roster/models"

// Query holds every input of a directory view.
type Query struct {
	Text      string
	FocusID   *int
	Sort      SortField
	Direction Direction
	Page      int
	PageSize  int
	Visible   int
	// SortFocused sorts the members of a focused group by Sort; the group
	// row stays first. Off by default: members keep the backend order.
	SortFocused bool
}

// View is the derived, display-ready result.
type View struct {
	// All is the full ordered list before windowing.
	All []models.Contact
	// Page is the Mode A window.
	Page Page
	// Visible is the Mode B window.
	Visible []models.Contact
	// Focused is set when a group focus is in effect.
	Focused bool
}

// Derive recomputes the view from scratch. It never mutates records.
func Derive(records []models.Contact, q Query) View {
	if q.FocusID != nil {
		if rows, ok := Focus(records, *q.FocusID); ok {
			if q.SortFocused {
				sortRecords(rows[1:], q.Sort, q.Direction)
			}
			return View{
				All:     rows,
				Page:    Page{Items: rows, Number: 1, TotalPages: 1, TotalItems: len(rows)},
				Visible: rows,
				Focused: true,
			}
		}
	}

	all := Arrange(Search(records, q.Text), Arrangement{
		Field:     q.Sort,
		Direction: q.Direction,
		Query:     q.Text,
		FocusID:   q.FocusID,
	})
	return View{
		All:     all,
		Page:    Paginate(all, q.PageSize, q.Page),
		Visible: VisibleSlice(all, q.Visible),
	}
}
