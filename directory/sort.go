// ABOUTME: Sort columns, directions and the locale-aware comparator for directory rows
// ABOUTME: Uses German collation on lower-cased values; missing fields compare as ""
package directory

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/harperreed/roster/models"
)

// SortField names a sortable column.
type SortField string

const (
	SortNone     SortField = ""
	SortType     SortField = "type"
	SortName     SortField = "name"
	SortLandline SortField = "landline"
	SortMobile   SortField = "mobile"
	SortEmail    SortField = "email"
	SortTasks    SortField = "tasks"
	// SortGroupOrAddress orders groups by address and persons by their
	// membership names. Both share one column in every view.
	SortGroupOrAddress SortField = "group"
)

// SortFields lists the columns in display order.
var SortFields = []SortField{SortType, SortName, SortLandline, SortMobile, SortEmail, SortTasks, SortGroupOrAddress}

// ParseSortField accepts a column name; the empty string means unsorted.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if f == SortNone || slices.Contains(SortFields, f) {
		return f, nil
	}
	return SortNone, fmt.Errorf("invalid sort field: %s (valid: type, name, landline, mobile, email, tasks, group)", s)
}

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

func sortKey(c models.Contact, field SortField) string {
	switch field {
	case SortType:
		return string(c.Type)
	case SortName:
		return c.Name
	case SortLandline:
		return c.Landline
	case SortMobile:
		return c.Mobile
	case SortEmail:
		return c.Email
	case SortTasks:
		return c.TasksText()
	case SortGroupOrAddress:
		return c.GroupOrAddress()
	}
	return ""
}

// sortRecords stable-sorts rows in place. SortNone keeps the input order.
func sortRecords(rows []models.Contact, field SortField, dir Direction) {
	if field == SortNone {
		return
	}
	col := collate.New(language.German, collate.IgnoreCase)
	slices.SortStableFunc(rows, func(a, b models.Contact) int {
		ka := strings.ToLower(sortKey(a, field))
		kb := strings.ToLower(sortKey(b, field))
		if dir == Desc {
			return col.CompareString(kb, ka)
		}
		return col.CompareString(ka, kb)
	})
}
