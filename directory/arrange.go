// ABOUTME: Partition-sort of directory rows: all groups first, then all persons
// ABOUTME: Folds group children into the person block when no search is narrowing the view
package directory

import (
	"slices"

	"github.com/harperreed/roster/models"
)

// Arrangement controls Arrange.
type Arrangement struct {
	Field     SortField
	Direction Direction
	// Query is the active search text. While it is non-blank, group children
	// are only shown through their own search hits.
	Query string
	// FocusID, when set, names a group whose children are always folded in.
	FocusID *int
}

func (a Arrangement) includeChildren(group models.Contact) bool {
	if a.FocusID != nil && *a.FocusID == group.ID {
		return true
	}
	return !QueryActive(a.Query)
}

// Arrange sorts rows and returns them as one flat list: the groups in sorted
// order at level 0, followed by the persons in sorted order at level 1. The
// person block holds standalone persons plus the children of every group
// for which children are included. No person id is placed twice. The input
// is not modified.
func Arrange(rows []models.Contact, a Arrangement) []models.Contact {
	sorted := slices.Clone(rows)
	sortRecords(sorted, a.Field, a.Direction)

	var groups, persons []models.Contact
	seenGroups := make(map[int]bool)
	seenPersons := make(map[int]bool)

	addPerson := func(p models.Contact) {
		if seenPersons[p.ID] {
			return
		}
		seenPersons[p.ID] = true
		persons = append(persons, p.WithLevel(1))
	}

	for _, c := range sorted {
		switch c.Type {
		case models.KindGroup:
			if seenGroups[c.ID] {
				continue
			}
			seenGroups[c.ID] = true
			groups = append(groups, c.WithLevel(0))
			if a.includeChildren(c) {
				for _, child := range c.Children {
					addPerson(child)
				}
			}
		case models.KindPerson:
			addPerson(c)
		}
	}

	sortRecords(persons, a.Field, a.Direction)
	return append(groups, persons...)
}
