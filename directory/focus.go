// ABOUTME: Group focus: one group and its full roster, looked up in the unfiltered set
// ABOUTME: Children keep their original order and are tagged level 1
package directory

import "github.com/harperreed/roster/models"

// FindGroup returns the group with id in records.
func FindGroup(records []models.Contact, id int) (models.Contact, bool) {
	for _, c := range records {
		if c.IsGroup() && c.ID == id {
			return c, true
		}
	}
	return models.Contact{}, false
}

// Focus returns the group with id at level 0 followed by all of its
// children at level 1. records must be the unfiltered set so an active
// search never hides members.
func Focus(records []models.Contact, id int) ([]models.Contact, bool) {
	group, ok := FindGroup(records, id)
	if !ok {
		return nil, false
	}
	rows := make([]models.Contact, 0, len(group.Children)+1)
	rows = append(rows, group.WithLevel(0))
	for _, child := range group.Children {
		rows = append(rows, child.WithLevel(1))
	}
	return rows, true
}
