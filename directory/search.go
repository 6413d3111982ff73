// ABOUTME: Free-text search over the two-level group/person directory
// ABOUTME: Matching groups keep their children; matching persons are flattened to level 1
package directory

import (
	"slices"
	"strings"

	"github.com/harperreed/roster/models"
)

// normalizeQuery lower-cases and trims the query once per pass.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// QueryActive reports whether q filters anything.
func QueryActive(q string) bool {
	return normalizeQuery(q) != ""
}

func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}

func anyContains(values []string, q string) bool {
	return slices.ContainsFunc(values, func(v string) bool { return contains(v, q) })
}

func groupMatches(c models.Contact, q string) bool {
	return contains(c.Name, q) ||
		contains(c.Landline, q) ||
		contains(c.Mobile, q) ||
		contains(c.Email, q) ||
		anyContains(c.Tasks, q) ||
		contains(c.Address, q)
}

func personMatches(c models.Contact, q string) bool {
	if contains(c.Name, q) ||
		contains(c.Landline, q) ||
		contains(c.Mobile, q) ||
		contains(c.Email, q) ||
		anyContains(c.Tasks, q) {
		return true
	}
	return slices.ContainsFunc(c.Groups, func(g models.GroupRef) bool { return contains(g.Name, q) })
}

// Search returns the records matching query. A blank query returns records
// as given. Otherwise every group and every person (nested or standalone) is
// tested on its own; a field hit on any column qualifies the record.
// Matching groups are emitted at level 0 with their children attached,
// matching persons at level 1. Each group id and each person id is emitted
// at most once, first occurrence wins.
func Search(records []models.Contact, query string) []models.Contact {
	q := normalizeQuery(query)
	if q == "" {
		return records
	}

	var results []models.Contact
	seenGroups := make(map[int]bool)
	seenPersons := make(map[int]bool)

	addPerson := func(p models.Contact) {
		if seenPersons[p.ID] || !personMatches(p, q) {
			return
		}
		seenPersons[p.ID] = true
		results = append(results, p.WithLevel(1))
	}

	for _, c := range records {
		switch c.Type {
		case models.KindGroup:
			if !seenGroups[c.ID] && groupMatches(c, q) {
				seenGroups[c.ID] = true
				results = append(results, c.WithLevel(0))
			}
			for _, child := range c.Children {
				addPerson(child)
			}
		case models.KindPerson:
			addPerson(c)
		}
	}
	return results
}
