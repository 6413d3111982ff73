// ABOUTME: Terminal summary of a loaded directory
// ABOUTME: Counts groups and persons and draws a bar chart of the largest groups
package viz

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/roster/models"
)

// DashboardStats summarises one record set.
type DashboardStats struct {
	TotalGroups  int
	TotalPersons int
	// Unassigned counts persons that belong to no group.
	Unassigned int
	// NoPhone counts persons with neither landline nor mobile.
	NoPhone int

	LargestGroups []GroupSize

	CachedAt time.Time
}

// GroupSize is the member count of one group.
type GroupSize struct {
	Name    string
	Members int
}

const largestGroupsShown = 5

// GenerateDashboardStats counts groups, distinct persons and member sizes.
func GenerateDashboardStats(records []models.Contact, cachedAt time.Time) *DashboardStats {
	stats := &DashboardStats{CachedAt: cachedAt}
	persons := make(map[int]models.Contact)
	inGroup := make(map[int]bool)
	seenGroups := make(map[int]bool)

	for _, c := range records {
		switch c.Type {
		case models.KindGroup:
			if seenGroups[c.ID] {
				continue
			}
			seenGroups[c.ID] = true
			stats.LargestGroups = append(stats.LargestGroups, GroupSize{Name: c.Name, Members: len(c.Children)})
			for _, child := range c.Children {
				persons[child.ID] = child
				inGroup[child.ID] = true
			}
		case models.KindPerson:
			if _, ok := persons[c.ID]; !ok {
				persons[c.ID] = c
			}
			if len(c.Groups) > 0 {
				inGroup[c.ID] = true
			}
		}
	}

	stats.TotalGroups = len(seenGroups)
	stats.TotalPersons = len(persons)
	for id, p := range persons {
		if !inGroup[id] {
			stats.Unassigned++
		}
		if p.Landline == "" && p.Mobile == "" {
			stats.NoPhone++
		}
	}

	slices.SortStableFunc(stats.LargestGroups, func(a, b GroupSize) int {
		if a.Members != b.Members {
			return b.Members - a.Members
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(stats.LargestGroups) > largestGroupsShown {
		stats.LargestGroups = stats.LargestGroups[:largestGroupsShown]
	}
	return stats
}

// RenderDashboard draws stats as plain text.
func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  ROSTER DIRECTORY\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  %d groups  %d persons\n", stats.TotalGroups, stats.TotalPersons))
	if !stats.CachedAt.IsZero() {
		out.WriteString(fmt.Sprintf("  cached %s\n", stats.CachedAt.Local().Format("2006-01-02 15:04")))
	}
	out.WriteString("\n")

	if len(stats.LargestGroups) > 0 {
		out.WriteString("LARGEST GROUPS\n")
		renderGroups(&out, stats.LargestGroups)
		out.WriteString("\n")
	}

	if stats.Unassigned > 0 || stats.NoPhone > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.Unassigned > 0 {
			out.WriteString(fmt.Sprintf("  %d persons without a group\n", stats.Unassigned))
		}
		if stats.NoPhone > 0 {
			out.WriteString(fmt.Sprintf("  %d persons without a phone number\n", stats.NoPhone))
		}
	}

	return out.String()
}

func renderGroups(out *strings.Builder, groups []GroupSize) {
	maxCount := 1
	for _, g := range groups {
		maxCount = max(maxCount, g.Members)
	}

	for _, g := range groups {
		barLength := (g.Members * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-24s %s  %3d\n", truncate(g.Name, 24), bar, g.Members))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
