package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/mmynk/kinship/internal/models"
)

// MonthGroup is one month of the timeline.
type MonthGroup struct {
	Year         int
	Month        time.Month
	Interactions []models.Interaction
}

// Label renders the group heading, e.g. "March 2026".
func (g MonthGroup) Label() string {
	return fmt.Sprintf("%s %d", g.Month, g.Year)
}

// Timeline groups interactions by calendar month, newest month and newest
// interaction first.
func Timeline(interactions []models.Interaction, loc *time.Location) []MonthGroup {
	sorted := make([]models.Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID > sorted[j].ID
	})

	var groups []MonthGroup
	for _, in := range sorted {
		d := in.Date.In(loc)
		n := len(groups)
		if n == 0 || groups[n-1].Year != d.Year() || groups[n-1].Month != d.Month() {
			groups = append(groups, MonthGroup{Year: d.Year(), Month: d.Month()})
			n++
		}
		groups[n-1].Interactions = append(groups[n-1].Interactions, in)
	}
	return groups
}

// LastSeenLabel renders days-since-contact for display.
func LastSeenLabel(days int) string {
	switch {
	case days < 0:
		return "planned"
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
