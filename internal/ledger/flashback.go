package ledger

import (
	"sort"
	"time"

	"github.com/mmynk/kinship/internal/models"
)

// Flashback is a past interaction that happened on today's month and day.
type Flashback struct {
	Interaction models.Interaction
	YearsAgo    int
}

// Flashbacks returns every interaction dated on now's month/day in an earlier
// year, most recent year first.
func Flashbacks(interactions []models.Interaction, now time.Time) []Flashback {
	loc := now.Location()
	var out []Flashback
	for _, in := range interactions {
		d := in.Date.In(loc)
		if d.Month() != now.Month() || d.Day() != now.Day() {
			continue
		}
		if d.Year() >= now.Year() {
			continue
		}
		out = append(out, Flashback{Interaction: in, YearsAgo: now.Year() - d.Year()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].YearsAgo != out[j].YearsAgo {
			return out[i].YearsAgo < out[j].YearsAgo
		}
		return out[i].Interaction.ID < out[j].Interaction.ID
	})
	return out
}
