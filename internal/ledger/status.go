package ledger

import (
	"time"

	"github.com/mmynk/kinship/internal/models"
)

// UpcomingWindow is how many days ahead a birthday counts as upcoming.
const UpcomingWindow = 30

// MaintenanceStatus is the keep-in-touch state of a friend.
type MaintenanceStatus string

const (
	// StatusNormal means maintenance is off; no badge is rendered.
	StatusNormal  MaintenanceStatus = "normal"
	StatusSafe    MaintenanceStatus = "safe"
	StatusOverdue MaintenanceStatus = "overdue"
)

// Status holds the derived, never-stored facts about one friend.
// Nil pointers mean "not enough data", which is a valid state to render.
type Status struct {
	FriendID          int64
	LastContact       *time.Time
	DaysSinceContact  *int
	Maintenance       MaintenanceStatus
	BirthdayCountdown *int
	UpcomingBirthday  bool
	Age               *int
	Balance           Ledger
}

// LastContact resolves when the user last saw the friend.
//
// Resolution order:
//   - latest meetup that was not explicitly marked as not happened
//   - the friend's MetAt date
//   - the friend's creation time
func LastContact(friend *models.Friend, interactions []models.Interaction) (time.Time, bool) {
	var last time.Time
	found := false
	for i := range interactions {
		in := &interactions[i]
		if !in.Occurred() {
			continue
		}
		if !found || in.Date.After(last) {
			last = in.Date
			found = true
		}
	}
	if found {
		return last, true
	}
	if friend.MetAt != nil && !friend.MetAt.IsZero() {
		return *friend.MetAt, true
	}
	if !friend.CreatedAt.IsZero() {
		return friend.CreatedAt, true
	}
	return time.Time{}, false
}

// Maintenance computes the maintenance status for friend at now.
func Maintenance(friend *models.Friend, interactions []models.Interaction, now time.Time) MaintenanceStatus {
	if !friend.MaintenanceOn {
		return StatusNormal
	}
	last, ok := LastContact(friend, interactions)
	if !ok {
		return StatusOverdue
	}
	return maintenanceFor(DaysSince(last, now), friend.MaintenanceInterval)
}

func maintenanceFor(days, interval int) MaintenanceStatus {
	if days > interval {
		return StatusOverdue
	}
	return StatusSafe
}

// NextBirthday returns the next occurrence of the birthday on or after now's
// calendar day, at midnight in now's location.
func NextBirthday(b *models.Birthday, now time.Time) (time.Time, bool) {
	if !b.Set() {
		return time.Time{}, false
	}
	today := midnight(now)
	next := time.Date(today.Year(), time.Month(b.Month), b.Day, 0, 0, 0, 0, now.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, time.Month(b.Month), b.Day, 0, 0, 0, 0, now.Location())
	}
	return next, true
}

// BirthdayCountdown returns the days until the next birthday; 0 means today.
func BirthdayCountdown(b *models.Birthday, now time.Time) (int, bool) {
	next, ok := NextBirthday(b, now)
	if !ok {
		return 0, false
	}
	return daysBetween(now, next), true
}

// IsUpcoming reports whether the birthday falls within UpcomingWindow days.
func IsUpcoming(b *models.Birthday, now time.Time) bool {
	days, ok := BirthdayCountdown(b, now)
	return ok && days <= UpcomingWindow
}

// Age returns the friend's current age when the birth year is known.
func Age(b *models.Birthday, now time.Time) (int, bool) {
	if !b.Set() || b.Year <= 0 {
		return 0, false
	}
	age := now.Year() - b.Year
	if int(now.Month()) < b.Month || (int(now.Month()) == b.Month && now.Day() < b.Day) {
		age--
	}
	return age, true
}

// Derive bundles every per-friend fact. interactions must belong to friend.
func Derive(friend *models.Friend, interactions []models.Interaction, now time.Time) Status {
	st := Status{
		FriendID:    friend.ID,
		Maintenance: Maintenance(friend, interactions, now),
		Balance:     Balance(interactions),
	}
	if last, ok := LastContact(friend, interactions); ok {
		days := DaysSince(last, now)
		st.LastContact = &last
		st.DaysSinceContact = &days
	}
	if days, ok := BirthdayCountdown(friend.Birthday, now); ok {
		st.BirthdayCountdown = &days
		st.UpcomingBirthday = days <= UpcomingWindow
	}
	if age, ok := Age(friend.Birthday, now); ok {
		st.Age = &age
	}
	return st
}
