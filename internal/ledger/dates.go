package ledger

import "time"

// midnight returns 00:00 of t's calendar day in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysSince returns the whole calendar days from t to now, both taken as
// local dates in now's location. It is negative when t is after today.
func DaysSince(t, now time.Time) int {
	return daysBetween(t.In(now.Location()), now)
}

// daysBetween counts calendar days from a to b. The dates are projected onto
// UTC so daylight saving transitions do not shorten a day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
