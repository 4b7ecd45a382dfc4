package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kinship/internal/models"
)

func price(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func meetup(friendID int64, date time.Time, split models.SplitMode, p *float64) models.Interaction {
	return models.Interaction{FriendID: friendID, Type: models.TypeMeetup, Title: "coffee", Date: date, Split: split, Price: p}
}

func gift(friendID int64, date time.Time, dir models.GiftDirection, p *float64) models.Interaction {
	return models.Interaction{FriendID: friendID, Type: models.TypeGift, Title: "gift", Date: date, Direction: dir, Price: p}
}

func TestLastContact(t *testing.T) {
	created := day(2025, time.January, 1)
	met := day(2024, time.June, 1)

	tests := []struct {
		name         string
		friend       models.Friend
		interactions []models.Interaction
		want         time.Time
		wantOK       bool
	}{
		{
			name:   "latest happened meetup wins",
			friend: models.Friend{CreatedAt: created, MetAt: &met},
			interactions: []models.Interaction{
				meetup(1, day(2026, time.March, 1), models.SplitEvenly, nil),
				meetup(1, day(2026, time.May, 1), models.SplitEvenly, nil),
				gift(1, day(2026, time.August, 1), models.GiftOutgoing, nil),
			},
			want:   day(2026, time.May, 1),
			wantOK: true,
		},
		{
			name:   "meetup marked as not happened is ignored",
			friend: models.Friend{CreatedAt: created},
			interactions: []models.Interaction{
				meetup(1, day(2026, time.March, 1), models.SplitEvenly, nil),
				func() models.Interaction {
					in := meetup(1, day(2026, time.May, 1), models.SplitEvenly, nil)
					in.Happened = boolPtr(false)
					return in
				}(),
			},
			want:   day(2026, time.March, 1),
			wantOK: true,
		},
		{
			name:         "falls back to met date",
			friend:       models.Friend{CreatedAt: created, MetAt: &met},
			interactions: []models.Interaction{gift(1, day(2026, time.August, 1), models.GiftOutgoing, nil)},
			want:         met,
			wantOK:       true,
		},
		{
			name:   "falls back to creation time",
			friend: models.Friend{CreatedAt: created},
			want:   created,
			wantOK: true,
		},
		{
			name:   "undefined without any date",
			friend: models.Friend{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LastContact(&tt.friend, tt.interactions)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysSinceNormalizesToMidnight(t *testing.T) {
	now := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.Local)

	assert.Equal(t, 0, DaysSince(time.Date(2026, time.October, 15, 23, 0, 0, 0, time.Local), now))
	assert.Equal(t, 1, DaysSince(time.Date(2026, time.October, 14, 23, 59, 0, 0, time.Local), now))
	assert.Equal(t, 365, DaysSince(day(2025, time.October, 15), now))
	assert.Equal(t, -2, DaysSince(day(2026, time.October, 17), now))
}

func TestMaintenanceBoundary(t *testing.T) {
	now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.Local)
	friend := models.Friend{ID: 1, MaintenanceOn: true, MaintenanceInterval: 30, CreatedAt: day(2020, time.January, 1)}

	tests := []struct {
		daysAgo int
		want    MaintenanceStatus
	}{
		{0, StatusSafe},
		{29, StatusSafe},
		{30, StatusSafe},
		{31, StatusOverdue},
		{400, StatusOverdue},
	}
	for _, tt := range tests {
		interactions := []models.Interaction{meetup(1, day(2026, time.October, 15-tt.daysAgo), models.SplitEvenly, nil)}
		assert.Equal(t, tt.want, Maintenance(&friend, interactions, now), "days ago %d", tt.daysAgo)
	}
}

func TestMaintenanceNormalWhenOff(t *testing.T) {
	now := day(2026, time.October, 15)
	friend := models.Friend{MaintenanceInterval: 1, CreatedAt: day(2020, time.January, 1)}
	assert.Equal(t, StatusNormal, Maintenance(&friend, nil, now))
}

func TestMaintenanceNeverContactedIsOverdue(t *testing.T) {
	friend := models.Friend{MaintenanceOn: true, MaintenanceInterval: 10}
	assert.Equal(t, StatusOverdue, Maintenance(&friend, nil, day(2026, time.October, 15)))
}

func TestOverdueThenMeetupToday(t *testing.T) {
	now := time.Date(2026, time.October, 15, 18, 30, 0, 0, time.Local)
	friend := models.Friend{ID: 7, Name: "A", MaintenanceOn: true, MaintenanceInterval: 10, CreatedAt: day(2025, time.January, 1)}
	interactions := []models.Interaction{meetup(7, day(2026, time.October, 4), models.SplitEvenly, nil)}

	st := Derive(&friend, interactions, now)
	assert.Equal(t, StatusOverdue, st.Maintenance)
	require.NotNil(t, st.DaysSinceContact)
	assert.Equal(t, 11, *st.DaysSinceContact)

	interactions = append(interactions, meetup(7, day(2026, time.October, 15), models.SplitEvenly, nil))
	st = Derive(&friend, interactions, now)
	assert.Equal(t, StatusSafe, st.Maintenance)
	require.NotNil(t, st.DaysSinceContact)
	assert.Equal(t, 0, *st.DaysSinceContact)
}

func TestBirthdayCountdown(t *testing.T) {
	now := time.Date(2026, time.October, 15, 20, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		birthday *models.Birthday
		want     int
		wantOK   bool
		upcoming bool
	}{
		{"today", &models.Birthday{Month: 10, Day: 15}, 0, true, true},
		{"tomorrow", &models.Birthday{Month: 10, Day: 16}, 1, true, true},
		{"thirty days out", &models.Birthday{Month: 11, Day: 14}, 30, true, true},
		{"thirty one days out", &models.Birthday{Month: 11, Day: 15}, 31, true, false},
		{"already passed rolls to next year", &models.Birthday{Month: 10, Day: 14}, 364, true, false},
		{"unset", nil, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BirthdayCountdown(tt.birthday, now)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.upcoming, IsUpcoming(tt.birthday, now))
		})
	}
}

func TestAge(t *testing.T) {
	now := day(2026, time.October, 15)

	age, ok := Age(&models.Birthday{Month: 10, Day: 15, Year: 1990}, now)
	require.True(t, ok)
	assert.Equal(t, 36, age)

	age, ok = Age(&models.Birthday{Month: 10, Day: 16, Year: 1990}, now)
	require.True(t, ok)
	assert.Equal(t, 35, age)

	_, ok = Age(&models.Birthday{Month: 10, Day: 16}, now)
	assert.False(t, ok)
}

func TestBalance(t *testing.T) {
	d := day(2026, time.January, 1)

	tests := []struct {
		name         string
		interactions []models.Interaction
		wantTotal    float64
		wantDir      Direction
	}{
		{"incoming gift", []models.Interaction{gift(1, d, models.GiftIncoming, price(100))}, -100, OtherGaveMore},
		{"outgoing gift", []models.Interaction{gift(1, d, models.GiftOutgoing, price(42.5))}, 42.5, UserGaveMore},
		{"user pays meetup", []models.Interaction{meetup(1, d, models.SplitSelfPays, price(30))}, 30, UserGaveMore},
		{"friend pays meetup", []models.Interaction{meetup(1, d, models.SplitOtherPays, price(30))}, -30, OtherGaveMore},
		{"split evenly ignored", []models.Interaction{meetup(1, d, models.SplitEvenly, price(80))}, 0, Even},
		{"no price ignored", []models.Interaction{gift(1, d, models.GiftOutgoing, nil)}, 0, Even},
		{"cancels out", []models.Interaction{
			gift(1, d, models.GiftOutgoing, price(50)),
			meetup(1, d, models.SplitOtherPays, price(50)),
		}, 0, Even},
		{"empty", nil, 0, Even},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Balance(tt.interactions)
			assert.InDelta(t, tt.wantTotal, got.Total, 0.001)
			assert.Equal(t, tt.wantDir, got.Direction)
		})
	}
}

func TestBalanceIsOrderIndependent(t *testing.T) {
	d := day(2026, time.January, 1)
	interactions := []models.Interaction{
		gift(1, d, models.GiftOutgoing, price(19.99)),
		gift(1, d, models.GiftIncoming, price(0.1)),
		meetup(1, d, models.SplitSelfPays, price(0.2)),
		meetup(1, d, models.SplitOtherPays, price(33.33)),
		meetup(1, d, models.SplitEvenly, price(12)),
		gift(1, d, models.GiftOutgoing, price(0.7)),
	}
	want := Balance(interactions)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := make([]models.Interaction, len(interactions))
		copy(shuffled, interactions)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Balance(shuffled))
	}
}

func TestLedgerFormatTruncates(t *testing.T) {
	assert.Equal(t, "12.34", Ledger{Total: -12.349}.Format())
	assert.Equal(t, "0.00", Ledger{}.Format())
}

func TestFlashbacks(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.Local)
	interactions := []models.Interaction{
		{ID: 1, Type: models.TypeMeetup, Date: day(2024, time.October, 15)},
		{ID: 2, Type: models.TypeGift, Date: day(2025, time.October, 15)},
		{ID: 3, Type: models.TypeMeetup, Date: day(2026, time.October, 15)},
		{ID: 4, Type: models.TypeMeetup, Date: day(2025, time.October, 16)},
	}

	got := Flashbacks(interactions, now)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Interaction.ID)
	assert.Equal(t, 1, got[0].YearsAgo)
	assert.Equal(t, int64(1), got[1].Interaction.ID)
	assert.Equal(t, 2, got[1].YearsAgo)
}

func TestTimelineGroupsByMonth(t *testing.T) {
	interactions := []models.Interaction{
		{ID: 1, Date: day(2026, time.March, 3)},
		{ID: 2, Date: day(2026, time.May, 9)},
		{ID: 3, Date: day(2026, time.March, 20)},
		{ID: 4, Date: day(2025, time.December, 31)},
	}

	groups := Timeline(interactions, time.Local)
	require.Len(t, groups, 3)
	assert.Equal(t, "May 2026", groups[0].Label())
	assert.Equal(t, "March 2026", groups[1].Label())
	require.Len(t, groups[1].Interactions, 2)
	assert.Equal(t, int64(3), groups[1].Interactions[0].ID)
	assert.Equal(t, "December 2025", groups[2].Label())
}

func TestLastSeenLabel(t *testing.T) {
	tests := map[int]string{
		-3:  "planned",
		0:   "today",
		1:   "yesterday",
		12:  "12 days ago",
		45:  "1 month ago",
		90:  "3 months ago",
		400: "1 year ago",
		800: "2 years ago",
	}
	for days, want := range tests {
		assert.Equal(t, want, LastSeenLabel(days), "days %d", days)
	}
}
