// Package reminder computes the notification set for birthdays and
// keep-in-touch reminders and installs it into a notification sink.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/mmynk/kinship/internal/ledger"
	"github.com/mmynk/kinship/internal/models"
)

// Local times of day at which reminders fire.
const (
	maintenanceHour   = 10
	maintenanceMinute = 0
	birthdayHour      = 9
	birthdayMinute    = 30
)

// slotBits reserves the low bits of a notification id for the reminder slot.
// Slot 0 is the maintenance reminder, slot 1+offset the birthday reminder for
// that offset. MaxReminderOffset+1 must fit in the slot.
const slotBits = 10

// Notification is one scheduled local notification.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	TriggerAt time.Time `json:"triggerAt"`
}

// MaintenanceID returns the notification id of friendID's maintenance reminder.
func MaintenanceID(friendID int64) int64 {
	return friendID << slotBits
}

// BirthdayID returns the notification id of friendID's birthday reminder
// sent offset days ahead.
func BirthdayID(friendID int64, offset int) int64 {
	return friendID<<slotBits | int64(1+offset)
}

// Plan computes every future notification for the given data.
//
// The result is sorted by trigger time then id, so equal inputs and an equal
// now always produce an identical plan. Every TriggerAt is strictly after now.
// Offsets outside 0..MaxReminderOffset are ignored.
func Plan(friends []models.Friend, interactions []models.Interaction, offsets []int, now time.Time) []Notification {
	byFriend := make(map[int64][]models.Interaction, len(friends))
	for _, in := range interactions {
		byFriend[in.FriendID] = append(byFriend[in.FriendID], in)
	}

	var out []Notification
	for i := range friends {
		f := &friends[i]
		if n, ok := maintenanceReminder(f, byFriend[f.ID], now); ok {
			out = append(out, n)
		}
		out = append(out, birthdayReminders(f, offsets, now)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.Before(out[j].TriggerAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func maintenanceReminder(f *models.Friend, interactions []models.Interaction, now time.Time) (Notification, bool) {
	if !f.HasMaintenance() {
		return Notification{}, false
	}
	last, ok := ledger.LastContact(f, interactions)
	if !ok {
		return Notification{}, false
	}
	last = last.In(now.Location())
	y, m, d := last.Date()
	trigger := time.Date(y, m, d+f.MaintenanceInterval, maintenanceHour, maintenanceMinute, 0, 0, now.Location())
	if !trigger.After(now) {
		return Notification{}, false
	}
	return Notification{
		ID:        MaintenanceID(f.ID),
		Title:     "Long time no see",
		Body:      fmt.Sprintf("Isn't it about time you caught up with %s?", f.DisplayName()),
		TriggerAt: trigger,
	}, true
}

func birthdayReminders(f *models.Friend, offsets []int, now time.Time) []Notification {
	if !f.Birthday.Set() {
		return nil
	}
	seen := make(map[int]bool, len(offsets))
	var out []Notification
	for _, offset := range offsets {
		if offset < 0 || offset > models.MaxReminderOffset || seen[offset] {
			continue
		}
		seen[offset] = true

		trigger := birthdayTrigger(f.Birthday, offset, now.Year(), now.Location())
		if !trigger.After(now) {
			trigger = birthdayTrigger(f.Birthday, offset, now.Year()+1, now.Location())
		}
		// Offsets close to a year can still land in the past after one rollover.
		for !trigger.After(now) {
			trigger = trigger.AddDate(1, 0, 0)
		}

		n := Notification{ID: BirthdayID(f.ID, offset), TriggerAt: trigger}
		name := f.DisplayName()
		if offset == 0 {
			n.Title = "Birthday!"
			n.Body = fmt.Sprintf("Today is %s's birthday. Don't forget to send a message!", name)
		} else {
			n.Title = fmt.Sprintf("Birthday in %d %s", offset, days(offset))
			n.Body = fmt.Sprintf("%s's birthday is coming up. Is the gift ready?", name)
		}
		out = append(out, n)
	}
	return out
}

func birthdayTrigger(b *models.Birthday, offset, year int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(b.Month), b.Day-offset, birthdayHour, birthdayMinute, 0, 0, loc)
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
