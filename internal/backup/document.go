package backup

import (
	"fmt"
	"time"

	"github.com/mmynk/kinship/internal/models"
)

// FormatVersion is written into every archive.
const FormatVersion = 2

// Archive entry names.
const (
	dataEntry   = "data.json"
	imagePrefix = "images/"
)

// timeLayout matches JavaScript's Date.toISOString so archives from older
// clients and this one read the same.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// document is the data.json payload.
type document struct {
	Version      int              `json:"version"`
	Timestamp    string           `json:"timestamp"`
	Friends      []friendDoc      `json:"friends"`
	Interactions []interactionDoc `json:"interactions"`
	Memos        []memoDoc        `json:"memos"`
}

type birthdayDoc struct {
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Year  *int `json:"year"`
}

type friendDoc struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"name"`
	Nickname            string            `json:"nickname"`
	Photo               *string           `json:"photo"`
	Tag                 *string           `json:"tag"`
	Birthday            *birthdayDoc      `json:"birthday"`
	MetAt               *string           `json:"metAt"`
	IsMaintenanceOn     bool              `json:"isMaintenanceOn"`
	MaintenanceInterval *int              `json:"maintenanceInterval"`
	Likes               string            `json:"likes"`
	Dislikes            string            `json:"dislikes"`
	IsPinned            bool              `json:"isPinned"`
	Color               models.ThemeColor `json:"color"`
	CreatedAt           string            `json:"createdAt"`
}

type interactionDoc struct {
	ID            int64    `json:"id"`
	FriendID      int64    `json:"friendId"`
	ActivityID    string   `json:"activityId,omitempty"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Date          string   `json:"date"`
	Price         *float64 `json:"price"`
	GiftDirection *string  `json:"giftDirection"`
	SplitType     *string  `json:"splitType"`
	IsHappened    *bool    `json:"isHappened,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

type memoDoc struct {
	ID        int64  `json:"id"`
	FriendID  int64  `json:"friendId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseTime accepts any RFC 3339 timestamp, with or without fractional seconds.
func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", field, s)
	}
	return t.Local(), nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func friendToDoc(f *models.Friend) friendDoc {
	doc := friendDoc{
		ID:              f.ID,
		Name:            f.Name,
		Nickname:        f.Nickname,
		Tag:             optString(f.Tag),
		MetAt:           formatTimePtr(f.MetAt),
		IsMaintenanceOn: f.MaintenanceOn,
		Likes:           f.Likes,
		Dislikes:        f.Dislikes,
		IsPinned:        f.Pinned,
		Color:           f.Color,
		CreatedAt:       formatTime(f.CreatedAt),
	}
	if f.Birthday.Set() {
		doc.Birthday = &birthdayDoc{Month: f.Birthday.Month, Day: f.Birthday.Day}
		if f.Birthday.Year > 0 {
			year := f.Birthday.Year
			doc.Birthday.Year = &year
		}
	}
	if f.MaintenanceOn {
		interval := f.MaintenanceInterval
		doc.MaintenanceInterval = &interval
	}
	if len(f.Photo) > 0 {
		ref := imageName(f.ID)
		doc.Photo = &ref
	}
	return doc
}

func (d *friendDoc) toModel() (models.Friend, error) {
	f := models.Friend{
		ID:            d.ID,
		Name:          d.Name,
		Nickname:      d.Nickname,
		Tag:           deref(d.Tag),
		Likes:         d.Likes,
		Dislikes:      d.Dislikes,
		MaintenanceOn: d.IsMaintenanceOn,
		Pinned:        d.IsPinned,
		Color:         d.Color,
	}
	if d.Birthday != nil && d.Birthday.Month > 0 && d.Birthday.Day > 0 {
		f.Birthday = &models.Birthday{Month: d.Birthday.Month, Day: d.Birthday.Day}
		if d.Birthday.Year != nil {
			f.Birthday.Year = *d.Birthday.Year
		}
	}
	if d.MaintenanceInterval != nil {
		f.MaintenanceInterval = *d.MaintenanceInterval
	}
	if d.MetAt != nil && *d.MetAt != "" {
		metAt, err := parseTime("metAt", *d.MetAt)
		if err != nil {
			return f, err
		}
		f.MetAt = &metAt
	}
	var err error
	if f.CreatedAt, err = parseTime("createdAt", d.CreatedAt); err != nil {
		return f, err
	}
	return f, nil
}

func interactionToDoc(in *models.Interaction) interactionDoc {
	return interactionDoc{
		ID:            in.ID,
		FriendID:      in.FriendID,
		ActivityID:    in.ActivityID,
		Type:          string(in.Type),
		Title:         in.Title,
		Date:          formatTime(in.Date),
		Price:         in.Price,
		GiftDirection: optString(string(in.Direction)),
		SplitType:     optString(string(in.Split)),
		IsHappened:    in.Happened,
		CreatedAt:     formatTime(in.CreatedAt),
	}
}

func (d *interactionDoc) toModel() (models.Interaction, error) {
	in := models.Interaction{
		ID:         d.ID,
		FriendID:   d.FriendID,
		ActivityID: d.ActivityID,
		Type:       models.InteractionType(d.Type),
		Title:      d.Title,
		Price:      d.Price,
		Direction:  models.GiftDirection(deref(d.GiftDirection)),
		Split:      models.SplitMode(deref(d.SplitType)),
		Happened:   d.IsHappened,
	}
	var err error
	if in.Date, err = parseTime("date", d.Date); err != nil {
		return in, err
	}
	if in.CreatedAt, err = parseTime("createdAt", d.CreatedAt); err != nil {
		return in, err
	}
	return in, nil
}

func memoToDoc(m *models.Memo) memoDoc {
	return memoDoc{ID: m.ID, FriendID: m.FriendID, Content: m.Content, CreatedAt: formatTime(m.CreatedAt)}
}

func (d *memoDoc) toModel() (models.Memo, error) {
	createdAt, err := parseTime("createdAt", d.CreatedAt)
	if err != nil {
		return models.Memo{}, err
	}
	return models.Memo{ID: d.ID, FriendID: d.FriendID, Content: d.Content, CreatedAt: createdAt}, nil
}
