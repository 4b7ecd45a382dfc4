package service

import (
	"time"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/ledger"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/reminder"
	"github.com/mmynk/kinship/internal/theme"
)

// Empty is the request or response of calls that carry nothing.
type Empty struct{}

type Birthday struct {
	Month int `json:"month"`
	Day   int `json:"day"`
	Year  int `json:"year,omitempty"`
}

// FriendInput is the writable part of a friend.
type FriendInput struct {
	Name                string     `json:"name"`
	Nickname            string     `json:"nickname"`
	Photo               []byte     `json:"photo,omitempty"`
	Tag                 string     `json:"tag"`
	Birthday            *Birthday  `json:"birthday,omitempty"`
	MetAt               *time.Time `json:"metAt,omitempty"`
	Likes               string     `json:"likes"`
	Dislikes            string     `json:"dislikes"`
	MaintenanceOn       bool       `json:"maintenanceOn"`
	MaintenanceInterval int        `json:"maintenanceInterval"`
	Pinned              bool       `json:"pinned"`
	Color               string     `json:"color"`
}

type Balance struct {
	Total     float64          `json:"total"`
	Direction ledger.Direction `json:"direction"`
	Formatted string           `json:"formatted"`
}

type Status struct {
	LastContact       *time.Time               `json:"lastContact,omitempty"`
	DaysSinceContact  *int                     `json:"daysSinceContact,omitempty"`
	LastSeen          string                   `json:"lastSeen,omitempty"`
	Maintenance       ledger.MaintenanceStatus `json:"maintenance"`
	BirthdayCountdown *int                     `json:"birthdayCountdown,omitempty"`
	UpcomingBirthday  bool                     `json:"upcomingBirthday"`
	Age               *int                     `json:"age,omitempty"`
	Balance           Balance                  `json:"balance"`
}

type Friend struct {
	ID                  int64         `json:"id"`
	Name                string        `json:"name"`
	Nickname            string        `json:"nickname"`
	DisplayName         string        `json:"displayName"`
	HasPhoto            bool          `json:"hasPhoto"`
	Tag                 string        `json:"tag"`
	Birthday            *Birthday     `json:"birthday,omitempty"`
	MetAt               *time.Time    `json:"metAt,omitempty"`
	Likes               string        `json:"likes"`
	Dislikes            string        `json:"dislikes"`
	MaintenanceOn       bool          `json:"maintenanceOn"`
	MaintenanceInterval int           `json:"maintenanceInterval"`
	Pinned              bool          `json:"pinned"`
	Color               string        `json:"color"`
	Palette             theme.Palette `json:"palette"`
	CreatedAt           time.Time     `json:"createdAt"`
	Status              Status        `json:"status"`
}

type CreateFriendRequest struct {
	Friend FriendInput `json:"friend"`
}

type UpdateFriendRequest struct {
	ID     int64       `json:"id"`
	Friend FriendInput `json:"friend"`
	// ClearPhoto removes the stored photo. An update without photo data
	// otherwise keeps it.
	ClearPhoto bool `json:"clearPhoto"`
}

type FriendResponse struct {
	Friend Friend `json:"friend"`
}

// IDRequest addresses one record.
type IDRequest struct {
	ID int64 `json:"id"`
}

type ListFriendsRequest struct {
	// Order is "name" (default) or "created".
	Order string `json:"order"`
	// Tag keeps only friends carrying this tag.
	Tag string `json:"tag,omitempty"`
}

type ListFriendsResponse struct {
	Friends []Friend `json:"friends"`
}

type Memo struct {
	ID        int64     `json:"id"`
	FriendID  int64     `json:"friendId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type AddMemoRequest struct {
	FriendID int64  `json:"friendId"`
	Content  string `json:"content"`
}

type MemoResponse struct {
	Memo Memo `json:"memo"`
}

type ListMemosResponse struct {
	Memos []Memo `json:"memos"`
}

// InteractionInput is the writable part of an interaction.
type InteractionInput struct {
	Type      models.InteractionType `json:"type"`
	Title     string                 `json:"title"`
	Date      time.Time              `json:"date"`
	Price     *float64               `json:"price,omitempty"`
	Direction models.GiftDirection   `json:"giftDirection,omitempty"`
	Split     models.SplitMode       `json:"splitType,omitempty"`
	Happened  *bool                  `json:"happened,omitempty"`
}

type Interaction struct {
	ID         int64                  `json:"id"`
	FriendID   int64                  `json:"friendId"`
	FriendName string                 `json:"friendName,omitempty"`
	ActivityID string                 `json:"activityId"`
	Type       models.InteractionType `json:"type"`
	Title      string                 `json:"title"`
	Date       time.Time              `json:"date"`
	Price      *float64               `json:"price,omitempty"`
	Direction  models.GiftDirection   `json:"giftDirection,omitempty"`
	Split      models.SplitMode       `json:"splitType,omitempty"`
	Happened   *bool                  `json:"happened,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type LogInteractionRequest struct {
	FriendIDs   []int64          `json:"friendIds"`
	Interaction InteractionInput `json:"interaction"`
}

type LogInteractionResponse struct {
	ActivityID   string        `json:"activityId"`
	Interactions []Interaction `json:"interactions"`
}

type UpdateInteractionRequest struct {
	ID          int64            `json:"id"`
	Interaction InteractionInput `json:"interaction"`
}

type InteractionResponse struct {
	Interaction Interaction `json:"interaction"`
}

type ListInteractionsResponse struct {
	Interactions []Interaction `json:"interactions"`
}

type Month struct {
	Label        string        `json:"label"`
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Interactions []Interaction `json:"interactions"`
}

type TimelineResponse struct {
	Months []Month `json:"months"`
}

type Flashback struct {
	YearsAgo    int         `json:"yearsAgo"`
	Interaction Interaction `json:"interaction"`
}

type FlashbacksResponse struct {
	Flashbacks []Flashback `json:"flashbacks"`
}

type BalanceResponse struct {
	FriendID int64   `json:"friendId"`
	Balance  Balance `json:"balance"`
}

type ReminderOffsets struct {
	Offsets []int `json:"offsets"`
}

type SetFontRequest struct {
	FileName string `json:"fileName"`
	Data     []byte `json:"data"`
}

type Appearance struct {
	Mode theme.Mode `json:"mode"`
	Dark bool       `json:"dark"`
}

type SetAppearanceRequest struct {
	// Mode, when set, records the user's choice.
	Mode theme.Mode `json:"mode,omitempty"`
	// SystemDark, when set, reports the platform preference.
	SystemDark *bool `json:"systemDark,omitempty"`
}

type ClearAllRequest struct {
	Confirm bool `json:"confirm"`
}

type PreviewResponse struct {
	Notifications []reminder.Notification `json:"notifications"`
}

type SyncResponse struct {
	Scheduled int `json:"scheduled"`
}

type AuthStatus struct {
	Configured bool `json:"configured"`
}

type SetPasscodeRequest struct {
	Current  string `json:"current"`
	Passcode string `json:"passcode"`
}

type ClearPasscodeRequest struct {
	Current string `json:"current"`
}

type UnlockRequest struct {
	Passcode string `json:"passcode"`
}

type UnlockResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type WatchChangesRequest struct {
	// Collections to watch; all when empty.
	Collections []events.Collection `json:"collections"`
}

func birthdayToMsg(b *models.Birthday) *Birthday {
	if !b.Set() {
		return nil
	}
	return &Birthday{Month: b.Month, Day: b.Day, Year: b.Year}
}

func (in *FriendInput) toModel() (*models.Friend, error) {
	color, err := models.ParseThemeColor(in.Color)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, "invalid color", err)
	}
	f := &models.Friend{
		Name:                in.Name,
		Nickname:            in.Nickname,
		Tag:                 in.Tag,
		MetAt:               in.MetAt,
		Likes:               in.Likes,
		Dislikes:            in.Dislikes,
		MaintenanceOn:       in.MaintenanceOn,
		MaintenanceInterval: in.MaintenanceInterval,
		Pinned:              in.Pinned,
		Color:               color,
	}
	if in.Birthday != nil {
		f.Birthday = &models.Birthday{Month: in.Birthday.Month, Day: in.Birthday.Day, Year: in.Birthday.Year}
	}
	return f, nil
}

func toFriendMsg(f *models.Friend, st ledger.Status) Friend {
	return Friend{
		ID:                  f.ID,
		Name:                f.Name,
		Nickname:            f.Nickname,
		DisplayName:         f.DisplayName(),
		HasPhoto:            len(f.Photo) > 0,
		Tag:                 f.Tag,
		Birthday:            birthdayToMsg(f.Birthday),
		MetAt:               f.MetAt,
		Likes:               f.Likes,
		Dislikes:            f.Dislikes,
		MaintenanceOn:       f.MaintenanceOn,
		MaintenanceInterval: f.MaintenanceInterval,
		Pinned:              f.Pinned,
		Color:               f.Color.String(),
		Palette:             theme.Resolve(f.Color),
		CreatedAt:           f.CreatedAt,
		Status:              toStatusMsg(st),
	}
}

func toBalanceMsg(l ledger.Ledger) Balance {
	return Balance{Total: l.Total, Direction: l.Direction, Formatted: l.Format()}
}

func toStatusMsg(st ledger.Status) Status {
	msg := Status{
		LastContact:       st.LastContact,
		DaysSinceContact:  st.DaysSinceContact,
		Maintenance:       st.Maintenance,
		BirthdayCountdown: st.BirthdayCountdown,
		UpcomingBirthday:  st.UpcomingBirthday,
		Age:               st.Age,
		Balance:           toBalanceMsg(st.Balance),
	}
	if st.DaysSinceContact != nil {
		msg.LastSeen = ledger.LastSeenLabel(*st.DaysSinceContact)
	}
	return msg
}

func (in *InteractionInput) toModel(friendID int64) *models.Interaction {
	return &models.Interaction{
		FriendID:  friendID,
		Type:      in.Type,
		Title:     in.Title,
		Date:      in.Date,
		Price:     in.Price,
		Direction: in.Direction,
		Split:     in.Split,
		Happened:  in.Happened,
	}
}

func toInteractionMsg(in *models.Interaction) Interaction {
	return Interaction{
		ID:         in.ID,
		FriendID:   in.FriendID,
		ActivityID: in.ActivityID,
		Type:       in.Type,
		Title:      in.Title,
		Date:       in.Date,
		Price:      in.Price,
		Direction:  in.Direction,
		Split:      in.Split,
		Happened:   in.Happened,
		CreatedAt:  in.CreatedAt,
	}
}

func toInteractionMsgs(interactions []models.Interaction, names map[int64]string) []Interaction {
	out := make([]Interaction, len(interactions))
	for i := range interactions {
		out[i] = toInteractionMsg(&interactions[i])
		out[i].FriendName = names[interactions[i].FriendID]
	}
	return out
}

func toMemoMsg(m *models.Memo) Memo {
	return Memo{ID: m.ID, FriendID: m.FriendID, Content: m.Content, CreatedAt: m.CreatedAt}
}
