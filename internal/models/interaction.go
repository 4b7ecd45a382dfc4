package models

import (
	"time"
)

// InteractionType distinguishes meetups from gifts.
type InteractionType string

const (
	TypeMeetup InteractionType = "meetup"
	TypeGift   InteractionType = "gift"
)

// GiftDirection says who gave the gift. Values match archives written by older clients.
type GiftDirection string

const (
	GiftOutgoing GiftDirection = "out"
	GiftIncoming GiftDirection = "in"
)

// SplitMode says who paid for a meetup.
type SplitMode string

const (
	SplitSelfPays  SplitMode = "me"
	SplitEvenly    SplitMode = "aa"
	SplitOtherPays SplitMode = "they"
)

// Interaction ties one friend to one dated meetup or gift.
//
// A group activity is stored as one Interaction per friend sharing the same
// ActivityID and attributes.
type Interaction struct {
	ID       int64
	FriendID int64

	// ActivityID groups the fan-out of one logged activity (UUID format).
	ActivityID string

	Type  InteractionType
	Title string
	Date  time.Time

	// Price is optional and never negative.
	Price *float64

	// Direction is set iff Type is TypeGift.
	Direction GiftDirection

	// Split and Happened are set iff Type is TypeMeetup.
	// A nil Happened counts as "did happen".
	Split    SplitMode
	Happened *bool

	CreatedAt time.Time
}

// Occurred reports whether the interaction counts as contact.
// Only meetups not explicitly marked as cancelled qualify.
func (i *Interaction) Occurred() bool {
	if i.Type != TypeMeetup {
		return false
	}
	return i.Happened == nil || *i.Happened
}

// Amount returns the price, or zero when unset.
func (i *Interaction) Amount() float64 {
	if i.Price == nil {
		return 0
	}
	return *i.Price
}

// Validate enforces the per-type field invariants.
func (i *Interaction) Validate() error {
	if i.Title == "" {
		return ErrEmptyTitle
	}
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	if i.Price != nil && *i.Price < 0 {
		return ErrNegativePrice
	}
	switch i.Type {
	case TypeMeetup:
		if i.Direction != "" {
			return ErrFieldMismatch
		}
		switch i.Split {
		case SplitSelfPays, SplitEvenly, SplitOtherPays:
		default:
			return ErrInvalidSplit
		}
	case TypeGift:
		if i.Split != "" || i.Happened != nil {
			return ErrFieldMismatch
		}
		switch i.Direction {
		case GiftOutgoing, GiftIncoming:
		default:
			return ErrInvalidDirection
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// Memo is a short note attached to one friend.
type Memo struct {
	ID        int64
	FriendID  int64
	Content   string
	CreatedAt time.Time
}
