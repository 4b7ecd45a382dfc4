package models

import (
	"strings"
	"time"
)

// Friend is the identity record everything else hangs off.
// Interactions and memos referencing a friend are deleted with it.
type Friend struct {
	// ID is assigned by the store (monotonic).
	ID int64

	// Name is the display name. Required.
	Name string

	// Nickname, when set, is preferred over Name in reminder text.
	Nickname string

	// Photo is JPEG data with the longest side bounded (see photo.MaxDimension).
	Photo []byte

	// Tag is a free-text label such as "college" or "work".
	Tag string

	Birthday *Birthday

	// MetAt is when the user first met this friend. Optional.
	MetAt *time.Time

	Likes    string
	Dislikes string

	// MaintenanceOn enables the "keep in touch" reminder.
	// MaintenanceInterval is only meaningful while it is set.
	MaintenanceOn       bool
	MaintenanceInterval int

	Pinned bool

	Color ThemeColor

	CreatedAt time.Time
}

// DisplayName returns the nickname when present, otherwise the name.
func (f *Friend) DisplayName() string {
	if nick := strings.TrimSpace(f.Nickname); nick != "" {
		return nick
	}
	return f.Name
}

// HasMaintenance reports whether a maintenance reminder applies to the friend.
func (f *Friend) HasMaintenance() bool {
	return f.MaintenanceOn && f.MaintenanceInterval > 0
}

// Validate checks the fields a friend must carry before it is stored.
func (f *Friend) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Birthday != nil {
		if err := f.Birthday.Validate(); err != nil {
			return err
		}
	}
	if f.MaintenanceOn && f.MaintenanceInterval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// Birthday is a month/day with an optional year (0 when unknown).
type Birthday struct {
	Month int
	Day   int
	Year  int
}

// Validate checks month and day ranges.
func (b *Birthday) Validate() error {
	if b.Month < 1 || b.Month > 12 || b.Day < 1 || b.Day > 31 {
		return ErrInvalidBirthday
	}
	if b.Year < 0 {
		return ErrInvalidBirthday
	}
	return nil
}

// Set reports whether both month and day are present.
func (b *Birthday) Set() bool {
	return b != nil && b.Month > 0 && b.Day > 0
}
