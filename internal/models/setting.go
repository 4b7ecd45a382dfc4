package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Well-known setting keys.
const (
	SettingBirthdayReminders = "birthdayReminders"
	SettingCustomFont        = "customFont"
	SettingAppearance        = "appearance"
	SettingOwnerPasscode     = "ownerPasscode"
)

// MaxReminderOffset bounds birthday reminder offsets in days.
const MaxReminderOffset = 365

// DefaultReminderOffsets is used until the user saves a preference.
var DefaultReminderOffsets = []int{0}

// Setting is a singleton document keyed by name.
type Setting struct {
	Key      string
	Value    []byte
	FileName string
}

// NormalizeOffsets validates offsets and returns them sorted without duplicates.
func NormalizeOffsets(offsets []int) ([]int, error) {
	out := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if o < 0 || o > MaxReminderOffset {
			return nil, ErrInvalidOffset
		}
		out = append(out, o)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// EncodeOffsets serialises offsets for the birthdayReminders setting.
func EncodeOffsets(offsets []int) ([]byte, error) {
	norm, err := NormalizeOffsets(offsets)
	if err != nil {
		return nil, err
	}
	return json.Marshal(norm)
}

// DecodeOffsets parses the birthdayReminders setting. Older clients stored the
// offsets as strings ("0", "3", "7"), so both forms are accepted.
func DecodeOffsets(data []byte) ([]int, error) {
	if len(data) == 0 {
		return slices.Clone(DefaultReminderOffsets), nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode reminder offsets: %w", err)
	}
	offsets := make([]int, 0, len(raw))
	for _, r := range raw {
		var n int
		if err := json.Unmarshal(r, &n); err == nil {
			offsets = append(offsets, n)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, fmt.Errorf("failed to decode reminder offset %s: %w", r, err)
		}
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return nil, fmt.Errorf("failed to parse reminder offset %q: %w", s, err)
		}
		offsets = append(offsets, n)
	}
	return NormalizeOffsets(offsets)
}
