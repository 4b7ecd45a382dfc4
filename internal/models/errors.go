package models

import "github.com/mmynk/kinship/internal/apperr"

var (
	ErrEmptyName        = apperr.InvalidArg("name is required")
	ErrInvalidBirthday  = apperr.InvalidArg("birthday month must be 1-12 and day 1-31")
	ErrInvalidInterval  = apperr.InvalidArg("maintenance interval must be a positive number of days")
	ErrEmptyTitle       = apperr.InvalidArg("title is required")
	ErrMissingDate      = apperr.InvalidArg("date is required")
	ErrNegativePrice    = apperr.InvalidArg("price cannot be negative")
	ErrInvalidType      = apperr.InvalidArg("type must be meetup or gift")
	ErrInvalidSplit     = apperr.InvalidArg("meetup split must be me, aa or they")
	ErrInvalidDirection = apperr.InvalidArg("gift direction must be out or in")
	ErrFieldMismatch    = apperr.InvalidArg("gift and meetup fields cannot be mixed")
	ErrEmptyMemo        = apperr.InvalidArg("memo content is required")
	ErrNoParticipants   = apperr.InvalidArg("at least one friend must be selected")
	ErrInvalidOffset    = apperr.InvalidArg("reminder offsets must be between 0 and 365 days")
	ErrFriendNotFound   = apperr.NotFound("friend not found")
	ErrNotFound         = apperr.NotFound("record not found")
)
