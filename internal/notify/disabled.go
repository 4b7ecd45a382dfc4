package notify

import (
	"context"

	"github.com/mmynk/kinship/internal/reminder"
)

// Disabled is the sink used when notifications are turned off.
// Every call fails with reminder.ErrPermissionDenied.
type Disabled struct{}

func (Disabled) Pending(context.Context) ([]reminder.Notification, error) {
	return nil, reminder.ErrPermissionDenied
}

func (Disabled) Cancel(context.Context, []int64) error {
	return reminder.ErrPermissionDenied
}

func (Disabled) Schedule(context.Context, []reminder.Notification) error {
	return reminder.ErrPermissionDenied
}
