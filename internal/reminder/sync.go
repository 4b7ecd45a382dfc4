package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/metrics"
	"github.com/mmynk/kinship/internal/models"
)

// ErrPermissionDenied is returned by a Sink that may not post notifications.
// Sync treats it as a soft failure.
var ErrPermissionDenied = errors.New("notification permission denied")

// Sink is the platform notification service.
type Sink interface {
	// Pending lists every notification currently scheduled for this app.
	Pending(ctx context.Context) ([]Notification, error)

	// Cancel removes the notifications with the given ids.
	Cancel(ctx context.Context, ids []int64) error

	// Schedule installs a batch of notifications.
	Schedule(ctx context.Context, batch []Notification) error
}

// Source supplies the data a plan is computed from.
type Source interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
}

// Syncer owns the whole notification queue of the app: every Sync clears
// what is pending and installs a freshly computed plan.
type Syncer struct {
	source Source
	sink   Sink
	now    func() time.Time
}

// NewSyncer creates a Syncer reading from source and writing to sink.
func NewSyncer(source Source, sink Sink) *Syncer {
	return &Syncer{source: source, sink: sink, now: time.Now}
}

// Offsets returns the configured birthday reminder offsets.
func Offsets(ctx context.Context, source Source) ([]int, error) {
	setting, err := source.GetSetting(ctx, models.SettingBirthdayReminders)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return models.DecodeOffsets(nil)
	}
	return models.DecodeOffsets(setting.Value)
}

// Preview computes the plan without touching the sink.
func (s *Syncer) Preview(ctx context.Context, now time.Time) ([]Notification, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	offsets, err := Offsets(ctx, s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder offsets: %w", err)
	}
	return Plan(snap.Friends, snap.Interactions, offsets, now), nil
}

// Sync recomputes the plan and replaces everything pending with it.
// It returns the number of notifications installed.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	plan, err := s.Preview(ctx, s.now())
	if err != nil {
		return 0, err
	}

	n, err := s.install(ctx, plan)
	if errors.Is(err, ErrPermissionDenied) {
		slog.Warn("Notifications unavailable, reminders not scheduled", "error", err)
		metrics.ReminderSyncs.WithLabelValues("denied").Inc()
		return 0, nil
	}
	if err != nil {
		metrics.ReminderSyncs.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.ReminderSyncs.WithLabelValues("ok").Inc()
	metrics.RemindersPending.Set(float64(n))
	slog.Info("Reminders synced", "count", n)
	return n, nil
}

func (s *Syncer) install(ctx context.Context, plan []Notification) (int, error) {
	pending, err := s.sink.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	if len(pending) > 0 {
		ids := make([]int64, len(pending))
		for i, p := range pending {
			ids[i] = p.ID
		}
		if err := s.sink.Cancel(ctx, ids); err != nil {
			return 0, fmt.Errorf("failed to cancel pending notifications: %w", err)
		}
	}
	if len(plan) == 0 {
		return 0, nil
	}
	if err := s.sink.Schedule(ctx, plan); err != nil {
		return 0, fmt.Errorf("failed to schedule notifications: %w", err)
	}
	return len(plan), nil
}

// Watch re-syncs after every change to the collections a plan depends on.
// It blocks until ctx is done.
func (s *Syncer) Watch(ctx context.Context, broker *events.Broker) {
	changes, cancel := broker.Subscribe(events.Friends, events.Interactions, events.Settings)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			drain(changes)
			if _, err := s.Sync(ctx); err != nil {
				slog.Error("Reminder sync failed", "collection", change.Collection, "error", err)
			}
		}
	}
}

// drain discards queued changes so a burst (a restore touches three
// collections) costs one sync.
func drain(changes <-chan events.Change) {
	for {
		select {
		case <-changes:
		default:
			return
		}
	}
}
