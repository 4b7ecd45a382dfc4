package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/kinship/internal/metrics"
	"github.com/mmynk/kinship/internal/reminder"
)

// DefaultInterval is how often the dispatcher polls the queue.
const DefaultInterval = 30 * time.Second

// Deliverer shows a notification to the user.
type Deliverer interface {
	Deliver(ctx context.Context, n reminder.Notification) error
}

// LogDeliverer delivers notifications as log lines.
type LogDeliverer struct {
	Logger *slog.Logger
}

// Deliver logs the notification.
func (d LogDeliverer) Deliver(ctx context.Context, n reminder.Notification) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification", "id", n.ID, "title", n.Title, "body", n.Body, "trigger_at", n.TriggerAt)
	return nil
}

// Dispatcher hands due notifications to a Deliverer.
type Dispatcher struct {
	queue     *Queue
	deliverer Deliverer
	interval  time.Duration
	now       func() time.Time
}

// NewDispatcher creates a dispatcher polling queue every interval.
func NewDispatcher(queue *Queue, deliverer Deliverer, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Dispatcher{queue: queue, deliverer: deliverer, interval: interval, now: time.Now}
}

// Run dispatches on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Notification dispatch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce delivers every due notification and removes it from the
// queue. A notification whose delivery fails stays queued for the next run.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	due, err := d.queue.Due(ctx, d.now())
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	delivered := make([]int64, 0, len(due))
	for _, n := range due {
		if err := d.deliverer.Deliver(ctx, n); err != nil {
			slog.Warn("Failed to deliver notification", "id", n.ID, "error", err)
			continue
		}
		delivered = append(delivered, n.ID)
		metrics.NotificationsDelivered.Inc()
	}

	if err := d.queue.Ack(ctx, delivered); err != nil {
		return 0, err
	}
	return len(delivered), nil
}
