// Package notify is the local notification service: a durable queue of
// scheduled notifications and a dispatcher that delivers them when due.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mmynk/kinship/internal/reminder"
)

// Ensure Queue implements reminder.Sink
var _ reminder.Sink = (*Queue)(nil)

var keyPrefix = []byte("notif/")

// notificationKey zero-pads the id so keys iterate in id order.
func notificationKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, id))
}

// Options configures a Queue.
type Options struct {
	// Dir is the Badger data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the queue in RAM only. Useful for tests.
	InMemory bool
}

// Queue stores scheduled notifications in BadgerDB.
//
// Thread Safety:
//
//	Safe for concurrent use from multiple goroutines.
type Queue struct {
	db *badger.DB
}

// Open opens or creates a queue.
func Open(opts Options) (*Queue, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Quiet logger, the queue logs through slog.
	badgerOpts = badgerOpts.
		WithLogger(nil).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithNumMemtables(2)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification queue: %w", err)
	}
	return &Queue{db: db}, nil
}

// Close releases the underlying database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Schedule stores a batch of notifications. A notification whose id is
// already queued is overwritten.
func (q *Queue) Schedule(ctx context.Context, batch []reminder.Notification) error {
	return q.db.Update(func(txn *badger.Txn) error {
		for _, n := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.Marshal(n)
			if err != nil {
				return fmt.Errorf("failed to encode notification %d: %w", n.ID, err)
			}
			if err := txn.Set(notificationKey(n.ID), data); err != nil {
				return fmt.Errorf("failed to store notification %d: %w", n.ID, err)
			}
		}
		return nil
	})
}

// Cancel removes notifications by id. Unknown ids are ignored.
func (q *Queue) Cancel(ctx context.Context, ids []int64) error {
	return q.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Delete(notificationKey(id)); err != nil {
				return fmt.Errorf("failed to cancel notification %d: %w", id, err)
			}
		}
		return nil
	})
}

// Pending lists every queued notification ordered by trigger time.
func (q *Queue) Pending(ctx context.Context) ([]reminder.Notification, error) {
	var out []reminder.Notification
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var n reminder.Notification
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			})
			if err != nil {
				return fmt.Errorf("failed to decode notification %s: %w", it.Item().Key(), err)
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.Before(out[j].TriggerAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Due returns the queued notifications whose trigger time is not after now.
func (q *Queue) Due(ctx context.Context, now time.Time) ([]reminder.Notification, error) {
	pending, err := q.Pending(ctx)
	if err != nil {
		return nil, err
	}
	var due []reminder.Notification
	for _, n := range pending {
		if n.TriggerAt.After(now) {
			break
		}
		due = append(due, n)
	}
	return due, nil
}

// Ack removes delivered notifications.
func (q *Queue) Ack(ctx context.Context, ids []int64) error {
	return q.Cancel(ctx, ids)
}
