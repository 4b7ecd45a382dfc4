// Package events carries change notifications from the record store to its
// readers. Store mutations publish one Change per affected collection after
// commit; readers re-run their queries when a change arrives.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/kinship/internal/metrics"
)

// Collection names a persisted collection.
type Collection string

const (
	Friends      Collection = "friends"
	Interactions Collection = "interactions"
	Memos        Collection = "memos"
	Settings     Collection = "settings"
)

// Change reports that a collection was modified.
type Change struct {
	Collection Collection `json:"collection"`
	At         time.Time  `json:"at"`
}

// Publisher is implemented by anything that accepts changes.
type Publisher interface {
	Publish(changes ...Change)
}

const subscriberBuffer = 32

type subscriber struct {
	ch     chan Change
	filter map[Collection]bool
}

func (s *subscriber) wants(c Collection) bool {
	return len(s.filter) == 0 || s.filter[c]
}

// Broker fans changes out to subscribers.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Subscribe registers interest in the given collections (all when empty).
// The returned cancel func unsubscribes and closes the channel.
func (b *Broker) Subscribe(collections ...Collection) (<-chan Change, func()) {
	sub := &subscriber{
		ch:     make(chan Change, subscriberBuffer),
		filter: make(map[Collection]bool, len(collections)),
	}
	for _, c := range collections {
		sub.filter[c] = true
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers changes without blocking. A subscriber whose buffer is
// full misses the change.
func (b *Broker) Publish(changes ...Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, c := range changes {
		if c.At.IsZero() {
			c.At = time.Now()
		}
		for _, sub := range b.subs {
			if !sub.wants(c.Collection) {
				continue
			}
			select {
			case sub.ch <- c:
			default:
				metrics.ChangesDropped.Inc()
				slog.Warn("Dropping change event for slow subscriber", "collection", c.Collection)
			}
		}
	}
}

// Touch builds changes stamped with the current time.
func Touch(collections ...Collection) []Change {
	now := time.Now()
	out := make([]Change, len(collections))
	for i, c := range collections {
		out[i] = Change{Collection: c, At: now}
	}
	return out
}
