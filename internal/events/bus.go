package events

import (
	"sync"

	"griddle/internal/api"
	"griddle/pkg/logging"
)

// DefaultBuffer is the per-subscriber queue size used when a subscriber
// does not specify one.
const DefaultBuffer = 64

// Bus is the order lifecycle notification hub. Publishing is
// fire-and-forget: each subscriber has a bounded queue, and when a slow
// subscriber's queue is full the oldest queued event is dropped to make
// room. Publish therefore never blocks and never holds any lock shared
// with the registry or the pipeline.
//
// Delivery order to a single subscriber matches publish order for the
// events that are not dropped.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

type subscriber struct {
	ch      chan api.OrderEvent
	dropped uint64
}

// NewBus creates an empty notification bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers an observer and returns its event channel together
// with an unsubscribe function. The channel is closed on unsubscribe.
// A buffer of zero or below selects DefaultBuffer.
func (b *Bus) Subscribe(buffer int) (<-chan api.OrderEvent, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan api.OrderEvent, buffer)}
	b.subs[id] = sub

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if current, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(current.ch)
			if current.dropped > 0 {
				logging.Warn("Events", "Subscriber %d dropped %d events before unsubscribing", id, current.dropped)
			}
		}
	}
	return sub.ch, unsubscribe
}

// Publish delivers the event to every subscriber, dropping the oldest
// queued event of any subscriber whose queue is full.
func (b *Bus) Publish(event api.OrderEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub.ch <- event:
			continue
		default:
		}

		// Queue full: drop the oldest event, then queue the new one.
		select {
		case <-sub.ch:
			sub.dropped++
			logging.Debug("Events", "Subscriber %d queue full, dropped oldest event", id)
		default:
		}
		select {
		case sub.ch <- event:
		default:
			sub.dropped++
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
