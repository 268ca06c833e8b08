// Package eventbus provides an in-process fan-out publish/subscribe bus.
package eventbus

import "sync"

// DefaultBuffer is the subscriber channel capacity used by New.
const DefaultBuffer = 64

// Bus delivers events of type T to every subscriber. Publish never blocks:
// a subscriber whose channel is full misses the event and the drop is
// counted.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []chan T
	buffer int
	closed bool

	dropMu  sync.Mutex
	dropped uint64
}

// New creates a bus with DefaultBuffer slots per subscriber.
func New[T any]() *Bus[T] { return NewBuffered[T](DefaultBuffer) }

// NewBuffered creates a bus whose subscriber channels hold size events.
func NewBuffered[T any](size int) *Bus[T] {
	if size < 0 {
		size = 0
	}
	return &Bus[T]{buffer: size}
}

// Publish sends e to all subscribers.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.countDrop()
		}
	}
}

func (b *Bus[T]) countDrop() {
	b.dropMu.Lock()
	b.dropped++
	b.dropMu.Unlock()
}

// Dropped returns the number of deliveries skipped because a subscriber was
// full.
func (b *Bus[T]) Dropped() uint64 {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	return b.dropped
}

// Subscribe registers a subscriber. On a closed bus the returned channel is
// already closed.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel. Later publications are ignored.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
