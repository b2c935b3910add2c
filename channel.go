package statelet

import (
	"sync"

	"github.com/google/uuid"
)

// changesBuffer is the buffer size of the Go channel returned by
// [Channel.Changes]. Slow consumers miss updates rather than block writers.
const changesBuffer = 16

// Channel is a single-slot observable state cell.
//
// A Channel always holds exactly one current value, readable synchronously
// via [Channel.Read]. Writing a new value with [Channel.Set] replaces the
// current one and notifies every subscriber synchronously, in registration
// order, before Set returns. There is no history beyond the latest value:
// a new subscriber is replayed the current value once (replay depth 1) and
// then receives every subsequent write.
//
// Channels are safe for concurrent use. Writes issued from a single
// goroutine are observed by each subscriber in emission order with no
// coalescing; writes from concurrent goroutines race, and the last writer
// wins. Subscriber callbacks run on the writer's goroutine and must not
// write, subscribe, or unsubscribe on the same channel (reads are fine,
// as are writes to other channels).
type Channel[V any] struct {
	mu      sync.RWMutex
	current V

	subMu sync.RWMutex
	subs  map[uuid.UUID]func(V)
	feeds map[uuid.UUID]chan V
}

// NewChannel creates a [Channel] holding initial as its current value.
//
// Stores create their own channels; NewChannel is exported for auxiliary
// cells that pipelines target via [WithItemTarget] or [WithListTarget].
func NewChannel[V any](initial V) *Channel[V] {
	return &Channel[V]{
		current: initial,
		subs:    make(map[uuid.UUID]func(V)),
		feeds:   make(map[uuid.UUID]chan V),
	}
}

// Set replaces the current value and synchronously notifies all subscribers.
//
// Callback subscribers are invoked on the calling goroutine before Set
// returns. Channel feeds from [Channel.Changes] receive the value with a
// non-blocking send; a full feed drops the update for that consumer.
func (c *Channel[V]) Set(v V) {
	c.mu.Lock()
	c.current = v
	c.mu.Unlock()

	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, fn := range c.subs {
		fn(v)
	}
	for _, ch := range c.feeds {
		select {
		case ch <- v:
		default:
			// consumer is slow, drop the update
		}
	}
}

// Read returns the current value without subscribing.
func (c *Channel[V]) Read() V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Subscribe registers fn as a listener and returns its [Subscription].
//
// fn is invoked immediately with the current value, then once per
// subsequent [Channel.Set]. Call [Subscription.Cancel] when done to stop
// receiving updates.
func (c *Channel[V]) Subscribe(fn func(V)) *Subscription {
	id := uuid.New()

	// register and replay under the subscriber lock so a concurrent Set
	// cannot deliver a newer value before the replay
	c.subMu.Lock()
	c.subs[id] = fn
	fn(c.Read())
	c.subMu.Unlock()

	return &Subscription{cancel: func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}}
}

// Changes returns a Go channel carrying the current value followed by all
// subsequent writes, plus a cancel function that must be called when done.
//
// The feed is buffered; if the consumer falls behind, intermediate updates
// are dropped rather than blocking writers. After cancel the feed channel
// is closed and no further values are sent.
func (c *Channel[V]) Changes() (<-chan V, func()) {
	ch := make(chan V, changesBuffer)
	id := uuid.New()

	c.subMu.Lock()
	c.feeds[id] = ch
	ch <- c.Read()
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if feed, ok := c.feeds[id]; ok {
			delete(c.feeds, id)
			close(feed)
		}
	}
	return ch, cancel
}

// Subscription is a handle to a registered [Channel.Subscribe] listener.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel removes the listener. Safe to call multiple times.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// View is a read-only window onto a [Channel].
//
// Store accessors return Views so consumers can observe state without
// being handed the write side. All methods delegate to the underlying
// channel.
type View[V any] struct {
	c *Channel[V]
}

// NewView wraps ch in a read-only [View].
func NewView[V any](ch *Channel[V]) *View[V] {
	return &View[V]{c: ch}
}

// Read returns the channel's current value.
func (v *View[V]) Read() V {
	return v.c.Read()
}

// Subscribe registers fn on the underlying channel. See [Channel.Subscribe].
func (v *View[V]) Subscribe(fn func(V)) *Subscription {
	return v.c.Subscribe(fn)
}

// Changes returns a feed of the underlying channel. See [Channel.Changes].
func (v *View[V]) Changes() (<-chan V, func()) {
	return v.c.Changes()
}
