package bus

import (
	"context"
	"sync"
)

// EventBus is a hub-and-spoke event bus using Go channels. The chat bridge
// and the tracking endpoints publish events; the session tracker and the
// analytics collector subscribe.
type EventBus struct {
	events  chan Event
	subs    map[string][]func(Event) // event kind -> subscribers
	mu      sync.RWMutex
	bufSize int
}

// NewEventBus creates a new EventBus with the given buffer size.
// If bufSize is 0, defaults to 100.
func NewEventBus(bufSize int) *EventBus {
	if bufSize <= 0 {
		bufSize = 100
	}
	return &EventBus{
		events:  make(chan Event, bufSize),
		subs:    make(map[string][]func(Event)),
		bufSize: bufSize,
	}
}

// Publish sends an event onto the bus.
func (b *EventBus) Publish(ev Event) {
	b.events <- ev
}

// Subscribe registers fn to receive events of the given kind.
// An empty kind string subscribes to ALL kinds.
func (b *EventBus) Subscribe(kind string, fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], fn)
}

// Dispatch runs in a goroutine, reading events and delivering them to
// matching subscribers. Returns when ctx is cancelled or the event channel
// is closed.
func (b *EventBus) Dispatch(ctx context.Context) {
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return
			}
			b.dispatch(ev)
		case <-ctx.Done():
			return
		}
	}
}

// dispatch delivers ev to all matching subscribers (kind-specific + wildcard).
func (b *EventBus) dispatch(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, fn := range b.subs[ev.Kind] {
		fn(ev)
	}
	// wildcard subscribers (empty string = all kinds)
	for _, fn := range b.subs[""] {
		fn(ev)
	}
}

// Close closes the event channel.
func (b *EventBus) Close() {
	close(b.events)
}
