package app

import (
	"sync"

	"github.com/bft-labs/docsave/internal/domain"
)

// Handler receives save events. Handlers are called synchronously from the
// goroutine that caused the transition and must return promptly: the cycle
// that emitted the event settles only after every handler has returned. A
// handler reacting to an event (for example requesting a new save after a
// failure) must post through the non-blocking RequestSave; waiting on Save
// inside a handler stalls the very settlement the wait depends on.
type Handler func(domain.SaveEvent)

// Broadcaster is a multicast, replay-free notification stream. Each
// subscriber receives only events emitted after it subscribed; past events
// are never buffered. Emission order follows subscription order.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]Handler
	closed bool
}

// Subscription identifies a registered handler and can cancel it.
type Subscription struct {
	b  *Broadcaster
	id int
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]Handler)}
}

// Subscribe registers a handler for future events. Subscribing to a closed
// broadcaster returns a subscription that will never fire.
func (b *Broadcaster) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if !b.closed {
		b.order = append(b.order, id)
		b.subs[id] = h
	}
	return &Subscription{b: b, id: id}
}

// Emit delivers ev to every current subscriber, synchronously and in
// subscription order. Handlers run outside the broadcaster lock so they may
// subscribe, cancel, or re-enter the saver.
func (b *Broadcaster) Emit(ev domain.SaveEvent) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if h, ok := b.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Close detaches every subscriber. Events emitted afterward go nowhere.
// Idempotent.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.order = nil
	b.subs = make(map[int]Handler)
}

// Cancel removes the handler. Idempotent; safe to call from inside the
// handler itself.
func (s *Subscription) Cancel() {
	if s == nil || s.b == nil {
		return
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.subs, s.id)
}
