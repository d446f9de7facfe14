package queue

import (
	"sync"
	"time"
)

// EventKind identifies a lifecycle notification emitted by the Coordinator.
type EventKind string

const (
	EventEnqueued    EventKind = "enqueued"
	EventSyncStarted EventKind = "sync_started"
	EventSynced      EventKind = "synced"
	EventSyncFailed  EventKind = "sync_failed"
	EventDeleted     EventKind = "deleted"
)

// Event is published on every record transition so the presentation layer
// can react (refresh a list, show a notification) without the coordinator
// knowing anything about UI.
type Event struct {
	Kind     EventKind `json:"kind"`
	LocalID  string    `json:"local_id"`
	State    State     `json:"state,omitempty"`
	RemoteID string    `json:"remote_id,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

const eventBuffer = 64

type eventBus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[chan Event]struct{})}
}

// subscribe returns a receive channel and a cancel func that closes it.
func (b *eventBus) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// publish never blocks: a subscriber that stopped draining loses events
// rather than stalling the sync loop.
func (b *eventBus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
