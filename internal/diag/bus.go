// Package diag implements the lowering-event diagnostics bus described
// in SPEC_FULL.md §4.4: a read-only tap on a compilation that lets
// external tooling (an IDE, the downstream interpreter's debugger)
// observe instructions as they are emitted and semantic errors as they
// are raised, without the lowering pass itself depending on who, if
// anyone, is listening.
package diag

import (
	"sync"

	"github.com/google/uuid"

	"basiclower/internal/ir"
)

// EventKind discriminates the three things a Bus ever publishes.
type EventKind int

const (
	EventInstruction EventKind = iota
	EventError
	EventSummary
)

// Event is one published occurrence. Exactly the field matching Kind
// is meaningful.
type Event struct {
	Kind        EventKind
	Instruction *ir.Instruction
	Error       error
	Summary     *Summary
}

// Summary is published once, at the end of a successful compilation,
// carrying the counts the CLI front door renders (SPEC_FULL.md §4.5).
type Summary struct {
	Instructions int
	Symbols      int
}

// subscriber is a bounded channel plus the id of the client it feeds;
// a slow or gone subscriber is dropped, never allowed to block
// lowering.
type subscriber struct {
	id uuid.UUID
	ch chan Event
}

// Bus is created per compilation. SessionID identifies the
// compilation across every event it publishes, so a client subscribed
// to more than one concurrent compilation (unusual, but the type
// allows it) can tell events apart.
type Bus struct {
	SessionID uuid.UUID

	mu   sync.Mutex
	subs []*subscriber
}

func New() *Bus {
	return &Bus{SessionID: uuid.New()}
}

// Subscribe registers a new listener and returns a channel of events
// plus an unsubscribe func. The channel is closed by Unsubscribe or by
// Close; it is never closed out from under a concurrent Publish.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	s := &subscriber{id: uuid.New(), ch: make(chan Event, buffer)}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	unsubscribe := func() { b.remove(s.id) }
	return s.ch, unsubscribe
}

func (b *Bus) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			close(s.ch)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish fans an event out to every current subscriber. A subscriber
// whose channel is full has its event dropped rather than blocking the
// lowering pass — diagnostics are best-effort, never load-bearing.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Close tears down every subscriber channel; call once lowering (and
// any server broadcasting this bus) has finished.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}
