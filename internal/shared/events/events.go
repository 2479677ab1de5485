// Package events provides a minimal mutate-and-notify emitter.
//
// Every lifecycle operation on workspace state emits an Event after the
// mutation commits. Subscribers observe the stream synchronously: the
// persistence binding serializes the changed slice, the WebSocket handler
// fans the event out to connected dashboards. Emission never blocks on or
// fails the mutating operation.
package events

import "sync"

// Kind identifies which slice of workspace state changed
type Kind string

const (
	KindTabs    Kind = "tabs"
	KindRecents Kind = "recents"
)

// Event describes a single committed state mutation
type Event struct {
	Workspace string `json:"workspace"`
	Kind      Kind   `json:"kind"`
	Op        string `json:"op"`
	TabID     string `json:"tab_id,omitempty"`
}

// Handler receives events. Handlers run synchronously on the mutating
// goroutine, after the mutation's lock is released; reading the emitting
// manager's state is safe, mutating it from a handler is not.
type Handler func(Event)

// Emitter dispatches events to registered handlers
type Emitter struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	next     int
}

// NewEmitter creates an empty emitter
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns an unsubscribe function
func (e *Emitter) Subscribe(h Handler) func() {
	e.mu.Lock()
	idx := e.next
	e.next++
	e.handlers[idx] = h
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.handlers, idx)
		e.mu.Unlock()
	}
}

// Emit dispatches an event to all handlers
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.handlers))
	for _, h := range e.handlers {
		handlers = append(handlers, h)
	}
	e.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
