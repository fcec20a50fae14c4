package rules

import (
	"slices"
	"sync"
)

// Event reports one dispatched command after it settled. Events are for
// observers only; the issuer already holds the Outcome.
type Event struct {
	Seq      int // 0 while replaying
	Seat     int
	Command  string
	Outcome  Outcome
	Replayed bool
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type kindListener struct {
	handle   int
	kind     OutcomeKind
	callback Listener
}

// EventBus is a synchronous publish/subscribe hub with outcome filtering.
// Listeners run on the publishing goroutine and must not issue commands.
type EventBus struct {
	mu         sync.RWMutex
	listeners  map[int]Listener
	byOutcome  map[OutcomeKind][]kindListener
	nextHandle int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[int]Listener),
		byOutcome: make(map[OutcomeKind][]kindListener),
	}
}

// Subscribe registers a listener for every event and returns its handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeOutcome registers a listener for events ending in kind.
func (bus *EventBus) SubscribeOutcome(kind OutcomeKind, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.byOutcome[kind] = append(bus.byOutcome[kind], kindListener{handle: handle, kind: kind, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for kind, listeners := range bus.byOutcome {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.byOutcome[kind] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of registered listeners.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	n := len(bus.listeners)
	for _, listeners := range bus.byOutcome {
		n += len(listeners)
	}
	return n
}

// Publish delivers event to all matching listeners synchronously. Listeners
// for every event run first, in subscription order.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	all := make([]int, 0, len(bus.listeners))
	for handle := range bus.listeners {
		all = append(all, handle)
	}
	slices.Sort(all)
	callbacks := make([]Listener, 0, len(all)+len(bus.byOutcome[event.Outcome.Kind]))
	for _, handle := range all {
		callbacks = append(callbacks, bus.listeners[handle])
	}
	for _, l := range bus.byOutcome[event.Outcome.Kind] {
		callbacks = append(callbacks, l.callback)
	}
	bus.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}
