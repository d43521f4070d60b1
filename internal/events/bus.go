// Package events broadcasts process and segment lifecycle events.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
// A nil *Bus is valid: publishing and subscribing become no-ops, so
// callers that don't care about events can pass nil.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. Delivery is
// asynchronous; Publish never blocks on slow subscribers.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	// kelindar/event is generic over the concrete event type, so
	// dispatch through a type switch.
	switch e := ev.(type) {
	case ProcessStartedEvent:
		event.Publish(b.dispatcher, e)
	case ProcessReapedEvent:
		event.Publish(b.dispatcher, e)
	case SegmentWrittenEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler
// parameter type determines which events it receives.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(handler any) func() {
	if b == nil {
		return func() {}
	}
	switch h := handler.(type) {
	case func(ProcessStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProcessReapedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SegmentWrittenEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
