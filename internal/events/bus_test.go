package events

import (
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it returns true or the deadline passes.
// Event delivery is asynchronous, so tests must tolerate a short lag.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	var got atomic.Int64
	unsub := bus.Subscribe(func(e SegmentWrittenEvent) {
		got.Add(int64(e.Bytes))
	})
	defer unsub()

	bus.Publish(SegmentWrittenEvent{Index: 0, Bytes: 3})
	bus.Publish(SegmentWrittenEvent{Index: 1, Bytes: 4})

	waitFor(t, func() bool { return got.Load() == 7 })
}

func TestSubscriberReceivesOnlyItsType(t *testing.T) {
	bus := New()

	var segments, reaps atomic.Int64
	defer bus.Subscribe(func(SegmentWrittenEvent) { segments.Add(1) })()
	defer bus.Subscribe(func(ProcessReapedEvent) { reaps.Add(1) })()

	bus.Publish(SegmentWrittenEvent{})
	bus.Publish(ProcessReapedEvent{PID: 1})
	bus.Publish(ProcessReapedEvent{PID: 2})

	waitFor(t, func() bool { return segments.Load() == 1 && reaps.Load() == 2 })
}

func TestNilBusIsSilent(t *testing.T) {
	var bus *Bus

	bus.Publish(ProcessStartedEvent{PID: 1})
	unsub := bus.Subscribe(func(ProcessStartedEvent) {})
	unsub()
}

func TestUnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(42)
	unsub()
}
