// Package stats accumulates run totals from the event bus.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/xstream-util/xstream/internal/events"
)

// Summary is a point-in-time snapshot of the run totals.
type Summary struct {
	Segments int64
	Bytes    int64
	Spawned  int64
	Reaped   int64
}

// Collector subscribes to a bus and counts segments and child
// processes as the run progresses.
type Collector struct {
	segments atomic.Int64
	bytes    atomic.Int64
	spawned  atomic.Int64
	reaped   atomic.Int64
	unsubs   []func()
}

// NewCollector subscribes a new collector to bus.
func NewCollector(bus *events.Bus) *Collector {
	c := &Collector{}
	c.unsubs = append(c.unsubs,
		bus.Subscribe(func(e events.SegmentWrittenEvent) {
			c.segments.Add(1)
			c.bytes.Add(int64(e.Bytes))
		}),
		bus.Subscribe(func(events.ProcessStartedEvent) {
			c.spawned.Add(1)
		}),
		bus.Subscribe(func(events.ProcessReapedEvent) {
			c.reaped.Add(1)
		}),
	)
	return c
}

// Summary returns the totals counted so far.
func (c *Collector) Summary() Summary {
	return Summary{
		Segments: c.segments.Load(),
		Bytes:    c.bytes.Load(),
		Spawned:  c.spawned.Load(),
		Reaped:   c.reaped.Load(),
	}
}

// Settle waits for in-flight events to land and returns the totals.
// The bus delivers asynchronously, so totals can lag the run by a few
// scheduler ticks; Settle returns once they stop moving for a short
// quiet period, or when the timeout passes.
func (c *Collector) Settle(timeout time.Duration) Summary {
	deadline := time.Now().Add(timeout)
	time.Sleep(5 * time.Millisecond) // grace period for the dispatcher
	last := c.Summary()
	for time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
		next := c.Summary()
		if next == last {
			return next
		}
		last = next
	}
	return last
}

// Close detaches the collector from the bus.
func (c *Collector) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}
