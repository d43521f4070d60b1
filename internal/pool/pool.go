// Package pool manages child processes that receive delimited stream
// segments on stdin.
//
// A Pool hands out one process per input segment and owns every child
// it spawned until that child has been waited on. Three strategies
// share the contract:
//
//   - Limiting: spawn per segment, block on the oldest child when the
//     bound is reached.
//   - Rotating: spawn lazily up to the bound, then reuse children in
//     round-robin order.
//   - Eager: Limiting plus a non-blocking sweep of already-exited
//     children before the bound check.
//
// All pools are single-owner and not safe for concurrent use; the only
// concurrency is the children themselves running in parallel.
package pool

import (
	"io"

	"github.com/xstream-util/xstream/internal/events"
	"github.com/xstream-util/xstream/internal/logging"
)

// Process is the handle a splitter writes a segment to.
type Process interface {
	// Stdin returns the writable input of the process.
	Stdin() (io.Writer, error)
}

// Pool hands out child processes, one acquisition per input segment.
//
// Get may spawn a new child or return one that is already running,
// depending on the strategy, and may block waiting for an older child
// when a bound is reached. Join waits for every tracked child and
// reports the first failure; children left tracked after a failed Join
// stay tracked, so a caller can Join again until it returns nil, at
// which point nothing remains. Close force-terminates and reaps
// whatever is still tracked; it never fails and must run on every exit
// path so no child outlives the parent.
type Pool interface {
	Get() (Process, error)
	Join() error
	Close()
}

// Options carries the optional collaborators shared by all strategies.
type Options struct {
	// Logger for pool operations. Nil falls back to the pool module logger.
	Logger logging.Logger

	// Bus receives process lifecycle events. Nil disables publishing.
	Bus *events.Bus
}

func (o *Options) logger() logging.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return logging.GetLogger("pool")
}

func (o *Options) bus() *events.Bus {
	if o == nil {
		return nil
	}
	return o.Bus
}

// members is the spawn/reap bookkeeping shared by the strategies.
// procs is ordered oldest first.
type members struct {
	tmpl   Template
	procs  []*Proc
	logger logging.Logger
	bus    *events.Bus
}

func newMembers(tmpl Template, opts *Options) members {
	return members{tmpl: tmpl, logger: opts.logger(), bus: opts.bus()}
}

// spawn starts a new child from the template and tracks it.
func (m *members) spawn() (*Proc, error) {
	p, err := m.tmpl.spawn()
	if err != nil {
		return nil, err
	}
	m.procs = append(m.procs, p)
	m.logger.Debug("child started", "pid", p.Pid())
	m.bus.Publish(events.ProcessStartedEvent{PID: p.Pid()})
	return p, nil
}

// reapOldest removes the oldest tracked child and waits for it.
func (m *members) reapOldest() error {
	p := m.procs[0]
	m.procs = m.procs[1:]
	pid := p.Pid()
	err := p.wait()
	m.reaped(pid, err)
	return err
}

// sweep reaps every tracked child that has already exited, without
// blocking. It stops at the first failed child and surfaces its error.
func (m *members) sweep() error {
	for i := 0; i < len(m.procs); {
		p := m.procs[i]
		err, exited := p.tryWait()
		if !exited {
			i++
			continue
		}
		m.procs = append(m.procs[:i], m.procs[i+1:]...)
		m.reaped(p.Pid(), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *members) reaped(pid int, err error) {
	m.logger.Debug("child reaped", "pid", pid, "exit_code", exitCode(err))
	m.bus.Publish(events.ProcessReapedEvent{PID: pid, ExitCode: exitCode(err)})
}

// Join waits for every tracked child, oldest first, and reports the
// first failure. A failed child is removed from tracking before it is
// waited on, so the remainder stays tracked for Close (or another
// Join) rather than being dropped as zombies.
func (m *members) Join() error {
	for len(m.procs) > 0 {
		if err := m.reapOldest(); err != nil {
			return err
		}
	}
	return nil
}

// Close force-terminates and reaps every tracked child. Best effort:
// individual kill and wait failures are discarded so a primary error
// from the run is not masked. Safe to call after Join.
func (m *members) Close() {
	// Kill everything first so the children die in parallel.
	for _, p := range m.procs {
		p.terminate()
	}
	for _, p := range m.procs {
		p.awaitExit()
	}
	m.procs = nil
}

// tracked returns the number of spawned-but-not-yet-reaped children.
func (m *members) tracked() int {
	return len(m.procs)
}

// closeNewestStdin ends input to the most recently handed out child.
// The bounded spawn-per-segment strategies call this on the next Get:
// once the splitter asks for a new child, the previous one will receive
// no further segments.
func (m *members) closeNewestStdin() {
	if n := len(m.procs); n > 0 {
		m.procs[n-1].closeStdin()
	}
}
