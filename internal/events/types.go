package events

// Event type constants for kelindar/event.
const (
	TypeProcessStarted uint32 = iota + 1
	TypeProcessReaped
	TypeSegmentWritten
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProcessStartedEvent is published when a pool spawns a child process.
type ProcessStartedEvent struct {
	PID int
}

// Type returns the event type identifier for ProcessStartedEvent.
func (e ProcessStartedEvent) Type() uint32 { return TypeProcessStarted }

// ProcessReapedEvent is published when a pool waits on a child process.
// ExitCode is -1 when the child was killed by a signal or the wait
// itself failed.
type ProcessReapedEvent struct {
	PID      int
	ExitCode int
}

// Type returns the event type identifier for ProcessReapedEvent.
func (e ProcessReapedEvent) Type() uint32 { return TypeProcessReaped }

// SegmentWrittenEvent is published after a segment has been fully piped
// to a child process. Bytes counts what was written downstream,
// including any substituted delimiter.
type SegmentWrittenEvent struct {
	Index int
	Bytes int
}

// Type returns the event type identifier for SegmentWrittenEvent.
func (e SegmentWrittenEvent) Type() uint32 { return TypeSegmentWritten }
