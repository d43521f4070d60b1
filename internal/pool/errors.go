package pool

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrStdinNotPiped reports a child process without a writable stdin.
var ErrStdinNotPiped = errors.New("child process stdin is not piped")

// Op identifies the I/O stage where a streaming failure occurred.
type Op string

// I/O stages.
const (
	OpRead  Op = "read input"
	OpWrite Op = "write to child"
	OpSpawn Op = "spawn child"
	OpWait  Op = "wait for child"
)

// Error wraps an I/O failure with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCodeError reports a child process that exited with a non-zero code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("child exited with code %d", e.Code)
}

// SignalError reports a child process that was killed by a signal.
type SignalError struct {
	Signal syscall.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("child killed by signal %s", e.Signal)
}
