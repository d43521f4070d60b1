package pool

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Template describes the command every child process is spawned from.
// The same template is spawned repeatedly by the pool strategies.
type Template struct {
	Path string
	Args []string
}

// Proc is a child process tracked by a pool. Its stdin is piped for
// writing by the splitter; stdout and stderr are inherited from the
// parent unchanged.
type Proc struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	done  chan error // receives the Wait result exactly once
}

// spawn starts a child process from the template. The Wait result is
// delivered on the done channel by a dedicated goroutine so pools can
// reap either blocking or non-blocking.
func (t Template) spawn() (*Proc, error) {
	cmd := exec.Command(t.Path, t.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &Error{Op: OpSpawn, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &Error{Op: OpSpawn, Err: err}
	}

	p := &Proc{cmd: cmd, stdin: stdin, done: make(chan error, 1)}
	go func() { p.done <- cmd.Wait() }()
	return p, nil
}

// Pid returns the operating system process id of the child.
func (p *Proc) Pid() int {
	return p.cmd.Process.Pid
}

// Stdin returns the writable input of the child process.
func (p *Proc) Stdin() (io.Writer, error) {
	if p.stdin == nil {
		return nil, ErrStdinNotPiped
	}
	return p.stdin, nil
}

// closeStdin signals end-of-input to the child. Children that read
// until end-of-input will not exit before this happens. Safe to call
// more than once.
func (p *Proc) closeStdin() {
	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil
	}
}

// wait closes the child's stdin, blocks until it exits and maps the
// outcome onto the error taxonomy. Must be called at most once per
// process; pools guarantee that by removing a process from tracking
// before waiting on it.
func (p *Proc) wait() error {
	p.closeStdin()
	return exitOutcome(<-p.done)
}

// tryWait reaps the child only if it has already exited. The second
// return value reports whether the process was reaped.
func (p *Proc) tryWait() (error, bool) {
	select {
	case err := <-p.done:
		p.closeStdin()
		return exitOutcome(err), true
	default:
		return nil, false
	}
}

// terminate force-kills the child without waiting for it.
func (p *Proc) terminate() {
	p.closeStdin()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// awaitExit discards the exit status after terminate.
func (p *Proc) awaitExit() {
	<-p.done
}

// exitOutcome maps a Wait result onto the pool error taxonomy: nil for
// a zero exit, SignalError when the child died to a signal,
// ExitCodeError for a non-zero code and a wrapped wait failure for
// anything else.
func exitOutcome(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return &SignalError{Signal: status.Signal()}
		}
		return &ExitCodeError{Code: exitErr.ExitCode()}
	}
	return &Error{Op: OpWait, Err: err}
}

// exitCode converts a reap outcome to the numeric code carried by
// events: 0 for success, the child's code for a non-zero exit, -1 for
// signals and wait failures.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var codeErr *ExitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return -1
}
