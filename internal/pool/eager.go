package pool

// Eager behaves like Limiting but opportunistically reaps children
// that have already exited before checking the bound, so a slow oldest
// child does not force a block when younger ones finished out of
// order. The bound invariant is the same: tracked children never
// exceed max.
type Eager struct {
	members
	max int
}

// NewEager creates an eager-reaping bounded pool spawning from tmpl.
// A max of 0 removes the bound.
func NewEager(tmpl Template, max int, opts *Options) *Eager {
	return &Eager{members: newMembers(tmpl, opts), max: max}
}

// Get sweeps up already-exited children, retires the oldest if the
// bound is still reached, then spawns and returns a new child. A swept
// child that failed surfaces here, exactly as a blocking retire would.
func (e *Eager) Get() (Process, error) {
	e.closeNewestStdin()
	if err := e.sweep(); err != nil {
		return nil, err
	}
	if e.max != 0 && len(e.procs) >= e.max {
		if err := e.reapOldest(); err != nil {
			return nil, err
		}
	}
	p, err := e.spawn()
	if err != nil {
		return nil, err
	}
	return p, nil
}
