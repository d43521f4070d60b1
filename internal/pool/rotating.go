package pool

// Rotating is a round-robin reuse pool. Children are spawned lazily,
// one per Get, until max are running; after that Get cycles through
// the existing children in order, so one child may receive several
// independent segments. Stdin stays open across handouts and is closed
// only when the child is reaped at Join or Close.
//
// Rotation amortizes spawn cost when segments are small relative to
// process startup, provided the command itself handles multiple
// delimited inputs on one stdin.
type Rotating struct {
	members
	max  int
	next int
}

// NewRotating creates a rotating pool spawning from tmpl. A max of 0
// disables reuse: every Get spawns a new child and none is revisited.
func NewRotating(tmpl Template, max int, opts *Options) *Rotating {
	return &Rotating{members: newMembers(tmpl, opts), max: max}
}

// Get returns the next child in rotation, spawning a new one while the
// pool is below its bound.
func (r *Rotating) Get() (Process, error) {
	if r.max == 0 {
		p, err := r.spawn()
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	if len(r.procs) < r.max {
		if _, err := r.spawn(); err != nil {
			return nil, err
		}
	}
	p := r.procs[r.next]
	r.next = (r.next + 1) % r.max
	return p, nil
}
