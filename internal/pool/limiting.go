package pool

// Limiting is a bounded spawn-and-retire pool. Every Get spawns a
// fresh child; once max children are tracked, the oldest is waited on
// before a new one is spawned, so at most max children exist at once.
// Throughput is gated by the slowest child in oldest-first order.
type Limiting struct {
	members
	max int
}

// NewLimiting creates a limiting pool spawning from tmpl. A max of 0
// removes the bound: every Get spawns and nothing is reaped until Join.
func NewLimiting(tmpl Template, max int, opts *Options) *Limiting {
	return &Limiting{members: newMembers(tmpl, opts), max: max}
}

// Get retires the oldest child if the bound is reached, then spawns and
// returns a new one. Retiring fails if the retired child did not exit
// successfully.
func (l *Limiting) Get() (Process, error) {
	l.closeNewestStdin()
	if l.max != 0 && len(l.procs) == l.max {
		if err := l.reapOldest(); err != nil {
			return nil, err
		}
	}
	p, err := l.spawn()
	if err != nil {
		return nil, err
	}
	return p, nil
}
