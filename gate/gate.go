// Package gate provides a counting admission gate that bounds how many
// resource-heavy operations run at once.
//
// A [Gate] is configured with a fixed capacity. Acquire admits the caller
// immediately while capacity remains and otherwise blocks the caller in a
// strict FIFO queue; Release hands the freed ticket to the earliest waiter.
// The usual shape is the scoped form, which releases on every exit path:
//
//	g := gate.New(2)
//	err := g.Do(func() error {
//	    return renderThumbnail(path)
//	})
//
// The gate has no timeout or cancellation of its own; a caller that needs
// either must layer it externally and still release the eventually-granted
// ticket.
package gate

import "sync"

// Gate bounds concurrent admissions to a fixed capacity with FIFO fairness.
// The zero value is not usable; construct with New.
type Gate struct {
	mu          sync.Mutex
	capacity    int
	outstanding int
	waiters     []chan struct{}
}

// New returns a gate admitting at most capacity concurrent operations.
// It panics if capacity is less than 1.
func New(capacity int) *Gate {
	if capacity < 1 {
		panic("gate: capacity must be at least 1")
	}
	return &Gate{capacity: capacity}
}

// Acquire obtains an admission ticket, blocking in arrival order until one
// is available. Every Acquire must be paired with exactly one Release.
func (g *Gate) Acquire() {
	g.mu.Lock()
	if g.outstanding < g.capacity {
		g.outstanding++
		g.mu.Unlock()
		return
	}

	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()

	<-ready
}

// Release returns a ticket. If waiters are queued, the ticket transfers to
// the earliest waiter without changing the outstanding count; otherwise the
// outstanding count drops. It panics when called without a matching Acquire.
func (g *Gate) Release() {
	g.mu.Lock()
	if len(g.waiters) > 0 {
		ready := g.waiters[0]
		g.waiters = g.waiters[1:]
		g.mu.Unlock()
		close(ready)
		return
	}
	if g.outstanding == 0 {
		g.mu.Unlock()
		panic("gate: release without acquire")
	}
	g.outstanding--
	g.mu.Unlock()
}

// Do runs fn while holding a ticket, releasing it on every exit path
// including panics. The error is fn's own, unaltered.
func (g *Gate) Do(fn func() error) error {
	g.Acquire()
	defer g.Release()
	return fn()
}

// InUse reports how many tickets are currently outstanding.
func (g *Gate) InUse() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outstanding
}

// Waiting reports how many callers are queued for admission.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
