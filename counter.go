package gated

import "sync/atomic"

// counter is the shared counter half of a channel: the number of responses
// posted but not yet consumed, paired with a wake primitive so a consumer
// can park between increments instead of spinning.
//
// The token channel holds at most one pending wake. A failed non-blocking
// send means a wake is already queued, which suffices because waiters always
// recheck their condition after waking and wakes are allowed to be stale.
type counter struct {
	n     atomic.Int64
	token chan struct{}
}

func newCounter() *counter {
	return &counter{token: make(chan struct{}, 1)}
}

// inc records one newly consumable response and wakes a parked waiter.
func (c *counter) inc() {
	c.n.Add(1)
	select {
	case c.token <- struct{}{}:
	default:
	}
}

// dec records one consumed response. Going negative means something consumed
// a response that was never posted, which is a protocol violation, not a
// recoverable condition.
func (c *counter) dec() {
	if c.n.Add(-1) < 0 {
		panic(`gated: counter underflow`)
	}
}

// value returns the current count.
func (c *counter) value() int { return int(c.n.Load()) }

// waitCh is the wake channel. Receiving consumes a pending wake; callers
// must recheck state in a loop.
func (c *counter) waitCh() <-chan struct{} { return c.token }
