package gated

import "sync/atomic"

// FutureState enumerates the settlement states of a Future.
type FutureState int32

const (
	// FuturePending means the response has not arrived.
	FuturePending FutureState = iota
	// FutureResolved means the call succeeded; Result returns its value.
	FutureResolved
	// FutureRejected means the call failed; Result returns its error.
	FutureRejected
)

func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureResolved:
		return "resolved"
	case FutureRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Future is an async call's eventual result. Futures settle exactly once, in
// request order per handle, and never un-settle. Safe for concurrent use.
type Future struct {
	state atomic.Int32
	value any
	err   error
	done  chan struct{}
	core  *core
}

func newFuture(c *core) *Future {
	return &Future{done: make(chan struct{}), core: c}
}

// settle publishes the outcome. Called exactly once, by the handle's
// listener or by the constructor for calls that fail before sending.
func (f *Future) settle(value any, err error) {
	if err != nil {
		f.err = err
		f.state.Store(int32(FutureRejected))
	} else {
		f.value = value
		f.state.Store(int32(FutureResolved))
	}
	close(f.done)
}

// State reports the current settlement state without blocking.
func (f *Future) State() FutureState { return FutureState(f.state.Load()) }

// Done returns a channel closed when the future settles, for use in select.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome, or ErrFuturePending if the future has not
// settled. It never blocks; pair it with Done, or use Wait.
func (f *Future) Result() (any, error) {
	switch f.State() {
	case FutureResolved:
		return f.value, nil
	case FutureRejected:
		return nil, f.err
	default:
		return nil, ErrFuturePending
	}
}

// Wait blocks until the future settles and returns the outcome. Waiting on
// an unsettled future from inside a dispatched method would deadlock, so it
// fails with ErrReentrantCall instead.
func (f *Future) Wait() (any, error) {
	if f.State() == FuturePending && f.core != nil && f.core.isOwnerGoroutine() {
		return nil, ErrReentrantCall
	}
	<-f.done
	return f.Result()
}
