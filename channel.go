package gated

import (
	"sync"
	"sync/atomic"
)

// channel is one client lane: an unbounded response queue paired with a
// shared counter, bound to exactly one handle. Requests funnel into the
// owner's single ingress carrying their channel, so responses route back
// here in request order.
type channel struct {
	core      *core
	id        uint64
	responses *queue[response]
	counter   *counter
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func newChannel(c *core, id uint64) *channel {
	return &channel{
		core:      c,
		id:        id,
		responses: newQueue[response](),
		counter:   newCounter(),
		done:      make(chan struct{}),
	}
}

// precheck is the client-side half of validation, so misuse fails on the
// caller's goroutine without a round trip.
func (ch *channel) precheck(method string) error {
	if ch.closed.Load() {
		return ErrChannelClosed
	}
	if _, ok := ch.core.capSet[method]; !ok {
		return &UnknownMethodError{Method: method}
	}
	return nil
}

// copyArgs runs each argument through the codec. The input slice is never
// retained.
func (ch *channel) copyArgs(args []any) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		v, err := ch.core.codec.Copy(arg)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// submit hands a prepared envelope to the owner.
func (ch *channel) submit(method string, args []any, wantResponse bool) error {
	if ch.closed.Load() {
		return ErrChannelClosed
	}
	return ch.core.submit(request{
		ch:           ch,
		method:       method,
		args:         args,
		wantResponse: wantResponse,
	})
}

// send validates, copies, and submits in one step. The blocking and polling
// disciplines use it directly; the async discipline splits the steps so a
// future can be queued between copy and submit.
func (ch *channel) send(method string, args []any, wantResponse bool) error {
	if err := ch.precheck(method); err != nil {
		return err
	}
	copied, err := ch.copyArgs(args)
	if err != nil {
		return err
	}
	return ch.submit(method, copied, wantResponse)
}

// post appends a response and publishes it on the counter. Responses to a
// closed channel are dropped; the consumer is gone by contract.
func (ch *channel) post(r response) bool {
	if ch.closed.Load() {
		return false
	}
	ch.responses.push(r)
	ch.counter.inc()
	return true
}

// take removes one consumable response, if any, consuming its counter slot.
func (ch *channel) take() (response, bool) {
	r, ok := ch.responses.pop()
	if ok {
		ch.counter.dec()
	}
	return r, ok
}

// recv blocks until a response is consumable or the channel drains closed.
// Responses posted before close remain consumable; only then does the closed
// state surface.
func (ch *channel) recv() (response, error) {
	for {
		if r, ok := ch.take(); ok {
			return r, nil
		}
		if ch.closed.Load() {
			return response{}, ErrChannelClosed
		}
		select {
		case <-ch.counter.waitCh():
		case <-ch.done:
		}
	}
}

// close detaches the channel and releases any parked consumer. Idempotent,
// and safe from any goroutine; the owner uses it on every channel at
// termination, handles use it on their own channel.
func (ch *channel) close() {
	ch.closeOnce.Do(func() {
		ch.closed.Store(true)
		close(ch.done)
		ch.core.detach(ch)
	})
}

func (ch *channel) isClosed() bool { return ch.closed.Load() }

// clone mints a sibling channel on the same owner. Fails once this channel
// has closed, and once the registry is sealed by termination.
func (ch *channel) clone() (*Descriptor, error) {
	if ch.closed.Load() {
		return nil, ErrChannelClosed
	}
	c, err := ch.core.attach()
	if err != nil {
		return nil, err
	}
	return &Descriptor{ch: c}, nil
}

// Descriptor is a transferable, single-use claim on one channel. New mints
// one for the initial channel and Clone mints one per additional channel;
// exactly one handle constructor may claim each. Descriptors are safe to
// hand to another goroutine.
type Descriptor struct {
	ch      *channel
	claimed atomic.Bool
}

// claim consumes the descriptor. Second and later claims fail.
func (d *Descriptor) claim() (*channel, error) {
	if d == nil {
		panic(`gated: nil descriptor`)
	}
	if !d.claimed.CompareAndSwap(false, true) {
		return nil, ErrDescriptorClaimed
	}
	return d.ch, nil
}
