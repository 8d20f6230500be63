package gated

import "sync"

// AsyncHandle consumes responses through futures: Call returns immediately
// and a listener goroutine, owned by the handle, settles futures in request
// order as responses arrive. One logical caller sequence per handle.
type AsyncHandle struct {
	ch      *channel
	pending *queue[*Future]
	// mu orders enqueues against the listener's terminal sweep; once sealed,
	// no future may join the pending queue.
	mu     sync.Mutex
	sealed bool
	done   chan struct{}
}

// NewAsyncHandle claims d and returns a handle using the async discipline,
// starting its listener goroutine. Close the handle to stop the listener.
func NewAsyncHandle(d *Descriptor) (*AsyncHandle, error) {
	ch, err := d.claim()
	if err != nil {
		return nil, err
	}
	h := &AsyncHandle{
		ch:      ch,
		pending: newQueue[*Future](),
		done:    make(chan struct{}),
	}
	go h.listen()
	return h, nil
}

// Call invokes method and returns a Future for its eventual result, without
// blocking. All failures surface on the future, never as a second return:
// definite failures (closed handle, unknown method, codec errors) come back
// already rejected, and a send that races owner termination settles during
// teardown.
func (h *AsyncHandle) Call(method string, args ...any) *Future {
	if err := h.ch.precheck(method); err != nil {
		f := newFuture(nil)
		f.settle(nil, err)
		return f
	}
	copied, err := h.ch.copyArgs(args)
	if err != nil {
		f := newFuture(nil)
		f.settle(nil, err)
		return f
	}
	// Queue before submitting so the listener can never see a response
	// without its future. enqueue fails only after the listener's terminal
	// sweep has sealed the queue, at which point no response can ever arrive;
	// a submit that fails after a successful enqueue leaves the future to
	// that sweep (the owner is terminating, and termination closes the
	// channel).
	f := newFuture(h.ch.core)
	if !h.enqueue(f) {
		f.settle(nil, ErrChannelClosed)
		return f
	}
	_ = h.ch.submit(method, copied, true)
	return f
}

// enqueue appends f to the pending queue, unless the listener has sealed it.
func (h *AsyncHandle) enqueue(f *Future) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sealed {
		return false
	}
	h.pending.push(f)
	return true
}

// Notify invokes method fire-and-forget: no response, no future, counter
// untouched.
func (h *AsyncHandle) Notify(method string, args ...any) error {
	return h.ch.send(method, args, false)
}

// Clone mints a new channel bound to the same instance, without going
// through the owner. The descriptor builds one handle of any discipline,
// typically on another goroutine.
func (h *AsyncHandle) Clone() (*Descriptor, error) { return h.ch.clone() }

// Outstanding returns the number of unsettled futures on this handle.
func (h *AsyncHandle) Outstanding() int { return h.pending.len() }

// Pending returns the channel's shared counter: responses posted but not
// yet consumed by the listener. Nonzero values mean the listener is behind.
func (h *AsyncHandle) Pending() int { return h.ch.counter.value() }

// Close detaches the handle's channel, stops the listener, and rejects any
// unsettled futures with ErrChannelClosed. It returns once every future has
// settled. Idempotent.
func (h *AsyncHandle) Close() error {
	h.ch.close()
	<-h.done
	return nil
}

// listen is the handle's consumer: it parks on the channel's counter, pairs
// each arriving response with the oldest pending future, and settles it.
// Position is the whole protocol; there are no request IDs to match on.
func (h *AsyncHandle) listen() {
	defer close(h.done)
	for {
		if r, ok := h.ch.take(); ok {
			f, ok := h.pending.pop()
			if !ok {
				panic(`gated: response without pending future`)
			}
			f.settle(decodeResponse(r, h))
			continue
		}
		if h.ch.isClosed() {
			// Seal before sweeping, so a Call racing this point either lands
			// its future here or observes the seal and rejects it inline.
			h.mu.Lock()
			h.sealed = true
			h.mu.Unlock()
			for {
				f, ok := h.pending.pop()
				if !ok {
					return
				}
				f.settle(nil, ErrChannelClosed)
			}
		}
		select {
		case <-h.ch.counter.waitCh():
		case <-h.ch.done:
		}
	}
}
