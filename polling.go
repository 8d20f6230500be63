package gated

// PollingHandle decouples sending from consuming: Call only submits, and the
// caller collects results later, non-blocking via TryRecv or blocking via
// Recv. The caller owes exactly one receive per successful Call; responses
// otherwise accumulate on the channel, indefinitely but safely. One logical
// caller sequence per handle.
type PollingHandle struct {
	ch *channel
}

// NewPollingHandle claims d and returns a handle using the polling
// discipline.
func NewPollingHandle(d *Descriptor) (*PollingHandle, error) {
	ch, err := d.claim()
	if err != nil {
		return nil, err
	}
	return &PollingHandle{ch: ch}, nil
}

// Call submits method without waiting for, or collecting, its response.
// It never blocks.
func (h *PollingHandle) Call(method string, args ...any) error {
	return h.ch.send(method, args, true)
}

// Notify invokes method fire-and-forget: no response is produced and the
// counter is untouched, so no receive is owed.
func (h *PollingHandle) Notify(method string, args ...any) error {
	return h.ch.send(method, args, false)
}

// TryRecv consumes the oldest pending response, if any, without blocking.
// The second return reports whether a response was consumed; when it is
// true, the value and error are that call's outcome, a result of Self
// resolving to this handle. When no response is pending it returns
// (nil, false, nil), or (nil, false, ErrChannelClosed) once the channel is
// closed and drained.
func (h *PollingHandle) TryRecv() (any, bool, error) {
	if r, ok := h.ch.take(); ok {
		v, err := decodeResponse(r, h)
		return v, true, err
	}
	if h.ch.isClosed() {
		return nil, false, ErrChannelClosed
	}
	return nil, false, nil
}

// Recv consumes the oldest pending response, parking on the channel's
// counter until one arrives. Calling from inside a dispatched method fails
// with ErrReentrantCall rather than deadlocking.
func (h *PollingHandle) Recv() (any, error) {
	if h.ch.core.isOwnerGoroutine() {
		return nil, ErrReentrantCall
	}
	r, err := h.ch.recv()
	if err != nil {
		return nil, err
	}
	return decodeResponse(r, h)
}

// Clone mints a new channel bound to the same instance, without going
// through the owner. The descriptor builds one handle of any discipline,
// typically on another goroutine.
func (h *PollingHandle) Clone() (*Descriptor, error) { return h.ch.clone() }

// Pending returns the channel's shared counter: responses posted but not
// yet consumed, exactly the number of receives currently owed.
func (h *PollingHandle) Pending() int { return h.ch.counter.value() }

// Close detaches the handle's channel. Subsequent operations fail with
// ErrChannelClosed; the owner and all other handles are unaffected.
// Idempotent.
func (h *PollingHandle) Close() error {
	h.ch.close()
	return nil
}
