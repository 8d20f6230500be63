package gated

// BlockingHandle consumes responses synchronously: each Call parks the
// calling goroutine on the channel's counter until its own response arrives.
// One logical caller sequence per handle; see the package documentation.
type BlockingHandle struct {
	ch *channel
}

// NewBlockingHandle claims d and returns a handle using the blocking
// discipline.
func NewBlockingHandle(d *Descriptor) (*BlockingHandle, error) {
	ch, err := d.claim()
	if err != nil {
		return nil, err
	}
	return &BlockingHandle{ch: ch}, nil
}

// Call invokes method on the owner and blocks until the response arrives.
// A result of Self resolves to this handle. Unknown methods fail before
// sending; calling from inside a dispatched method fails with
// ErrReentrantCall rather than deadlocking.
func (h *BlockingHandle) Call(method string, args ...any) (any, error) {
	if h.ch.core.isOwnerGoroutine() {
		return nil, ErrReentrantCall
	}
	if err := h.ch.send(method, args, true); err != nil {
		return nil, err
	}
	r, err := h.ch.recv()
	if err != nil {
		return nil, err
	}
	return decodeResponse(r, h)
}

// Notify invokes method fire-and-forget: no response is produced, the
// counter is untouched, and errors the method returns are only logged.
func (h *BlockingHandle) Notify(method string, args ...any) error {
	return h.ch.send(method, args, false)
}

// Clone mints a new channel bound to the same instance, without going
// through the owner. The descriptor builds one handle of any discipline,
// typically on another goroutine.
func (h *BlockingHandle) Clone() (*Descriptor, error) { return h.ch.clone() }

// Pending returns the channel's shared counter: responses posted but not
// yet consumed. Always zero in correct blocking use, since every Call
// consumes its own response before returning.
func (h *BlockingHandle) Pending() int { return h.ch.counter.value() }

// Close detaches the handle's channel. Subsequent operations fail with
// ErrChannelClosed; the owner and all other handles are unaffected.
// Idempotent.
func (h *BlockingHandle) Close() error {
	h.ch.close()
	return nil
}
