package gated

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Method is one declared operation over the confined instance. It runs only
// on the owner goroutine, so it may freely mutate the instance. Returning
// Self makes the call resolve to the caller's own handle; returned errors
// surface as the call's error at the consuming handle.
type Method[T any] func(recv T, args []any) (any, error)

// Methods is the capability set: the complete, fixed map of operations an
// owner exposes. The owner snapshots it at construction, so later mutation
// of the original map has no effect.
type Methods[T any] map[string]Method[T]

// Owner confines one instance of T to the goroutine running Run, and
// dispatches requests to it strictly one at a time. T is typically a
// pointer type; methods receive recv by value.
type Owner[T any] struct {
	core     *core
	instance T
	methods  Methods[T]
	initial  *Descriptor
}

// New constructs the instance via factory, exactly once, on the calling
// goroutine, and returns an Owner exposing the given capability set. The
// returned owner does nothing until Run starts; requests sent before then
// queue up.
func New[T any](factory func() (T, error), methods Methods[T], opts ...Option) (*Owner[T], error) {
	if factory == nil {
		panic(`gated: nil factory`)
	}
	if len(methods) == 0 {
		panic(`gated: no methods`)
	}
	cfg, err := resolveOwnerOptions(opts)
	if err != nil {
		return nil, err
	}
	snapshot := make(Methods[T], len(methods))
	capSet := make(map[string]struct{}, len(methods))
	for name, fn := range methods {
		if fn == nil {
			panic(fmt.Sprintf(`gated: nil method %q`, name))
		}
		snapshot[name] = fn
		capSet[name] = struct{}{}
	}
	instance, err := factory()
	if err != nil {
		return nil, fmt.Errorf(`gated: factory: %w`, err)
	}
	o := &Owner[T]{
		core:     newCore(capSet, cfg),
		instance: instance,
		methods:  snapshot,
	}
	o.core.invoke = func(method string, args []any) (any, error) {
		return o.methods[method](o.instance, args)
	}
	ch, err := o.core.attach()
	if err != nil {
		return nil, err
	}
	o.initial = &Descriptor{ch: ch}
	return o, nil
}

// Run executes the dispatch loop on the calling goroutine until the owner
// terminates. It returns nil after Shutdown or Close, and ctx.Err() if ctx
// ends the loop; ctx cancellation terminates without draining.
func (o *Owner[T]) Run(ctx context.Context) error { return o.core.run(ctx) }

// Shutdown terminates gracefully: intake stops immediately, the already
// submitted backlog is executed and its responses posted, then every channel
// closes. ctx bounds the wait for the loop to finish; the shutdown itself is
// not revoked by ctx ending early. Returns ErrTerminated if the owner had
// already terminated.
func (o *Owner[T]) Shutdown(ctx context.Context) error { return o.core.shutdown(ctx) }

// Close terminates immediately, discarding any unexecuted backlog. Parked
// consumers are released with ErrChannelClosed. Returns ErrTerminated if the
// owner had already terminated.
func (o *Owner[T]) Close() error { return o.core.close() }

// Descriptor returns the initial channel's descriptor. Like every
// descriptor it is single use; claiming it twice fails.
func (o *Owner[T]) Descriptor() *Descriptor { return o.initial }

// Clone mints a new channel bound to the same instance and returns its
// descriptor. Safe to call concurrently with dispatch; fails with
// ErrTerminated once the owner is shutting down.
func (o *Owner[T]) Clone() (*Descriptor, error) {
	ch, err := o.core.attach()
	if err != nil {
		return nil, err
	}
	return &Descriptor{ch: ch}, nil
}

// State reports the owner lifecycle state.
func (o *Owner[T]) State() State { return o.core.state.load() }

// Stats returns a snapshot of owner activity counters.
func (o *Owner[T]) Stats() Stats { return o.core.stats.snapshot() }

const (
	ctlNone int32 = iota
	ctlDrain
	ctlStop
)

// core is the type-erased machinery behind Owner: ingress, registry,
// lifecycle, and dispatch. Keeping it non-generic keeps the channel and
// handle types non-generic too.
type core struct {
	capSet map[string]struct{}
	codec  Codec
	log    *logiface.Logger[logiface.Event]

	// invoke runs one capability against the instance. Owner goroutine only.
	invoke func(method string, args []any) (any, error)

	ingress     *queue[request]
	wakePending atomic.Bool
	wakeup      chan struct{}

	state       lifecycle
	mode        atomic.Int32
	ctl         chan struct{}
	runDone     chan struct{}
	goroutineID atomic.Uint64

	mu       sync.Mutex
	channels map[uint64]*channel
	nextID   uint64
	sealed   bool

	stats stats
}

func newCore(capSet map[string]struct{}, cfg *ownerOptions) *core {
	return &core{
		capSet:   capSet,
		codec:    cfg.codec,
		log:      cfg.log,
		ingress:  newQueue[request](),
		wakeup:   make(chan struct{}, 1),
		ctl:      make(chan struct{}, 1),
		runDone:  make(chan struct{}),
		channels: make(map[uint64]*channel),
	}
}

// wake nudges the dispatch loop. The CAS dedups wakes so a burst of submits
// costs one channel operation; the loop clears wakePending before rechecking
// the ingress, which keeps the pair race free.
func (c *core) wake() {
	if c.wakePending.CompareAndSwap(false, true) {
		select {
		case c.wakeup <- struct{}{}:
		default:
		}
	}
}

// signal raises the control mode, never lowering it, and nudges the loop.
// Stop overrides drain; a drain requested after stop stays stop.
func (c *core) signal(mode int32) {
	for {
		m := c.mode.Load()
		if m >= mode {
			break
		}
		if c.mode.CompareAndSwap(m, mode) {
			break
		}
	}
	select {
	case c.ctl <- struct{}{}:
	default:
	}
}

// submit accepts an envelope into the ingress. Intake stops the moment
// shutdown is requested, before the backlog drains.
func (c *core) submit(req request) error {
	if c.mode.Load() != ctlNone {
		return ErrTerminated
	}
	switch c.state.load() {
	case StateIdle, StateRunning:
	default:
		return ErrTerminated
	}
	c.ingress.push(req)
	c.stats.requests.Add(1)
	c.wake()
	return nil
}

func (c *core) isOwnerGoroutine() bool {
	id := c.goroutineID.Load()
	return id != 0 && id == getGoroutineID()
}

func (c *core) run(ctx context.Context) error {
	gid := getGoroutineID()
	if !c.state.transition(StateIdle, StateRunning) {
		switch c.state.load() {
		case StateRunning:
			if c.isOwnerGoroutine() {
				return ErrReentrantCall
			}
			return ErrAlreadyRunning
		case StateTerminating:
			if c.isOwnerGoroutine() {
				return ErrReentrantCall
			}
			if c.goroutineID.Load() != 0 {
				return ErrAlreadyRunning
			}
			return ErrTerminated
		default:
			return ErrTerminated
		}
	}
	c.goroutineID.Store(gid)
	defer c.goroutineID.Store(0)

	c.log.Debug().
		Uint64(`goroutine`, gid).
		Log(`dispatch started`)

	var runErr error
loop:
	for {
		if c.mode.Load() == ctlStop {
			break
		}
		req, ok := c.ingress.pop()
		if ok {
			c.dispatch(req)
			continue
		}
		if c.mode.Load() != ctlNone {
			// Drain requested and the backlog is empty.
			break
		}
		select {
		case <-c.wakeup:
			c.wakePending.Store(false)
		case <-c.ctl:
			if c.state.transition(StateRunning, StateTerminating) {
				c.log.Debug().Log(`dispatch stopping`)
			}
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		}
	}
	c.state.transition(StateRunning, StateTerminating)
	discarded := c.teardown()
	c.log.Debug().
		Int(`discarded`, discarded).
		Log(`dispatch terminated`)
	return runErr
}

// dispatch executes one envelope and routes its outcome.
func (c *core) dispatch(req request) {
	if _, ok := c.capSet[req.method]; !ok {
		// The sending handle checks this too; getting here means the check
		// was raced or bypassed.
		c.stats.unknownMethods.Add(1)
		c.log.Warning().
			Str(`method`, req.method).
			Uint64(`channel`, req.ch.id).
			Log(`unknown method`)
		if req.wantResponse {
			c.post(req.ch, response{err: &UnknownMethodError{Method: req.method}})
		}
		return
	}
	value, err, panicked := c.safeInvoke(req.method, req.args)
	if panicked {
		c.stats.panics.Add(1)
		c.log.Err().
			Str(`method`, req.method).
			Err(err).
			Log(`method panicked`)
	}
	if !req.wantResponse {
		c.stats.notifies.Add(1)
		if err != nil && !panicked {
			// Fire-and-forget errors have nowhere else to go.
			c.log.Warning().
				Str(`method`, req.method).
				Err(err).
				Log(`notify failed`)
		}
		return
	}
	var resp response
	switch {
	case err != nil:
		if !panicked {
			err = c.codec.CopyError(err)
		}
		resp = response{err: err}
	default:
		if _, ok := value.(selfSentinel); ok {
			resp = response{self: true}
		} else if copied, cerr := c.codec.Copy(value); cerr != nil {
			resp = response{err: cerr}
		} else {
			resp = response{value: copied}
		}
	}
	c.post(req.ch, resp)
}

func (c *core) post(ch *channel, resp response) {
	if ch.post(resp) {
		c.stats.responses.Add(1)
		if resp.err != nil {
			c.stats.errors.Add(1)
		}
	} else {
		c.stats.dropped.Add(1)
	}
}

// safeInvoke contains panics to the offending call so one bad method cannot
// take down dispatch.
func (c *core) safeInvoke(method string, args []any) (value any, err error, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &PanicError{Value: r}
			panicked = true
		}
	}()
	value, err = c.invoke(method, args)
	return
}

// teardown seals the registry, closes every channel, and discards whatever
// is left in the ingress. Consumers parked on counters are released by the
// channel closes; they drain any posted responses first, then observe
// ErrChannelClosed.
func (c *core) teardown() int {
	c.mu.Lock()
	c.sealed = true
	chans := make([]*channel, 0, len(c.channels))
	for _, ch := range c.channels {
		chans = append(chans, ch)
	}
	c.mu.Unlock()
	for _, ch := range chans {
		ch.close()
	}
	discarded := 0
	for {
		if _, ok := c.ingress.pop(); !ok {
			break
		}
		discarded++
	}
	c.state.store(StateTerminated)
	close(c.runDone)
	return discarded
}

func (c *core) shutdown(ctx context.Context) error {
	for {
		switch c.state.load() {
		case StateTerminated:
			return ErrTerminated
		case StateIdle:
			// Never ran; there is no loop to drain the backlog, so this is
			// equivalent to Close.
			if c.state.transition(StateIdle, StateTerminating) {
				c.signal(ctlStop)
				c.teardown()
				return nil
			}
		default:
			c.signal(ctlDrain)
			if c.isOwnerGoroutine() {
				// Called from inside a method; the loop finishes the drain
				// after the current dispatch returns.
				return nil
			}
			select {
			case <-c.runDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *core) close() error {
	for {
		switch c.state.load() {
		case StateTerminated:
			return ErrTerminated
		case StateIdle:
			if c.state.transition(StateIdle, StateTerminating) {
				c.signal(ctlStop)
				c.teardown()
				return nil
			}
		default:
			c.signal(ctlStop)
			if c.isOwnerGoroutine() {
				return nil
			}
			<-c.runDone
			return nil
		}
	}
}

// attach registers a new channel. Fails once the registry is sealed by
// termination.
func (c *core) attach() (*channel, error) {
	c.mu.Lock()
	if c.sealed {
		c.mu.Unlock()
		return nil, ErrTerminated
	}
	c.nextID++
	ch := newChannel(c, c.nextID)
	c.channels[ch.id] = ch
	c.mu.Unlock()
	c.stats.channels.Add(1)
	c.log.Debug().
		Uint64(`channel`, ch.id).
		Log(`channel attached`)
	return ch, nil
}

// detach removes a closed channel from the registry.
func (c *core) detach(ch *channel) {
	c.mu.Lock()
	_, present := c.channels[ch.id]
	delete(c.channels, ch.id)
	c.mu.Unlock()
	if present {
		c.stats.channels.Add(-1)
		c.log.Debug().
			Uint64(`channel`, ch.id).
			Log(`channel detached`)
	}
}

func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
