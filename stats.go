package gated

import "sync/atomic"

type stats struct {
	requests       atomic.Uint64
	responses      atomic.Uint64
	errors         atomic.Uint64
	notifies       atomic.Uint64
	unknownMethods atomic.Uint64
	panics         atomic.Uint64
	dropped        atomic.Uint64
	channels       atomic.Int64
}

// Stats is a point-in-time snapshot of owner activity. Individual fields are
// each consistent; the snapshot as a whole is not atomic.
type Stats struct {
	// Requests counts envelopes accepted into the ingress queue.
	Requests uint64
	// Responses counts responses posted to channels.
	Responses uint64
	// Errors counts posted responses that carried an error.
	Errors uint64
	// Notifies counts fire-and-forget requests executed.
	Notifies uint64
	// UnknownMethods counts dispatch-side unknown method rejections. These
	// normally fail at the handle before sending; a nonzero count means a
	// raced or hand-built envelope got through.
	UnknownMethods uint64
	// Panics counts dispatched methods that panicked.
	Panics uint64
	// Dropped counts responses discarded because their channel had closed.
	Dropped uint64
	// Channels is the number of channels currently attached.
	Channels int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Requests:       s.requests.Load(),
		Responses:      s.responses.Load(),
		Errors:         s.errors.Load(),
		Notifies:       s.notifies.Load(),
		UnknownMethods: s.unknownMethods.Load(),
		Panics:         s.panics.Load(),
		Dropped:        s.dropped.Load(),
		Channels:       s.channels.Load(),
	}
}
