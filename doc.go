// Package gated confines a non-thread-safe value to a single owner goroutine
// and lets any number of client goroutines operate on it through message
// passing, without sharing memory with it.
//
// # Architecture
//
// An [Owner] holds exactly one instance, constructed once by a factory, and a
// fixed capability set of named methods. [Owner.Run] is the dispatch loop: it
// pops request envelopes from a single ingress queue, executes them strictly
// one at a time against the instance, and posts response envelopes back to
// the channel each request arrived on. The instance is never touched by any
// other goroutine.
//
// Clients hold handles, each bound to its own channel. A channel pairs an
// unbounded response queue with a shared counter: the owner increments the
// counter as it posts, consumers decrement as they take, and a token channel
// wakes parked consumers so nothing ever spins. Three handle flavors consume
// the same envelopes three ways:
//
//   - [BlockingHandle]: Call parks the caller until its response arrives.
//   - [AsyncHandle]: Call returns a [Future]; a listener goroutine settles
//     futures in request order as responses arrive.
//   - [PollingHandle]: Call only sends; the caller collects results later
//     with TryRecv or Recv.
//
// [Owner.Clone] mints additional channels bound to the same instance, one
// per handle, each delivered as a single-use [Descriptor] that can be handed
// to another goroutine; handles carry a Clone method too, so a goroutine
// holding only a handle can mint siblings. Requests from all channels funnel
// into the one ingress queue, so requests on a single channel are answered
// in order while channels interleave in arrival order.
//
// # Ordering and Liveness
//
// Per channel, responses match requests by position: the Nth response
// answers the Nth response-bearing request. There are no request IDs and no
// cancellation of submitted work. Fire-and-forget requests (Notify) produce
// no response and never touch the counter. Sends never block, regardless of
// how far behind any consumer is; only explicit consumption blocks, and only
// on the consumer's own channel.
//
// # Values Crossing the Boundary
//
// A [Codec] copies every request argument and every non-self response value
// across the boundary. The default [RawCodec] shares values as-is, which is
// safe so long as callers treat transferred values as moved. [GobCodec]
// instead deep-copies through encoding/gob. A method returns [Self] to hand
// back the instance without exposing it; each handle decodes that marker as
// the handle itself, so fluent APIs chain on the client side.
//
// # Lifecycle
//
// Responses flow only while Run is active. [Owner.Shutdown] stops intake,
// executes the remaining backlog, then closes every channel; [Owner.Close]
// stops without draining. Closing a channel, or terminating the owner, wakes
// every parked consumer with [ErrChannelClosed] once posted responses have
// been drained. A terminated owner stays terminated.
//
// # Thread Safety
//
// Every exported type is safe for concurrent use, with one deliberate
// exception: a handle serves a single logical caller sequence. Concurrent
// calls on one handle do not corrupt state, but response matching is by
// position, so interleaving callers cannot tell whose result is whose. Use
// Clone to give each goroutine its own handle.
package gated
