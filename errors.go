package gated

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Owner.Run when the dispatch loop is
	// already active on another goroutine.
	ErrAlreadyRunning = errors.New(`gated: owner already running`)

	// ErrTerminated is returned once the owner has terminated, by Run, by
	// Clone, and by sends that race termination.
	ErrTerminated = errors.New(`gated: owner terminated`)

	// ErrChannelClosed is returned by every operation on a closed channel
	// once any remaining posted responses have been consumed. It is fatal to
	// the handle it is returned from and to nothing else.
	ErrChannelClosed = errors.New(`gated: channel closed`)

	// ErrReentrantCall is returned instead of deadlocking when a blocking
	// consumption is attempted on the owner goroutine itself, from inside a
	// dispatched method.
	ErrReentrantCall = errors.New(`gated: blocking call on owner goroutine`)

	// ErrDescriptorClaimed is returned by handle constructors given a
	// Descriptor that already produced a handle.
	ErrDescriptorClaimed = errors.New(`gated: descriptor already claimed`)

	// ErrFuturePending is returned by Future.Result before the future
	// settles.
	ErrFuturePending = errors.New(`gated: future pending`)
)

// UnknownMethodError indicates a call named a method outside the capability
// set fixed when the owner was constructed.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf(`gated: unknown method %q`, e.Method)
}

// PanicError is the error result of a call whose method panicked. The owner
// recovers the panic, so only the offending call fails; dispatch continues.
type PanicError struct {
	// Value is the recovered panic value.
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf(`gated: method panicked: %v`, e.Value)
}

// Unwrap returns the panic value if it was an error, otherwise nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RemoteError stands in for an error that could not itself cross a
// deep-copying codec boundary. Only the message survives; the original
// error value, its type, and anything it wrapped do not.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }
