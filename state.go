package gated

import "sync/atomic"

// State enumerates the owner lifecycle. Transitions are one way: Idle to
// Running to Terminating to Terminated, with Idle to Terminating permitted
// for owners shut down before ever running.
type State int32

const (
	// StateIdle is the state between construction and the first Run.
	StateIdle State = iota
	// StateRunning means the dispatch loop is active.
	StateRunning
	// StateTerminating means shutdown has begun; intake is stopped.
	StateTerminating
	// StateTerminated is terminal.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// lifecycle is the atomic state machine guarding the transitions above.
type lifecycle struct {
	v atomic.Int32
}

func (l *lifecycle) load() State { return State(l.v.Load()) }

func (l *lifecycle) store(s State) { l.v.Store(int32(s)) }

func (l *lifecycle) transition(from, to State) bool {
	return l.v.CompareAndSwap(int32(from), int32(to))
}
