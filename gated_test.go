package gated

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// intSet is a deliberately non-thread-safe ordered set, the kind of value
// this package exists to confine.
type intSet struct {
	items []int
}

func newIntSet() (*intSet, error) { return &intSet{}, nil }

func (s *intSet) insert(n int) bool {
	i := sort.SearchInts(s.items, n)
	if i < len(s.items) && s.items[i] == n {
		return false
	}
	s.items = append(s.items, 0)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = n
	return true
}

var errEmptySet = errors.New("empty set")

func intSetMethods() Methods[*intSet] {
	return Methods[*intSet]{
		"insert": func(s *intSet, args []any) (any, error) {
			return s.insert(args[0].(int)), nil
		},
		"add": func(s *intSet, args []any) (any, error) {
			s.insert(args[0].(int))
			return Self, nil
		},
		"has": func(s *intSet, args []any) (any, error) {
			n := args[0].(int)
			i := sort.SearchInts(s.items, n)
			return i < len(s.items) && s.items[i] == n, nil
		},
		"len": func(s *intSet, args []any) (any, error) {
			return len(s.items), nil
		},
		"min": func(s *intSet, args []any) (any, error) {
			if len(s.items) == 0 {
				return nil, errEmptySet
			}
			return s.items[0], nil
		},
		"items": func(s *intSet, args []any) (any, error) {
			return s.items, nil
		},
		"boom": func(s *intSet, args []any) (any, error) {
			panic(args[0])
		},
	}
}

// startOwner builds an owner over a fresh intSet and runs its dispatch loop
// for the duration of the test.
func startOwner(t *testing.T, opts ...Option) *Owner[*intSet] {
	t.Helper()
	o, err := New(newIntSet, intSetMethods(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runDone := make(chan error, 1)
	go func() { runDone <- o.Run(context.Background()) }()
	// A Close that lands before the goroutine starts would terminate the
	// owner from idle and make Run report ErrTerminated, so hand the owner
	// over only once dispatch is up.
	waitFor(t, func() bool { return o.State() == StateRunning })
	t.Cleanup(func() {
		_ = o.Close()
		if err := <-runDone; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return o
}

// idleOwner builds an owner whose Run is never started, for exercising
// pre-dispatch and never-ran behavior.
func idleOwner(t *testing.T, opts ...Option) *Owner[*intSet] {
	t.Helper()
	o, err := New(newIntSet, intSetMethods(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
