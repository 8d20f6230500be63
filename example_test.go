package gated_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	gated "github.com/joeycumines/go-gated"
)

type journal struct {
	entries []string
}

func newJournal() (*journal, error) { return &journal{}, nil }

func journalMethods() gated.Methods[*journal] {
	return gated.Methods[*journal]{
		"append": func(j *journal, args []any) (any, error) {
			j.entries = append(j.entries, args[0].(string))
			return gated.Self, nil
		},
		"count": func(j *journal, args []any) (any, error) {
			return len(j.entries), nil
		},
		"sorted": func(j *journal, args []any) (any, error) {
			out := make([]string, len(j.entries))
			copy(out, j.entries)
			sort.Strings(out)
			return out, nil
		},
	}
}

// Example demonstrates confining an instance to an owner goroutine and
// driving it through a blocking handle.
//
// This shows the fundamental pattern of:
// 1. Creating an owner with New()
// 2. Running the dispatch loop in a goroutine
// 3. Claiming a handle from the owner's descriptor
// 4. Calling methods, including fluent chaining via Self returns
func Example() {
	owner, err := gated.New(newJournal, journalMethods())
	if err != nil {
		fmt.Printf("failed to create owner: %v\n", err)
		return
	}
	go func() { _ = owner.Run(context.Background()) }()
	defer owner.Close()

	h, err := gated.NewBlockingHandle(owner.Descriptor())
	if err != nil {
		fmt.Printf("failed to claim handle: %v\n", err)
		return
	}

	// append returns the receiving handle, so calls chain fluently
	v, err := h.Call("append", "second")
	if err != nil {
		fmt.Printf("append failed: %v\n", err)
		return
	}
	if _, err := v.(*gated.BlockingHandle).Call("append", "first"); err != nil {
		fmt.Printf("append failed: %v\n", err)
		return
	}

	count, _ := h.Call("count")
	fmt.Printf("count: %v\n", count)

	sorted, _ := h.Call("sorted")
	fmt.Printf("sorted: %v\n", sorted)

	// Output:
	// count: 2
	// sorted: [first second]
}

// ExampleAsyncHandle demonstrates pipelined submission with futures.
func ExampleAsyncHandle() {
	owner, _ := gated.New(newJournal, journalMethods())
	go func() { _ = owner.Run(context.Background()) }()
	defer owner.Close()

	h, _ := gated.NewAsyncHandle(owner.Descriptor())

	// Call never blocks; settlement is observed through the future
	f := h.Call("append", "entry")
	if _, err := f.Wait(); err != nil {
		fmt.Printf("append failed: %v\n", err)
		return
	}

	v, _ := h.Call("count").Wait()
	fmt.Printf("count: %v\n", v)

	// Output:
	// count: 1
}

// ExamplePollingHandle demonstrates queueing several requests and
// collecting the responses later, in submission order.
func ExamplePollingHandle() {
	owner, _ := gated.New(newJournal, journalMethods())
	go func() { _ = owner.Run(context.Background()) }()
	defer owner.Close()

	h, _ := gated.NewPollingHandle(owner.Descriptor())

	_ = h.Call("append", "a")
	_ = h.Call("append", "b")
	_ = h.Call("count")

	// responses arrive in the order the calls were made
	_, _ = h.Recv()
	_, _ = h.Recv()
	v, _ := h.Recv()
	fmt.Printf("count: %v\n", v)

	// Output:
	// count: 2
}

// ExampleOwner_Clone demonstrates minting independent channels so
// multiple goroutines can share one confined instance.
func ExampleOwner_Clone() {
	owner, _ := gated.New(newJournal, journalMethods())
	go func() { _ = owner.Run(context.Background()) }()
	defer owner.Close()

	var wg sync.WaitGroup
	for _, entry := range []string{"gamma", "alpha", "beta"} {
		d, err := owner.Clone()
		if err != nil {
			fmt.Printf("clone failed: %v\n", err)
			return
		}
		wg.Add(1)
		go func(d *gated.Descriptor, entry string) {
			defer wg.Done()
			h, err := gated.NewBlockingHandle(d)
			if err != nil {
				return
			}
			defer h.Close()
			_, _ = h.Call("append", entry)
		}(d, entry)
	}
	wg.Wait()

	h, _ := gated.NewBlockingHandle(owner.Descriptor())
	v, _ := h.Call("sorted")
	fmt.Printf("sorted: %v\n", v)

	// Output:
	// sorted: [alpha beta gamma]
}
