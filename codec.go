package gated

import (
	"bytes"
	"encoding/gob"
)

// Codec copies values across the confinement boundary. The owner applies
// Copy to every request argument on send and to every successful, non-self
// result on post, and CopyError to every error a method returns. Errors the
// protocol itself raises (unknown method, recovered panics, closed channels)
// are delivered as-is.
//
// Implementations decide how much isolation a copy buys. A Copy or CopyError
// failure fails only the call it occurred on: argument failures surface at
// the sending handle, result failures come back as the call's error.
type Codec interface {
	Copy(v any) (any, error)
	CopyError(err error) error
}

// RawCodec passes values through unchanged. It is the default, and the right
// choice when callers treat transferred values as moved rather than shared;
// the protocol still guarantees the instance itself is only ever touched by
// the owner goroutine. Errors round-trip as the same value, so errors.Is and
// errors.As work across the boundary.
type RawCodec struct{}

func (RawCodec) Copy(v any) (any, error) { return v, nil }

func (RawCodec) CopyError(err error) error { return err }

// GobCodec deep-copies values through an encoding/gob round trip, severing
// all aliasing between caller and instance. Values must be gob-encodable,
// and concrete types crossing as interface values must be registered with
// gob.Register. Method errors are rebuilt as *RemoteError, preserving the
// message only.
type GobCodec struct{}

func (GobCodec) Copy(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	var out any
	if err := gob.NewDecoder(&buf).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (GobCodec) CopyError(err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Message: err.Error()}
}
