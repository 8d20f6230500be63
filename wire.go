package gated

// request is the envelope a handle submits to the owner's ingress. Arguments
// have already been through the codec by the time one is constructed.
type request struct {
	ch           *channel
	method       string
	args         []any
	wantResponse bool
}

// response is the envelope the owner posts back. Exactly one of the three
// fields is meaningful: err for failed calls, self for calls that return the
// instance, value otherwise.
type response struct {
	value any
	self  bool
	err   error
}

// decodeResponse maps a response envelope onto a consumer-facing result.
// Self-referential results surface as the consuming handle, never as the
// confined instance itself.
func decodeResponse(r response, handle any) (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.self {
		return handle, nil
	}
	return r.value, nil
}

// selfSentinel is the concrete type behind Self. Detection is by type
// assertion, never equality, so methods may return non-comparable values.
type selfSentinel struct{}

// Self is the marker a method returns to mean "this call returns the
// instance". The owner never lets the instance cross the boundary; each
// handle decodes the marker as the handle itself, so fluent APIs chain
// client side.
var Self any = selfSentinel{}
