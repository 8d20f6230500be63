package gated

import "github.com/joeycumines/logiface"

// ownerOptions holds configuration resolved from Option values.
type ownerOptions struct {
	codec Codec
	log   *logiface.Logger[logiface.Event]
}

// Option configures an Owner at construction.
type Option interface {
	applyOwner(*ownerOptions) error
}

// ownerOptionImpl implements Option.
type ownerOptionImpl struct {
	applyOwnerFunc func(*ownerOptions) error
}

func (o *ownerOptionImpl) applyOwner(opts *ownerOptions) error {
	return o.applyOwnerFunc(opts)
}

// WithCodec sets the codec applied to values crossing the boundary.
// The default is RawCodec.
func WithCodec(codec Codec) Option {
	return &ownerOptionImpl{func(opts *ownerOptions) error {
		opts.codec = codec
		return nil
	}}
}

// WithLogger sets the logger used by the owner. Accepts the output of
// logiface.Logger.Logger, e.g. from stumpy or any other logiface backend.
// The default is no logging; a nil logger is likewise silently disabled.
func WithLogger(log *logiface.Logger[logiface.Event]) Option {
	return &ownerOptionImpl{func(opts *ownerOptions) error {
		opts.log = log
		return nil
	}}
}

// resolveOwnerOptions applies Option instances to ownerOptions.
func resolveOwnerOptions(opts []Option) (*ownerOptions, error) {
	cfg := &ownerOptions{
		codec: RawCodec{}, // default
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyOwner(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
