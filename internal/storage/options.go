package storage

import "github.com/julianstephens/foodmood/internal/clock"

// Options holds settings shared by every backend.
type Options struct {
	Clock clock.Clock
}

type Option func(*Options)

// WithClock overrides the clock used to stamp saved entries.
func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...Option) Options {
	o := Options{Clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
