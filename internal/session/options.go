package session

import "time"

type options struct {
	settleDelay    time.Duration
	resolveTimeout time.Duration
	autoPlay       bool
	rate           float64
}

func defaultOptions() options {
	return options{
		settleDelay:    500 * time.Millisecond,
		resolveTimeout: 30 * time.Second,
		autoPlay:       true,
		rate:           1.0,
	}
}

// Option configures a Controller
type Option func(*options)

// WithSettleDelay bounds how long Initialize waits for the engine to
// acknowledge a load before starting playback anyway.  The wait ends
// early when the acknowledgment arrives.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) {
		o.settleDelay = d
	}
}

// WithResolveTimeout bounds a single resolution attempt so a dead
// network cannot leave the session loading forever
func WithResolveTimeout(d time.Duration) Option {
	return func(o *options) {
		o.resolveTimeout = d
	}
}

// WithAutoPlay sets the default autoplay behaviour for Initialize calls
// that do not specify their own
func WithAutoPlay(enabled bool) Option {
	return func(o *options) {
		o.autoPlay = enabled
	}
}

// WithRate sets the initial playback rate applied when media loads
func WithRate(rate float64) Option {
	return func(o *options) {
		o.rate = rate
	}
}
