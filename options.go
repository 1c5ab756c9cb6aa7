package statengine

import "time"

// Options holds resolved per-call configuration for the Run helpers.
type Options struct {
	// ID overrides the generated request id.
	ID string

	// Deadline overrides the engine's default response deadline.
	Deadline time.Duration

	// Packages lists interpreter libraries the script requires.
	Packages []string
}

// Option configures a single Run call.
type Option func(*Options)

// WithID sets an explicit request id instead of a generated one.
func WithID(id string) Option {
	return func(o *Options) {
		if id != "" {
			o.ID = id
		}
	}
}

// WithDeadline bounds the wait for this call's response.
// Values <= 0 are ignored.
func WithDeadline(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Deadline = d
		}
	}
}

// WithPackages declares interpreter libraries the script requires.
func WithPackages(pkgs ...string) Option {
	return func(o *Options) {
		o.Packages = pkgs
	}
}

// ResolveOptions applies opts over zero-valued Options.
// Nil options are skipped.
func ResolveOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
