package persistent

import (
	"time"

	"go.uber.org/zap"

	"github.com/methodstudio/statengine"
)

// Default engine configuration values.
const (
	defaultDeadline       = 120 * time.Second
	defaultGracePeriod    = 5 * time.Second
	defaultMaxMessageSize = 4 << 20 // response records can carry bootstrap tables and plots
	defaultStderrLimit    = 64 << 10
	defaultScriptSuffix   = ".py"
	handshakeTimeout      = 30 * time.Second
)

// EngineOptions holds resolved construction-time configuration.
type EngineOptions struct {
	// Binary is the interpreter wrapper executable name or path.
	Binary string

	// Args are arguments passed to the binary (e.g. the wrapper script).
	Args []string

	// ScriptDir is where bundled analysis scripts live. Relative
	// Request.ScriptPath values resolve against it.
	ScriptDir string

	// ScriptSuffix is appended to extensionless script references.
	ScriptSuffix string

	// DefaultDeadline bounds the response wait when a request carries
	// no deadline of its own.
	DefaultDeadline time.Duration

	// GracePeriod is how long Stop waits after SIGTERM before SIGKILL.
	GracePeriod time.Duration

	// MaxMessageSize is the maximum response record size in bytes.
	MaxMessageSize int

	// StderrLimit bounds the retained interpreter stderr tail.
	StderrLimit int

	// HandshakeScript, when non-empty, is executed during Initialize;
	// the engine only becomes Ready once it succeeds. Leave empty for
	// wrappers that need no warm-up.
	HandshakeScript string

	// PackageProbe builds the dialect-specific package-availability
	// probe script. Defaults to the Python wrapper probe.
	PackageProbe func(pkg string) string

	// Logger receives engine lifecycle and dispatch events.
	Logger *zap.Logger
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*EngineOptions)

// WithBinary sets the interpreter executable name or path.
func WithBinary(binary string) EngineOption {
	return func(o *EngineOptions) {
		if binary != "" {
			o.Binary = binary
		}
	}
}

// WithArgs sets arguments passed to the binary.
func WithArgs(args ...string) EngineOption {
	return func(o *EngineOptions) {
		o.Args = args
	}
}

// WithScriptDir sets the bundled-script directory.
func WithScriptDir(dir string) EngineOption {
	return func(o *EngineOptions) {
		o.ScriptDir = dir
	}
}

// WithScriptSuffix sets the extension appended to bare script names.
func WithScriptSuffix(suffix string) EngineOption {
	return func(o *EngineOptions) {
		if suffix != "" {
			o.ScriptSuffix = suffix
		}
	}
}

// WithDefaultDeadline sets the response deadline for requests that
// carry none. Values <= 0 are ignored.
func WithDefaultDeadline(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.DefaultDeadline = d
		}
	}
}

// WithGracePeriod sets the SIGTERM→SIGKILL grace period.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithMaxMessageSize sets the maximum response record size in bytes.
// Values <= 0 are ignored.
func WithMaxMessageSize(n int) EngineOption {
	return func(o *EngineOptions) {
		if n > 0 {
			o.MaxMessageSize = n
		}
	}
}

// WithStderrLimit bounds the retained stderr tail. Values <= 0 are ignored.
func WithStderrLimit(n int) EngineOption {
	return func(o *EngineOptions) {
		if n > 0 {
			o.StderrLimit = n
		}
	}
}

// WithHandshakeScript sets a warm-up script run during Initialize.
func WithHandshakeScript(script string) EngineOption {
	return func(o *EngineOptions) {
		o.HandshakeScript = script
	}
}

// WithPackageProbe sets the dialect-specific probe script builder.
func WithPackageProbe(probe func(pkg string) string) EngineOption {
	return func(o *EngineOptions) {
		if probe != nil {
			o.PackageProbe = probe
		}
	}
}

// WithLogger sets the engine logger. Nil is ignored.
func WithLogger(l *zap.Logger) EngineOption {
	return func(o *EngineOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

func resolveEngineOptions(opts ...EngineOption) EngineOptions {
	o := EngineOptions{
		ScriptSuffix:    defaultScriptSuffix,
		DefaultDeadline: defaultDeadline,
		GracePeriod:     defaultGracePeriod,
		MaxMessageSize:  defaultMaxMessageSize,
		StderrLimit:     defaultStderrLimit,
		PackageProbe:    statengine.PythonPackageProbe,
		Logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
