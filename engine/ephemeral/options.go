package ephemeral

import (
	"time"

	"go.uber.org/zap"

	"github.com/methodstudio/statengine"
)

// Default engine configuration values.
const (
	defaultDeadline     = 120 * time.Second
	defaultGracePeriod  = 5 * time.Second
	defaultStderrLimit  = 64 << 10
	defaultScriptSuffix = ".py"
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

	// GracePeriod is how long a timed-out call waits after SIGTERM
	// before SIGKILL during best-effort termination.
	GracePeriod time.Duration

	// StderrLimit bounds the retained interpreter stderr tail.
	StderrLimit int

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

// WithStderrLimit bounds the retained stderr tail. Values <= 0 are ignored.
func WithStderrLimit(n int) EngineOption {
	return func(o *EngineOptions) {
		if n > 0 {
			o.StderrLimit = n
		}
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
