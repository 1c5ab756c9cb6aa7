package statengine

import (
	"fmt"
	"time"
)

// Request is one analysis round trip through an interpreter.
type Request struct {
	// ID correlates the response to this request. Caller-generated;
	// must be unique among requests outstanding on one engine instance.
	ID string

	// Script is inline interpreter source. The script reads Bindings as
	// variables in its evaluation scope and assigns its return value to
	// the well-known `result` variable.
	Script string

	// ScriptPath names a bundled script file for the interpreter-side
	// wrapper to load instead of inline source. Relative paths are
	// resolved against the engine's configured script directory.
	ScriptPath string

	// Bindings are named values injected into the script's scope.
	Bindings map[string]Value

	// Packages lists interpreter libraries the script requires.
	Packages []string

	// Deadline bounds the wait for a response. Zero means the engine's
	// default. A fired deadline stops the wait only — the interpreter
	// may still be computing.
	Deadline time.Duration
}

// FailureKind classifies a Failure for programmatic handling.
type FailureKind string

const (
	// FailureSpawn — the subprocess could not start.
	FailureSpawn FailureKind = "spawn"

	// FailureTimeout — the deadline elapsed with no response.
	FailureTimeout FailureKind = "timeout"

	// FailureCrash — the subprocess exited or closed unexpectedly.
	FailureCrash FailureKind = "crash"

	// FailureDecode — interpreter output did not parse as a response.
	FailureDecode FailureKind = "decode"

	// FailureScript — the interpreter ran the request but the script
	// itself raised an error.
	FailureScript FailureKind = "script"

	// FailureDisposed — the engine was stopped while the call was
	// outstanding, or is not ready to accept calls.
	FailureDisposed FailureKind = "disposed"
)

// Failure is the uniform failure outcome of a Response. It implements
// error for convenience, but engines never return it as one — failures
// travel inside the Response so every Execute call resolves to a value.
type Failure struct {
	Kind    FailureKind
	Message string

	// PartialConsoleText is console output captured before the failure,
	// best-effort (in the persistent model stderr is not reliably
	// correlated to a specific request).
	PartialConsoleText string

	// ExitCode is the subprocess exit status for FailureCrash.
	ExitCode int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("statengine: %s: %s", f.Kind, f.Message)
}

// Response is the resolved outcome of a Request. ID always echoes the
// originating request's id. Exactly one of the success fields or Failure
// is populated.
type Response struct {
	ID string

	// Value is the script's result on success, nil on failure.
	Value Value

	// ConsoleText is output the script printed while running.
	ConsoleText string

	// Plots are base64-encoded PNG images the script produced.
	Plots []string

	// Failure is non-nil when the call failed.
	Failure *Failure
}

// OK reports whether the response carries a success outcome.
func (r Response) OK() bool { return r.Failure == nil }

// Fail builds a failure Response for the given request id.
func Fail(id string, kind FailureKind, format string, args ...any) Response {
	return Response{
		ID:      id,
		Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)},
	}
}
