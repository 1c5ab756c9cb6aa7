package statengine

import "errors"

// Sentinel errors for engine operations.
var (
	// ErrUnavailable indicates the interpreter cannot start
	// (binary not found, not executable, etc.).
	ErrUnavailable = errors.New("statengine: interpreter unavailable")

	// ErrNotReady indicates the engine has not been initialized or has
	// already stopped or crashed.
	ErrNotReady = errors.New("statengine: engine not ready")

	// ErrStopped indicates the engine was stopped while a call was
	// outstanding.
	ErrStopped = errors.New("statengine: engine stopped")

	// ErrDuplicateID indicates a request id collides with a request
	// still outstanding on the same engine instance.
	ErrDuplicateID = errors.New("statengine: duplicate request id")
)

// ExitCode extracts the interpreter exit status from an error chain
// containing a crash [*Failure]. Returns (0, false) when the chain has
// none. Code semantics: positive = exit status, -1 = signal-killed.
func ExitCode(err error) (int, bool) {
	var f *Failure
	if errors.As(err, &f) && f.Kind == FailureCrash {
		return f.ExitCode, true
	}
	return 0, false
}
