package statengine

import "context"

// Engine executes analysis requests against an external interpreter.
//
// Implementations include the long-lived multiplexed engine
// (engine/persistent) and the spawn-per-call engine (engine/ephemeral).
// Use Validate to check prerequisites before the first Execute.
type Engine interface {
	// Execute runs one request and resolves it to a Response. Execute
	// never returns an error: every failure mode (spawn, timeout,
	// crash, decode, script error, disposal) is represented as a
	// Failure outcome on the Response so the calling UI always has
	// something to render.
	Execute(ctx context.Context, req Request) Response

	// Validate checks that the engine's interpreter is available —
	// for subprocess engines, that the binary exists and is executable.
	Validate() error
}

// Prober is implemented by engines that can build an interpreter-dialect
// package-availability probe script. See [PackageAvailable].
type Prober interface {
	// ProbeScript returns a script that assigns a boolean to `result`:
	// true when the named package resolves in the target interpreter.
	ProbeScript(pkg string) string
}
