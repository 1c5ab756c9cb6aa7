// Package statengine provides the integration layer between a statistics
// workbench and its external script interpreters.
//
// An interpreter is an OS subprocess that reads newline-delimited JSON
// requests on stdin and writes one JSON response per request on stdout.
// statengine frames and correlates that traffic, marshals host values into
// the interpreter's composite types (factors, data frames, matrices) and
// back, and manages the subprocess lifecycle.
//
// # Core Types
//
//   - [Engine] — executes analysis requests against an interpreter
//   - [Request] / [Response] — one correlated round trip
//   - [Value] — the closed set of marshalable host values
//   - [Failure] — the uniform failure outcome carried by responses
//
// # Lifecycle Models
//
// Two engine implementations back the same [Engine] surface:
//
//   - engine/persistent — one long-lived subprocess serves many sequential
//     requests, multiplexed by request id
//   - engine/ephemeral — one subprocess is spawned per request and exits
//     after producing its single response
//
// Callers should not depend on which model backs a given engine instance.
//
// # Quick Start
//
//	eng := ephemeral.New(
//	    ephemeral.WithBinary("python3"),
//	    ephemeral.WithArgs("engines/wrapper.py"),
//	)
//	resp := statengine.RunScript(ctx, eng, "result = x + 1",
//	    map[string]statengine.Value{"x": statengine.Number(41)})
//	if !resp.OK() {
//	    log.Fatal(resp.Failure)
//	}
package statengine
