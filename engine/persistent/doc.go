// Package persistent implements the long-lived interpreter engine: one
// subprocess serves many sequential requests over its stdin/stdout,
// multiplexed by request id.
//
// The engine owns a correlation table mapping each outstanding request
// id to a one-shot result channel and a deadline timer. A read loop
// decodes response records line-by-line and resolves the matching entry;
// unmatched records are dropped. Every pending call resolves exactly
// once — by matching response, deadline, engine stop, or process crash.
//
// Although the wire protocol could pipeline requests by id, interpreter
// scripts bind request data into one shared global namespace, so the
// engine serializes execution: at most one script runs at a time.
// Callers needing parallel analyses should run multiple engines, each
// with its own interpreter state.
//
// The engine does not auto-restart after a crash; callers observe the
// Crashed state and re-Initialize.
package persistent
