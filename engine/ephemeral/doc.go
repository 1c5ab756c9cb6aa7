// Package ephemeral implements the spawn-per-call interpreter engine:
// each request gets a fresh subprocess that reads one request record on
// stdin, writes one response record on stdout, and exits.
//
// No correlation table is needed — exactly one request is ever in
// flight on a given subprocess — and every call sees a clean
// interpreter namespace, at the cost of interpreter startup per call.
// When the reply omits an id, the engine backfills the caller's.
package ephemeral
