// Package wire implements the interpreter wire protocol: newline-delimited
// JSON records on stdin/stdout.
//
// A request record carries the request id, script source (or a bundled
// script path), marshaled bindings, and required packages. A response
// record carries the id and either a success payload (result value,
// console output, plots) or an error payload.
//
// The package performs no I/O. [EncodeRequest] produces one self-delimited
// record; [DecodeResponse] parses exactly one and never fails past the
// boundary — malformed payloads come back as decode-failure responses
// carrying a bounded preview of the raw text. [Splitter] reassembles
// records from arbitrarily chunked reads.
package wire
