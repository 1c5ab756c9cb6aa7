// Package errfmt provides shared failure-text bounding for engines.
package errfmt

import "unicode/utf8"

// MaxLen caps diagnostic text (interpreter errors, stderr tails) carried
// on failure responses, to prevent unbounded propagation.
const MaxLen = 4096

// Truncate caps s at MaxLen bytes, backtracking to a valid UTF-8 boundary.
func Truncate(s string) string {
	if len(s) <= MaxLen {
		return s
	}
	end := MaxLen
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
