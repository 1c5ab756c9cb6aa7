package wire

import "bytes"

// Splitter reassembles newline-delimited records from a byte stream that
// arrives in arbitrary chunk sizes. Complete records are returned as
// they close; a trailing incomplete fragment is held back across pushes.
//
// The zero value is ready to use. Splitter is not safe for concurrent
// use — one reader goroutine owns it.
type Splitter struct {
	rest []byte
}

// Push appends a chunk and returns every record completed by it, without
// the delimiter. A trailing carriage return is stripped so CRLF streams
// behave like LF streams. Empty records are dropped.
func (s *Splitter) Push(chunk []byte) [][]byte {
	s.rest = append(s.rest, chunk...)

	var records [][]byte
	for {
		i := bytes.IndexByte(s.rest, '\n')
		if i < 0 {
			return records
		}
		line := bytes.TrimSuffix(s.rest[:i], []byte{'\r'})
		s.rest = s.rest[i+1:]
		if len(line) > 0 {
			records = append(records, append([]byte(nil), line...))
		}
	}
}

// Rest returns the held-back incomplete fragment, or nil. Useful when
// the stream closes without a final delimiter — the fragment may still
// be a complete record.
func (s *Splitter) Rest() []byte {
	rest := bytes.TrimSuffix(s.rest, []byte{'\r'})
	if len(rest) == 0 {
		return nil
	}
	return append([]byte(nil), rest...)
}
