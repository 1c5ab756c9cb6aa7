package errfmt

import (
	"strings"
	"testing"
)

func TestTruncate_ShortPassthrough(t *testing.T) {
	result := Truncate("lavaan ERROR: missing observed variables")
	if result != "lavaan ERROR: missing observed variables" {
		t.Errorf("Truncate() = %q, want input unchanged", result)
	}
}

func TestTruncate_LongMessage(t *testing.T) {
	long := strings.Repeat("x", MaxLen+500)
	result := Truncate(long)
	if len(result) > MaxLen {
		t.Errorf("len(result) = %d, want <= %d", len(result), MaxLen)
	}
}

func TestTruncate_UTF8Boundary(t *testing.T) {
	prefix := strings.Repeat("x", MaxLen-2)
	input := prefix + "\U0001F600" // 4-byte rune straddles the limit
	result := Truncate(input)
	if len(result) > MaxLen {
		t.Errorf("len(result) = %d, want <= %d", len(result), MaxLen)
	}
	for i, r := range result {
		if r == '�' {
			t.Errorf("invalid UTF-8 at byte %d", i)
			break
		}
	}
}
