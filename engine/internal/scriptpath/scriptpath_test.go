package scriptpath

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		dir    string
		suffix string
		want   string
	}{
		{"empty stays empty", "", "/engines", ".py", ""},
		{"bare name gets dir and suffix", "ttest", "/engines", ".py", "/engines/ttest.py"},
		{"existing extension kept", "ttest.R", "/engines", ".py", "/engines/ttest.R"},
		{"absolute passes through", "/opt/scripts/anova.py", "/engines", ".py", "/opt/scripts/anova.py"},
		{"no dir leaves relative", "efa", "", ".py", "efa.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.ref, tt.dir, tt.suffix); got != tt.want {
				t.Errorf("Resolve(%q, %q, %q) = %q, want %q", tt.ref, tt.dir, tt.suffix, got, tt.want)
			}
		})
	}
}
