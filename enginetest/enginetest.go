package enginetest

import (
	"context"
	"testing"
	"time"

	"github.com/methodstudio/statengine"
)

// Config describes the engine under test.
type Config struct {
	// New returns a ready-to-execute engine. Implementations with an
	// Initialize step perform it here; cleanup registers with t.
	New func(t *testing.T) statengine.Engine

	// TrueScript is interpreter source whose result is the boolean true.
	// Defaults to the bundled Python wrapper's dialect.
	TrueScript string

	// HangScript is interpreter source that never returns. Optional;
	// when empty the deadline subtests are skipped.
	HangScript string

	// Timeout bounds each subtest's context. Defaults to 10s.
	Timeout time.Duration
}

func (c Config) trueScript() string {
	if c.TrueScript != "" {
		return c.TrueScript
	}
	return "result = True"
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 10 * time.Second
}

// Run checks the statengine.Engine behavioral contract as subtests.
// A fresh engine is built per subtest so state cannot leak between them.
func Run(t *testing.T, cfg Config) {
	t.Helper()
	if cfg.New == nil {
		t.Fatal("enginetest: Config.New is required")
	}

	t.Run("Validate", func(t *testing.T) {
		if err := cfg.New(t).Validate(); err != nil {
			t.Errorf("Validate on a ready engine = %v, want nil", err)
		}
	})

	t.Run("IDEchoed", func(t *testing.T) {
		resp := execute(t, cfg, statengine.Request{
			ID:     "compliance-id-echo",
			Script: cfg.trueScript(),
		})
		if resp.ID != "compliance-id-echo" {
			t.Errorf("ID = %q, every response must echo its request id", resp.ID)
		}
	})

	t.Run("OutcomeExclusive", func(t *testing.T) {
		resp := execute(t, cfg, statengine.Request{
			ID:     "compliance-outcome",
			Script: cfg.trueScript(),
		})
		switch {
		case resp.Failure == nil && resp.Value == nil:
			t.Error("response carries neither value nor failure")
		case resp.Failure != nil && resp.Value != nil:
			t.Error("response carries both value and failure")
		}
	})

	t.Run("SuccessValue", func(t *testing.T) {
		resp := execute(t, cfg, statengine.Request{
			ID:     "compliance-success",
			Script: cfg.trueScript(),
		})
		if !resp.OK() {
			t.Fatalf("TrueScript failed: %v", resp.Failure)
		}
		if resp.Value != statengine.Bool(true) {
			t.Errorf("Value = %v (%T), want Bool(true)", resp.Value, resp.Value)
		}
	})

	t.Run("SequentialCalls", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout())
		defer cancel()
		eng := cfg.New(t)
		for i := 0; i < 3; i++ {
			resp := eng.Execute(ctx, statengine.Request{
				ID:     "compliance-seq-" + string(rune('a'+i)),
				Script: cfg.trueScript(),
			})
			if !resp.OK() {
				t.Fatalf("call %d: %v", i, resp.Failure)
			}
		}
	})

	t.Run("DeadlineExpiry", func(t *testing.T) {
		if cfg.HangScript == "" {
			t.Skip("no HangScript configured")
		}
		resp := execute(t, cfg, statengine.Request{
			ID:       "compliance-deadline",
			Script:   cfg.HangScript,
			Deadline: 200 * time.Millisecond,
		})
		if resp.OK() {
			t.Fatal("HangScript must not succeed under a 200ms deadline")
		}
		if resp.Failure.Kind != statengine.FailureTimeout {
			t.Errorf("Kind = %v, want timeout", resp.Failure.Kind)
		}
		if resp.ID != "compliance-deadline" {
			t.Errorf("ID = %q, timeout responses echo the request id too", resp.ID)
		}
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		if cfg.HangScript == "" {
			t.Skip("no HangScript configured")
		}
		eng := cfg.New(t)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		resp := eng.Execute(ctx, statengine.Request{
			ID:     "compliance-cancel",
			Script: cfg.HangScript,
		})
		if resp.OK() || resp.Failure.Kind != statengine.FailureTimeout {
			t.Errorf("resp = %+v, want timeout failure on context expiry", resp)
		}
	})

	if _, ok := cfg.New(t).(statengine.Prober); ok {
		t.Run("Prober", func(t *testing.T) {
			eng := cfg.New(t).(statengine.Prober)
			if eng.ProbeScript("numpy") == "" {
				t.Error("ProbeScript must return a non-empty script")
			}
		})
	}
}

func execute(t *testing.T, cfg Config, req statengine.Request) statengine.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout())
	defer cancel()
	return cfg.New(t).Execute(ctx, req)
}
