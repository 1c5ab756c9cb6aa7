package statengine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RunScript executes inline interpreter source against an engine, with a
// generated request id unless [WithID] overrides it.
func RunScript(ctx context.Context, e Engine, script string, bindings map[string]Value, opts ...Option) Response {
	o := ResolveOptions(opts...)
	return e.Execute(ctx, Request{
		ID:       requestID(o),
		Script:   script,
		Bindings: bindings,
		Packages: o.Packages,
		Deadline: o.Deadline,
	})
}

// RunNamedScript executes a bundled analysis script identified by its
// analysis spec id (e.g. "descriptives", "ttest-independent"). Variant
// spec ids contribute derived bindings — "ttest-independent" injects
// test_type="independent" — so one script file serves several dialogs.
func RunNamedScript(ctx context.Context, e Engine, specID string, bindings map[string]Value, opts ...Option) Response {
	o := ResolveOptions(opts...)
	id := requestID(o)

	name, err := ResolveScriptName(specID)
	if err != nil {
		return Fail(id, FailureScript, "%v", err)
	}

	merged := make(map[string]Value, len(bindings)+1)
	for k, v := range bindings {
		merged[k] = v
	}
	for k, v := range SpecBindings(specID) {
		merged[k] = v
	}

	return e.Execute(ctx, Request{
		ID:         id,
		ScriptPath: name,
		Bindings:   merged,
		Packages:   o.Packages,
		Deadline:   o.Deadline,
	})
}

// PackageAvailable reports whether the named interpreter library resolves
// in the engine's target interpreter. The engine must implement [Prober]
// to supply the dialect-specific probe script.
func PackageAvailable(ctx context.Context, e Engine, pkg string) (bool, error) {
	prober, ok := e.(Prober)
	if !ok {
		return false, fmt.Errorf("statengine: engine %T cannot build package probes", e)
	}

	resp := RunScript(ctx, e, prober.ProbeScript(pkg), nil)
	if !resp.OK() {
		return false, resp.Failure
	}
	b, ok := resp.Value.(Bool)
	if !ok {
		return false, fmt.Errorf("statengine: package probe for %q returned %T, want Bool", pkg, resp.Value)
	}
	return bool(b), nil
}

func requestID(o Options) string {
	if o.ID != "" {
		return o.ID
	}
	return uuid.NewString()
}
