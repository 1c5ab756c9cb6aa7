package statengine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedEngine records the request it receives and replies with a
// canned response.
type scriptedEngine struct {
	last  Request
	reply Response
	probe func(pkg string) string
}

func (s *scriptedEngine) Execute(_ context.Context, req Request) Response {
	s.last = req
	reply := s.reply
	if reply.ID == "" {
		reply.ID = req.ID
	}
	return reply
}

func (s *scriptedEngine) Validate() error { return nil }

func (s *scriptedEngine) ProbeScript(pkg string) string {
	if s.probe == nil {
		return PythonPackageProbe(pkg)
	}
	return s.probe(pkg)
}

func TestRunScript(t *testing.T) {
	eng := &scriptedEngine{reply: Response{Value: Number(3)}}
	resp := RunScript(context.Background(), eng, "result = 1 + 2",
		map[string]Value{"x": Number(1)},
		WithDeadline(5*time.Second),
		WithPackages("numpy"))

	if !resp.OK() {
		t.Fatalf("RunScript failed: %v", resp.Failure)
	}
	if eng.last.Script != "result = 1 + 2" {
		t.Errorf("Script = %q", eng.last.Script)
	}
	if eng.last.ID == "" {
		t.Error("request id was not generated")
	}
	if eng.last.Deadline != 5*time.Second {
		t.Errorf("Deadline = %v", eng.last.Deadline)
	}
	if len(eng.last.Packages) != 1 || eng.last.Packages[0] != "numpy" {
		t.Errorf("Packages = %v", eng.last.Packages)
	}
}

func TestRunScript_ExplicitID(t *testing.T) {
	eng := &scriptedEngine{reply: Response{Value: Null{}}}
	RunScript(context.Background(), eng, "pass", nil, WithID("req-7"))
	if eng.last.ID != "req-7" {
		t.Errorf("ID = %q, want req-7", eng.last.ID)
	}
}

func TestRunNamedScript_MergesSpecBindings(t *testing.T) {
	eng := &scriptedEngine{reply: Response{Value: Map{}}}
	RunNamedScript(context.Background(), eng, "ttest-paired", map[string]Value{
		"var1": Text("pre"),
		"var2": Text("post"),
	})

	if eng.last.ScriptPath != "ttest" {
		t.Errorf("ScriptPath = %q, want ttest", eng.last.ScriptPath)
	}
	if got := eng.last.Bindings["test_type"]; got != Text("paired") {
		t.Errorf("test_type = %v, want paired", got)
	}
	if got := eng.last.Bindings["var1"]; got != Text("pre") {
		t.Errorf("var1 = %v, caller bindings must survive the merge", got)
	}
}

func TestRunNamedScript_DerivedBindingWins(t *testing.T) {
	eng := &scriptedEngine{reply: Response{Value: Map{}}}
	RunNamedScript(context.Background(), eng, "ttest-independent", map[string]Value{
		"test_type": Text("paired"),
	})
	if got := eng.last.Bindings["test_type"]; got != Text("independent") {
		t.Errorf("test_type = %v, spec id binding must win", got)
	}
}

func TestRunNamedScript_UnknownSpecID(t *testing.T) {
	eng := &scriptedEngine{}
	resp := RunNamedScript(context.Background(), eng, "manova", nil)
	if resp.OK() {
		t.Fatal("unknown spec id must fail")
	}
	if resp.Failure.Kind != FailureScript {
		t.Errorf("Kind = %v, want FailureScript", resp.Failure.Kind)
	}
	if eng.last.ID != "" {
		t.Error("engine must not be invoked for an unknown spec id")
	}
}

func TestPackageAvailable(t *testing.T) {
	eng := &scriptedEngine{reply: Response{Value: Bool(true)}}
	ok, err := PackageAvailable(context.Background(), eng, "pingouin")
	if err != nil {
		t.Fatalf("PackageAvailable: %v", err)
	}
	if !ok {
		t.Error("PackageAvailable = false, want true")
	}
}

func TestPackageAvailable_FailureSurfacesAsError(t *testing.T) {
	eng := &scriptedEngine{reply: Fail("", FailureCrash, "interpreter died")}
	_, err := PackageAvailable(context.Background(), eng, "numpy")
	if err == nil {
		t.Fatal("want error from failed probe")
	}
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureCrash {
		t.Errorf("err = %v, want *Failure with FailureCrash", err)
	}
}

func TestExitCode(t *testing.T) {
	f := &Failure{Kind: FailureCrash, Message: "gone", ExitCode: 3}
	if code, ok := ExitCode(f); !ok || code != 3 {
		t.Errorf("ExitCode = (%d, %v), want (3, true)", code, ok)
	}
	if _, ok := ExitCode(&Failure{Kind: FailureScript}); ok {
		t.Error("non-crash failures carry no exit code")
	}
	if _, ok := ExitCode(errors.New("plain")); ok {
		t.Error("plain errors carry no exit code")
	}
}

type proberlessEngine struct{}

func (proberlessEngine) Execute(context.Context, Request) Response { return Response{Value: Null{}} }
func (proberlessEngine) Validate() error                           { return nil }

func TestPackageAvailable_RequiresProber(t *testing.T) {
	if _, err := PackageAvailable(context.Background(), proberlessEngine{}, "numpy"); err == nil {
		t.Error("engine without Prober must error")
	}
}
