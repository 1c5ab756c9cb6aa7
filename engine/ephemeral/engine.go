//go:build !windows

package ephemeral

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/methodstudio/statengine"
	"github.com/methodstudio/statengine/engine/internal/errfmt"
	"github.com/methodstudio/statengine/engine/internal/procutil"
	"github.com/methodstudio/statengine/engine/internal/scriptpath"
	"github.com/methodstudio/statengine/wire"
)

// Engine is the spawn-per-call interpreter engine. It holds no runtime
// state between calls; construction never fails and no Initialize step
// exists.
type Engine struct {
	opts EngineOptions
	log  *zap.Logger
}

var _ statengine.Engine = (*Engine)(nil)
var _ statengine.Prober = (*Engine)(nil)

// New creates an ephemeral engine.
func New(opts ...EngineOption) *Engine {
	o := resolveEngineOptions(opts...)
	return &Engine{opts: o, log: o.Logger}
}

// Validate checks that the interpreter binary is configured and on PATH.
func (e *Engine) Validate() error {
	_, err := e.resolveBinary()
	return err
}

func (e *Engine) resolveBinary() (string, error) {
	if e.opts.Binary == "" {
		return "", fmt.Errorf("%w: no binary configured (use WithBinary)", statengine.ErrUnavailable)
	}
	resolved, err := exec.LookPath(e.opts.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", statengine.ErrUnavailable, e.opts.Binary, err)
	}
	return resolved, nil
}

// ProbeScript implements statengine.Prober.
func (e *Engine) ProbeScript(pkg string) string {
	return e.opts.PackageProbe(pkg)
}

// Execute spawns a fresh interpreter, writes the encoded request to its
// stdin, accumulates stdout until the process exits, and decodes the
// last record as the response. Execute never returns an error — every
// failure mode comes back as a Failure outcome on the Response.
func (e *Engine) Execute(ctx context.Context, req statengine.Request) statengine.Response {
	binary, err := e.resolveBinary()
	if err != nil {
		return statengine.Fail(req.ID, statengine.FailureSpawn, "%v", err)
	}

	req.ScriptPath = scriptpath.Resolve(req.ScriptPath, e.opts.ScriptDir, e.opts.ScriptSuffix)
	payload, err := wire.EncodeRequest(req)
	if err != nil {
		return statengine.Fail(req.ID, statengine.FailureScript, "%v", err)
	}

	cmd := exec.Command(binary, e.opts.Args...)
	// Tail buffers are mutex-guarded, so a timed-out call can read them
	// while the still-live subprocess keeps writing.
	stdout := &procutil.Tail{}
	stderr := &procutil.Tail{Limit: e.opts.StderrLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return statengine.Fail(req.ID, statengine.FailureSpawn, "stdin pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return statengine.Fail(req.ID, statengine.FailureSpawn, "start %s: %v", binary, err)
	}

	e.log.Debug("interpreter spawned",
		zap.String("id", req.ID),
		zap.Int("pid", cmd.Process.Pid))

	// A write error usually means the process died instantly; the exit
	// path below reports that better than the pipe error would.
	if _, err := stdin.Write(payload); err != nil {
		e.log.Debug("write request failed", zap.String("id", req.ID), zap.Error(err))
	}
	_ = stdin.Close()

	done := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(done)
	}()

	deadline := req.Deadline
	if deadline <= 0 {
		deadline = e.opts.DefaultDeadline
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-done:
		return e.decode(req.ID, stdout, stderr, waitErr)
	case <-timer.C:
		e.abandon(cmd, done, req.ID, "deadline")
		return failTimeout(req.ID, stderr,
			"no response within %s; termination attempted", deadline)
	case <-ctx.Done():
		e.abandon(cmd, done, req.ID, "context")
		return failTimeout(req.ID, stderr, "wait abandoned: %v", ctx.Err())
	}
}

// abandon detaches from a subprocess that outlived its call, attempting
// best-effort termination in the background. The response is produced
// regardless of whether the kill lands.
func (e *Engine) abandon(cmd *exec.Cmd, done <-chan struct{}, id, why string) {
	e.log.Warn("abandoning interpreter call",
		zap.String("id", id),
		zap.String("reason", why),
		zap.Int("pid", cmd.Process.Pid))
	go procutil.Terminate(cmd.Process, done, e.opts.GracePeriod)
}

// decode turns the accumulated output of an exited subprocess into the
// call's Response.
func (e *Engine) decode(id string, stdout, stderr *procutil.Tail, waitErr error) statengine.Response {
	record := lastRecord(stdout.String())
	code := exitCode(waitErr)

	if record == nil {
		return failExit(id, code, stderr, "interpreter produced no response record")
	}

	resp := wire.DecodeResponse(record)
	if resp.Failure != nil && resp.Failure.Kind == statengine.FailureDecode && code != 0 {
		// Garbage output from a failed process: the exit diagnostic is
		// more useful than the parse error.
		return failExit(id, code, stderr, "interpreter produced no parsable response")
	}

	// The one-shot wrapper may omit the id; the caller's id is
	// authoritative on a single-request process anyway.
	if resp.ID == "" {
		resp.ID = id
	}
	return resp
}

// lastRecord returns the last non-empty line of the accumulated output,
// which is where the wrapper writes its single response record.
func lastRecord(out string) []byte {
	var s wire.Splitter
	records := s.Push([]byte(out))
	if rest := s.Rest(); rest != nil {
		records = append(records, rest)
	}
	if len(records) == 0 {
		return nil
	}
	return records[len(records)-1]
}

func failTimeout(id string, stderr *procutil.Tail, format string, args ...any) statengine.Response {
	resp := statengine.Fail(id, statengine.FailureTimeout, format, args...)
	resp.Failure.PartialConsoleText = errfmt.Truncate(stderr.String())
	return resp
}

func failExit(id string, code int, stderr *procutil.Tail, generic string) statengine.Response {
	// A clean exit with unusable output is a protocol problem, not a crash.
	kind := statengine.FailureCrash
	if code == 0 {
		kind = statengine.FailureDecode
	}
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = fmt.Sprintf("%s; exited with code %d", generic, code)
	}
	resp := statengine.Fail(id, kind, "%s", errfmt.Truncate(msg))
	resp.Failure.ExitCode = code
	return resp
}

// exitCode maps cmd.Wait's error to the exit-code convention:
// 0 clean, positive exit status, -1 signal-killed or unknown.
func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		return ee.ExitCode()
	}
	return -1
}
