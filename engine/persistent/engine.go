//go:build !windows

package persistent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/methodstudio/statengine"
	"github.com/methodstudio/statengine/engine/internal/errfmt"
	"github.com/methodstudio/statengine/engine/internal/procutil"
	"github.com/methodstudio/statengine/engine/internal/scriptpath"
	"github.com/methodstudio/statengine/wire"
)

// State is the engine lifecycle state.
type State int32

const (
	Uninitialized State = iota
	Starting
	Ready
	Stopped
	Crashed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Stopped:
		return "stopped"
	case Crashed:
		return "crashed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// proc is the ownership cluster for one interpreter spawn: the command,
// its stdin, the stderr tail, the correlation table, and the done signal.
// One teardown path (finish) serves Stop, crash handling, and read-loop
// exit, so timers and channels are released exactly once.
type proc struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *procutil.Tail
	table  *table

	writeMu sync.Mutex // serializes request writes to stdin

	done       chan struct{} // closed by finish after the process is reaped
	stopping   atomic.Bool   // Stop was requested; exit is expected
	finishOnce sync.Once
}

// Engine is the long-lived multiplexed interpreter engine.
//
// Lifecycle: New → Initialize → Execute* → Stop. After a crash the
// engine stays Crashed until Initialize is called again, which spawns a
// fresh interpreter with a fresh correlation table.
type Engine struct {
	opts EngineOptions
	log  *zap.Logger

	// execMu gates script execution to one in-flight request. The wire
	// protocol could pipeline by id, but scripts bind request data into
	// the interpreter's single shared global namespace — overlapping
	// executions would corrupt each other's bindings.
	execMu sync.Mutex

	mu      sync.Mutex
	state   State
	pr      *proc
	tainted atomic.Bool // a timeout left the interpreter possibly busy
}

var _ statengine.Engine = (*Engine)(nil)
var _ statengine.Prober = (*Engine)(nil)

// New creates a persistent engine. Call Initialize before Execute.
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

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tainted reports whether a request timed out since the last Initialize.
// A tainted interpreter may still be computing the abandoned script;
// dependent follow-up calls should not assume a quiet namespace.
func (e *Engine) Tainted() bool { return e.tainted.Load() }

// Initialize spawns the interpreter subprocess and moves the engine to
// Ready. Spawn failure is returned synchronously — it is the one failure
// mode not delivered as a Response, since no request exists yet.
// Initialize may be called again after Stop or a crash.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	if e.state == Starting || e.state == Ready {
		e.mu.Unlock()
		return fmt.Errorf("statengine: initialize: engine already %s", e.state)
	}
	e.state = Starting
	e.mu.Unlock()

	pr, err := e.spawn()
	if err != nil {
		e.mu.Lock()
		e.state = Crashed
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	e.pr = pr
	e.state = Ready
	e.mu.Unlock()
	e.tainted.Store(false)

	go e.readLoop(pr)

	e.log.Debug("interpreter started",
		zap.String("binary", e.opts.Binary),
		zap.Int("pid", pr.cmd.Process.Pid))

	if e.opts.HandshakeScript != "" {
		if err := e.handshake(ctx); err != nil {
			_ = e.Stop(ctx)
			e.mu.Lock()
			e.state = Crashed
			e.mu.Unlock()
			return err
		}
	}
	return nil
}

// spawn starts the subprocess and wires its streams.
func (e *Engine) spawn() (*proc, error) {
	binary, err := e.resolveBinary()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(binary, e.opts.Args...)
	stderr := &procutil.Tail{Limit: e.opts.StderrLimit}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("statengine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("statengine: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", statengine.ErrUnavailable, binary, err)
	}

	return &proc{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		table:  newTable(),
		done:   make(chan struct{}),
	}, nil
}

// handshake runs the warm-up script and verifies the interpreter answers.
func (e *Engine) handshake(ctx context.Context) error {
	hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	resp := e.Execute(hsCtx, statengine.Request{
		ID:     "handshake",
		Script: e.opts.HandshakeScript,
	})
	if !resp.OK() {
		return fmt.Errorf("statengine: handshake: %w", resp.Failure)
	}
	return nil
}

// Execute dispatches one request and blocks until it resolves. Execute
// never returns an error: every outcome is a Response. Calls are
// serialized — see the execMu comment.
func (e *Engine) Execute(ctx context.Context, req statengine.Request) statengine.Response {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	e.mu.Lock()
	state := e.state
	pr := e.pr
	e.mu.Unlock()

	if state != Ready || pr == nil {
		return e.notReadyFailure(req.ID, state, pr)
	}

	p, err := pr.table.add(req.ID)
	if err != nil {
		return statengine.Fail(req.ID, statengine.FailureScript, "%v", err)
	}

	deadline := req.Deadline
	if deadline <= 0 {
		deadline = e.opts.DefaultDeadline
	}
	pr.table.arm(p, deadline, func() {
		e.tainted.Store(true)
		pr.table.resolve(req.ID, statengine.Fail(req.ID, statengine.FailureTimeout,
			"no response within %s", deadline))
	})

	req.ScriptPath = scriptpath.Resolve(req.ScriptPath, e.opts.ScriptDir, e.opts.ScriptSuffix)
	payload, err := wire.EncodeRequest(req)
	if err != nil {
		pr.table.resolve(req.ID, statengine.Fail(req.ID, statengine.FailureScript, "%v", err))
		return <-p.ch
	}

	pr.writeMu.Lock()
	_, werr := pr.stdin.Write(payload)
	pr.writeMu.Unlock()
	if werr != nil {
		// Stdin gone means the process is going down; the read loop
		// will fail remaining pendings, but this one resolves here.
		pr.table.resolve(req.ID, statengine.Fail(req.ID, statengine.FailureCrash,
			"write request: %v", werr))
		return <-p.ch
	}

	e.log.Debug("request dispatched",
		zap.String("id", req.ID),
		zap.Duration("deadline", deadline))

	select {
	case resp := <-p.ch:
		return resp
	case <-ctx.Done():
		e.tainted.Store(true)
		pr.table.resolve(req.ID, statengine.Fail(req.ID, statengine.FailureTimeout,
			"wait abandoned: %v", ctx.Err()))
		// Exactly one response is ever sent on p.ch; if a real response
		// won the race above, this returns it instead.
		return <-p.ch
	}
}

// notReadyFailure maps a non-Ready state to the immediate failure
// Execute returns without touching the wire.
func (e *Engine) notReadyFailure(id string, state State, pr *proc) statengine.Response {
	switch state {
	case Crashed:
		resp := statengine.Fail(id, statengine.FailureCrash, "engine crashed; re-initialize to continue")
		if pr != nil {
			resp.Failure.PartialConsoleText = errfmt.Truncate(pr.stderr.String())
		}
		return resp
	case Stopped:
		return statengine.Fail(id, statengine.FailureDisposed, "%v", statengine.ErrStopped)
	default:
		return statengine.Fail(id, statengine.FailureDisposed, "%v: engine %s", statengine.ErrNotReady, state)
	}
}

// ProbeScript implements statengine.Prober.
func (e *Engine) ProbeScript(pkg string) string {
	return e.opts.PackageProbe(pkg)
}

// readLoop decodes response records line-by-line and resolves matching
// correlation entries. Non-JSON lines (interpreter banners, stray
// prints) and unmatched ids are dropped. When stdout closes, the
// subprocess is reaped and every remaining pending fails.
func (e *Engine) readLoop(pr *proc) {
	scanner := bufio.NewScanner(pr.stdout)
	scanner.Buffer(make([]byte, 0, 4096), e.opts.MaxMessageSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		resp := wire.DecodeResponse(line)
		if resp.ID == "" {
			e.log.Warn("dropping uncorrelated interpreter record",
				zap.String("reason", failureReason(resp)))
			continue
		}
		if !pr.table.resolve(resp.ID, resp) {
			// Not outstanding: a late reply after timeout, or noise.
			e.log.Warn("dropping unmatched response", zap.String("id", resp.ID))
		}
	}
	if err := scanner.Err(); err != nil {
		e.log.Warn("interpreter stdout read failed", zap.Error(err))
	}

	e.finish(pr, pr.cmd.Wait())
}

// finish is the single teardown path: records the terminal state, fails
// all outstanding pendings, and closes done. Runs at most once per spawn.
func (e *Engine) finish(pr *proc, waitErr error) {
	pr.finishOnce.Do(func() {
		stderrTail := errfmt.Truncate(pr.stderr.String())

		if pr.stopping.Load() {
			e.transition(pr, Stopped)
			pr.table.failAll(func(id string) statengine.Response {
				return statengine.Fail(id, statengine.FailureDisposed, "%v", statengine.ErrStopped)
			})
		} else {
			code := exitCode(waitErr)
			e.transition(pr, Crashed)
			e.log.Warn("interpreter exited unexpectedly",
				zap.Int("exit_code", code),
				zap.String("stderr_tail", stderrTail))
			pr.table.failAll(func(id string) statengine.Response {
				resp := statengine.Fail(id, statengine.FailureCrash,
					"interpreter exited with code %d", code)
				resp.Failure.ExitCode = code
				resp.Failure.PartialConsoleText = stderrTail
				return resp
			})
		}

		close(pr.done)
	})
}

// transition moves the engine to next if pr is still the current spawn.
// A stale read loop from a previous spawn must not clobber the state of
// a re-initialized engine.
func (e *Engine) transition(pr *proc, next State) {
	e.mu.Lock()
	if e.pr == pr {
		e.state = next
	}
	e.mu.Unlock()
}

// Stop terminates the interpreter: close stdin, SIGTERM, then SIGKILL
// after the grace period (or when ctx expires). Outstanding calls
// resolve as disposed failures. Safe to call multiple times.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	pr := e.pr
	if pr == nil {
		if e.state != Crashed {
			e.state = Stopped
		}
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if pr.stopping.CompareAndSwap(false, true) {
		e.transition(pr, Stopped)
		_ = pr.stdin.Close()
		_ = procutil.Signal(pr.cmd.Process, syscall.SIGTERM)

		select {
		case <-pr.done:
		case <-time.After(e.opts.GracePeriod):
			_ = procutil.Signal(pr.cmd.Process, os.Kill)
			<-pr.done
		case <-ctx.Done():
			_ = procutil.Signal(pr.cmd.Process, os.Kill)
			<-pr.done
		}
		e.log.Debug("interpreter stopped", zap.Int("pid", pr.cmd.Process.Pid))
		return nil
	}

	<-pr.done
	return nil
}

// failureReason extracts the failure message from an uncorrelated
// response for logging; empty for (id-less) successes.
func failureReason(resp statengine.Response) string {
	if resp.Failure != nil {
		return resp.Failure.Message
	}
	return "response carries no id"
}

// exitCode maps cmd.Wait's error to the original exit-code convention:
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
