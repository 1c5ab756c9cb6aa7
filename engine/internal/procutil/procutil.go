//go:build !windows

// Package procutil provides shared subprocess teardown and stderr
// capture for the interpreter engines.
package procutil

import (
	"errors"
	"os"
	"sync"
	"syscall"
	"time"
)

// Signal sends sig to a process, returning nil if the process has
// already exited (os.ErrProcessDone).
func Signal(proc *os.Process, sig os.Signal) error {
	err := proc.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Terminate stops a subprocess: SIGTERM, then SIGKILL after the grace
// period. done must close when the process has been reaped; Terminate
// blocks until then.
func Terminate(proc *os.Process, done <-chan struct{}, grace time.Duration) {
	_ = Signal(proc, syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(grace):
		_ = Signal(proc, os.Kill)
		<-done
	}
}

// Tail is a bounded byte sink keeping the last Limit bytes written.
// Engines attach it to interpreter stderr so crash failures can carry
// recent diagnostic text without buffering unbounded output.
//
// Safe for one concurrent writer and any number of readers.
type Tail struct {
	Limit int

	mu  sync.Mutex
	buf []byte
}

// Write implements io.Writer. It never fails.
func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if t.Limit > 0 && len(t.buf) > t.Limit {
		t.buf = t.buf[len(t.buf)-t.Limit:]
	}
	return len(p), nil
}

// String returns the captured tail.
func (t *Tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
