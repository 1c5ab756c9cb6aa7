package persistent

import (
	"sync"
	"time"

	"github.com/methodstudio/statengine"
)

// pending is one outstanding request awaiting its response.
// ch is buffered and receives exactly one Response — sent by whichever
// path wins the table.resolve race (matching response, deadline timer,
// context cancellation, or process close).
type pending struct {
	id    string
	ch    chan statengine.Response
	timer *time.Timer
}

// table is the correlation table: request id → pending continuation.
// It is owned by exactly one engine spawn; resolution removes the entry
// under the lock, which is what makes completion exactly-once.
type table struct {
	mu      sync.Mutex
	entries map[string]*pending
}

func newTable() *table {
	return &table{entries: make(map[string]*pending)}
}

// add registers a pending request. Returns statengine.ErrDuplicateID if
// the id is already outstanding.
func (t *table) add(id string) (*pending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[id]; exists {
		return nil, statengine.ErrDuplicateID
	}
	p := &pending{id: id, ch: make(chan statengine.Response, 1)}
	t.entries[id] = p
	return p, nil
}

// arm attaches the deadline timer to a registered pending. Must be
// called before the request is written to the interpreter.
func (t *table) arm(p *pending, d time.Duration, onTimeout func()) {
	t.mu.Lock()
	p.timer = time.AfterFunc(d, onTimeout)
	t.mu.Unlock()
}

// resolve completes the pending with the given response. It reports
// false when the id is not (or no longer) outstanding — late responses
// and lost timer races land here and are dropped. The entry's timer is
// cancelled on every resolution path.
func (t *table) resolve(id string, resp statengine.Response) bool {
	t.mu.Lock()
	p, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	p.ch <- resp
	return true
}

// failAll resolves every outstanding pending with a failure built by
// fail, clearing the table. Used on engine stop and process crash.
func (t *table) failAll(fail func(id string) statengine.Response) {
	t.mu.Lock()
	drained := make([]*pending, 0, len(t.entries))
	for _, p := range t.entries {
		delete(t.entries, p.id)
		if p.timer != nil {
			p.timer.Stop()
		}
		drained = append(drained, p)
	}
	t.mu.Unlock()

	for _, p := range drained {
		p.ch <- fail(p.id)
	}
}
