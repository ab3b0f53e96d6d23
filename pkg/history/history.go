package history

import (
	"sync"
	"time"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Defaults for [Options]. DefaultLimit bounds both stacks;
// DefaultDebounce is the minimum wall-clock spacing between accepted
// undo/redo calls; DefaultApplyHold is how long history entry points
// stay suppressed after a snapshot is applied.
const (
	DefaultLimit     = 500
	DefaultDebounce  = 250 * time.Millisecond
	DefaultApplyHold = 100 * time.Millisecond
)

// Options configures a [Manager]. The zero value is usable; Validate
// fills unset fields with the package defaults.
type Options struct {
	// Limit bounds the past and future stacks. When the past stack is
	// full the oldest entry is evicted.
	Limit int

	// Debounce is the minimum interval between accepted undo/redo
	// invocations, enforced by the Gate.
	Debounce time.Duration

	// ApplyHold is how long all history entry points remain suppressed
	// after an undo/redo applies a snapshot.
	ApplyHold time.Duration

	// Now is the clock. Defaults to time.Now; tests inject a fake.
	Now func() time.Time

	// Gate rate-limits undo/redo. When nil a private gate is created
	// with the Debounce interval. Share one gate between managers that
	// should debounce as a unit.
	Gate *Gate
}

// Validate fills unset fields with defaults.
func (o *Options) Validate() {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.ApplyHold <= 0 {
		o.ApplyHold = DefaultApplyHold
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Gate == nil {
		o.Gate = NewGate(o.Debounce)
	}
}

// Gate is a wall-clock rate limiter shared by undo and redo: a call
// within the interval of the last accepted call is dropped, not
// queued. It replaces the original design's global timestamp with an
// injectable value owned by whoever builds the manager.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewGate returns a gate accepting at most one call per interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Allow reports whether a call at the given instant is accepted, and
// if so records it as the last accepted call.
func (g *Gate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Manager owns a live document and its undo/redo stacks. All methods
// are safe for concurrent use; every snapshot stored in the stacks is
// a deep copy sharing no memory with live state.
type Manager struct {
	mu     sync.Mutex
	doc    canvas.Document
	past   []canvas.Document
	future []canvas.Document

	inAction   bool      // transaction open: intermediate pushes suppressed
	applyUntil time.Time // entry points suppressed before this instant

	opts Options
}

// NewManager creates a manager seeded with a deep copy of doc.
func NewManager(doc canvas.Document, opts Options) *Manager {
	opts.Validate()
	return &Manager{doc: doc.Clone(), opts: opts}
}

// SetNodes applies update to the node collection. The updater receives
// a deep copy and returns the replacement; returning an equal
// collection is a no-op. Outside a transaction, a significant change
// pushes the pre-update snapshot and clears the future stack; an
// insignificant change applies silently. Reports whether the
// collection changed.
func (m *Manager) SetNodes(update func([]canvas.Node) []canvas.Node) bool {
	if update == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := update(canvas.CloneNodes(m.doc.Nodes))
	if canvas.NodesEqual(next, m.doc.Nodes) {
		return false
	}
	m.commit(canvas.Document{Nodes: next, Connections: m.doc.Connections})
	return true
}

// SetConnections applies update to the connection collection, with the
// same history semantics as [Manager.SetNodes].
func (m *Manager) SetConnections(update func([]canvas.Connection) []canvas.Connection) bool {
	if update == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := update(append([]canvas.Connection(nil), m.doc.Connections...))
	if canvas.ConnectionsEqual(next, m.doc.Connections) {
		return false
	}
	m.commit(canvas.Document{Nodes: m.doc.Nodes, Connections: next})
	return true
}

// commit installs next as the live document, pushing the pre-update
// snapshot when appropriate. Callers hold the lock and have already
// ruled out no-op updates.
func (m *Manager) commit(next canvas.Document) {
	if !m.inAction && !m.applying() && Significant(m.doc, next) {
		m.push(m.doc.Clone())
		m.future = nil
	}
	m.doc = next.Clone()
}

// StartAction opens a transaction: the state immediately preceding it
// is force-pushed (no significance filter), the future stack is
// cleared, and pushes from intermediate mutations are suppressed
// until [Manager.EndAction]. No-op if a transaction is already open or
// an undo/redo is settling.
func (m *Manager) StartAction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inAction || m.applying() {
		return
	}
	m.push(m.doc.Clone())
	m.future = nil
	m.inAction = true
}

// EndAction closes the transaction, force-pushing the resulting state
// regardless of significance so the transaction's net effect is
// always capturable. Reports whether a transaction was open; a stray
// call with none open is a no-op.
func (m *Manager) EndAction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inAction {
		return false
	}
	m.inAction = false
	m.push(m.doc.Clone())
	return true
}

// Undo restores the most recent significantly different past state.
// The current state is prepended to the future stack, then past
// entries are popped, skipping any that are not significantly
// different from the current state, until one qualifies (or the
// oldest popped entry is applied when none do). Dropped when the past
// stack is empty, a transaction is open, the gate rejects the call, or
// an apply hold is active. Reports whether a state was applied.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.past) == 0 || m.inAction || m.applying() {
		return false
	}
	if !m.opts.Gate.Allow(m.opts.Now()) {
		return false
	}

	m.future = append([]canvas.Document{m.doc.Clone()}, m.future...)
	if len(m.future) > m.opts.Limit {
		m.future = m.future[:m.opts.Limit]
	}

	var target canvas.Document
	for len(m.past) > 0 {
		target = m.past[len(m.past)-1]
		m.past = m.past[:len(m.past)-1]
		if Significant(target, m.doc) {
			break
		}
	}
	m.apply(target)
	return true
}

// Redo applies the next future entry literally: no skip heuristic, by
// design, so micro-drags undone as part of a batch are restored
// exactly. The pre-redo state is force-pushed onto past without
// clearing the remaining future entries. Same guards as
// [Manager.Undo]. Reports whether a state was applied.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.future) == 0 || m.inAction || m.applying() {
		return false
	}
	if !m.opts.Gate.Allow(m.opts.Now()) {
		return false
	}

	next := m.future[0]
	m.future = m.future[1:]
	m.push(m.doc.Clone())
	m.apply(next)
	return true
}

func (m *Manager) apply(snap canvas.Document) {
	m.doc = snap.Clone()
	m.applyUntil = m.opts.Now().Add(m.opts.ApplyHold)
}

func (m *Manager) applying() bool {
	return !m.applyUntil.IsZero() && m.opts.Now().Before(m.applyUntil)
}

// push appends a snapshot to the past stack, evicting the oldest
// entry at the limit. The caller owns snap (already cloned).
func (m *Manager) push(snap canvas.Document) {
	if len(m.past) >= m.opts.Limit {
		m.past = m.past[1:]
	}
	m.past = append(m.past, snap)
}

// Document returns a deep copy of the live document.
func (m *Manager) Document() canvas.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// Nodes returns a deep copy of the live node collection.
func (m *Manager) Nodes() []canvas.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return canvas.CloneNodes(m.doc.Nodes)
}

// Connections returns a copy of the live connection collection.
func (m *Manager) Connections() []canvas.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]canvas.Connection(nil), m.doc.Connections...)
}

// CanUndo reports whether the past stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Depth returns the current past and future stack sizes.
func (m *Manager) Depth() (past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}

// Limit returns the configured stack bound.
func (m *Manager) Limit() int { return m.opts.Limit }
