package editor

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/history"
	"github.com/patchbaylabs/patchbay/pkg/layout"
	"github.com/patchbaylabs/patchbay/pkg/observability"
)

// Deferral delays for group reactions: a corrective re-layout shortly
// after a group is created or membership changes (letting the change
// settle first), and the window after which a fresh group's New flag
// is cleared, ending the creation animation.
const (
	DefaultRelayoutDelay = 50 * time.Millisecond
	DefaultNewFlagDelay  = 500 * time.Millisecond
)

// Options configures a [Session]. The zero value is usable.
type Options struct {
	// History configures the underlying history manager.
	History history.Options

	// Scheduler defers group reactions. Defaults to a
	// [layout.TimerScheduler]; tests inject a synchronous stub.
	Scheduler layout.Scheduler

	// Logger receives debug-level operation logs. Defaults to a
	// discarding logger.
	Logger *log.Logger

	// NewID mints IDs for created groups. Defaults to uuid.NewString.
	NewID func() string

	// OnGroupCreated, when set, is called with every group created by
	// [Session.CreateGroupFromSelection], after the mutation applies.
	OnGroupCreated func(canvas.Node)

	// RelayoutDelay, NewFlagDelay, and FrameDelay override the
	// deferral timings; zero values take the defaults.
	RelayoutDelay time.Duration
	NewFlagDelay  time.Duration
	FrameDelay    time.Duration
}

func (o *Options) validate() {
	if o.Scheduler == nil {
		o.Scheduler = layout.NewTimerScheduler()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.RelayoutDelay <= 0 {
		o.RelayoutDelay = DefaultRelayoutDelay
	}
	if o.NewFlagDelay <= 0 {
		o.NewFlagDelay = DefaultNewFlagDelay
	}
	if o.FrameDelay <= 0 {
		o.FrameDelay = layout.FrameDelay
	}
}

// Session is one open document under edit. All methods are safe for
// concurrent use; after [Session.Close] every mutation is a no-op.
type Session struct {
	mgr   *history.Manager
	sched layout.Scheduler
	opts  Options

	mu        sync.Mutex
	selection []string
	revision  uint64
	watchers  []func()
	closed    bool
}

// NewSession opens a session over a deep copy of doc.
func NewSession(doc canvas.Document, opts Options) *Session {
	opts.validate()
	return &Session{
		mgr:   history.NewManager(doc, opts.History),
		sched: opts.Scheduler,
		opts:  opts,
	}
}

// SetNodes routes a node mutation through the history manager.
// Reports whether the collection changed.
func (s *Session) SetNodes(update func([]canvas.Node) []canvas.Node) bool {
	if s.isClosed() {
		return false
	}
	before, _ := s.mgr.Depth()
	changed := s.mgr.SetNodes(update)
	if changed {
		after, _ := s.mgr.Depth()
		observability.Editor().OnCommit("nodes", after > before)
		s.bumpAndNotify()
	}
	return changed
}

// SetConnections routes a connection mutation through the history
// manager. Reports whether the collection changed.
func (s *Session) SetConnections(update func([]canvas.Connection) []canvas.Connection) bool {
	if s.isClosed() {
		return false
	}
	before, _ := s.mgr.Depth()
	changed := s.mgr.SetConnections(update)
	if changed {
		after, _ := s.mgr.Depth()
		observability.Editor().OnCommit("connections", after > before)
		s.bumpAndNotify()
	}
	return changed
}

// Undo steps the document back one significant state. Reports whether
// a state was applied.
func (s *Session) Undo() bool {
	if s.isClosed() {
		return false
	}
	applied := s.mgr.Undo()
	observability.Editor().OnUndo(applied)
	if applied {
		s.opts.Logger.Debug("undo applied")
		s.bumpAndNotify()
	}
	return applied
}

// Redo reapplies the most recently undone state. Reports whether a
// state was applied.
func (s *Session) Redo() bool {
	if s.isClosed() {
		return false
	}
	applied := s.mgr.Redo()
	observability.Editor().OnRedo(applied)
	if applied {
		s.opts.Logger.Debug("redo applied")
		s.bumpAndNotify()
	}
	return applied
}

// StartAction opens a history transaction wrapping a compound
// gesture; EndAction closes it. See the history package for the
// coalescing semantics.
func (s *Session) StartAction() {
	if !s.isClosed() {
		s.mgr.StartAction()
	}
}

// EndAction closes the open history transaction. A stray call with no
// transaction open changes nothing and notifies nobody.
func (s *Session) EndAction() {
	if !s.isClosed() && s.mgr.EndAction() {
		s.bumpAndNotify()
	}
}

// Select replaces the current selection.
func (s *Session) Select(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = slices.Clone(ids)
}

// Selection returns a copy of the currently selected node IDs.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// CreateGroupFromSelection wraps the current selection in a new group
// node. On success it clears the selection, schedules a corrective
// re-layout once real measurements settle, schedules resizes for any
// group that lost members, arms the New-flag clear, and fires the
// OnGroupCreated callback. Fewer than two eligible selected nodes is
// a no-op.
func (s *Session) CreateGroupFromSelection() (canvas.Node, bool) {
	if s.isClosed() {
		return canvas.Node{}, false
	}
	selection := s.Selection()
	groupID := s.opts.NewID()

	var (
		group    canvas.Node
		affected []string
		created  bool
	)
	changed := s.SetNodes(func(nodes []canvas.Node) []canvas.Node {
		out, g, aff, ok := layout.CreateGroup(nodes, selection, groupID)
		group, affected, created = g, aff, ok
		return out
	})
	if !created || !changed {
		return canvas.Node{}, false
	}

	members := len(group.Data.(canvas.GroupData).Children)
	s.opts.Logger.Debug("group created", "groupID", groupID, "members", members)
	observability.Editor().OnGroupCreated(groupID, members)

	s.ClearSelection()

	// Fallback sizing may have been off; recompute once the renderer
	// has had a frame to measure the members.
	s.deferResize(groupID, s.opts.RelayoutDelay)
	for _, gid := range affected {
		s.deferResize(gid, s.opts.RelayoutDelay)
	}
	s.sched.Defer("groupnew/"+groupID, s.opts.NewFlagDelay, func() {
		s.clearNewFlag(groupID)
	})

	if s.opts.OnGroupCreated != nil {
		s.opts.OnGroupCreated(group)
	}
	return group, true
}

// JoinGroup moves the node into the group, leaving any previous group
// first, and schedules a resize for every group whose membership
// changed. Reports whether the request was valid.
func (s *Session) JoinGroup(nodeID, groupID string) bool {
	if s.isClosed() {
		return false
	}
	var (
		affected []string
		ok       bool
	)
	s.SetNodes(func(nodes []canvas.Node) []canvas.Node {
		out, aff, valid := layout.JoinGroup(nodes, nodeID, groupID)
		affected, ok = aff, valid
		return out
	})
	for _, gid := range affected {
		s.deferResize(gid, s.opts.RelayoutDelay)
	}
	return ok
}

// LeaveGroup removes the node from whichever group lists it and
// schedules that group's resize. Reports whether a group was left.
func (s *Session) LeaveGroup(nodeID string) bool {
	if s.isClosed() {
		return false
	}
	var (
		groupID string
		ok      bool
	)
	s.SetNodes(func(nodes []canvas.Node) []canvas.Node {
		out, gid, valid := layout.LeaveGroup(nodes, nodeID)
		groupID, ok = gid, valid
		return out
	})
	if ok {
		s.deferResize(groupID, s.opts.RelayoutDelay)
	}
	return ok
}

// ScheduleGroupResize defers a recomputation of the group's frame by
// one frame. Rapid successive calls for the same group coalesce into
// a single recomputation.
func (s *Session) ScheduleGroupResize(groupID string) {
	s.deferResize(groupID, s.opts.FrameDelay)
}

func (s *Session) deferResize(groupID string, delay time.Duration) {
	s.sched.Defer("resize/"+groupID, delay, func() {
		s.applyResize(groupID)
	})
}

func (s *Session) applyResize(groupID string) {
	resized := false
	s.SetNodes(func(nodes []canvas.Node) []canvas.Node {
		out, changed := layout.ResizeGroup(nodes, groupID)
		resized = changed
		return out
	})
	if resized {
		s.opts.Logger.Debug("group resized", "groupID", groupID)
		observability.Editor().OnGroupResized(groupID)
	}
}

// clearNewFlag ends the creation animation. A flag flip is
// non-geometric, so it never lands in the undo history.
func (s *Session) clearNewFlag(groupID string) {
	s.SetNodes(func(nodes []canvas.Node) []canvas.Node {
		i := canvas.FindNode(nodes, groupID)
		if i < 0 {
			return nodes
		}
		data, ok := nodes[i].Data.(canvas.GroupData)
		if !ok || !data.New {
			return nodes
		}
		data.New = false
		nodes[i].Data = data
		return nodes
	})
}

// Document returns a deep copy of the live document.
func (s *Session) Document() canvas.Document { return s.mgr.Document() }

// Nodes returns a deep copy of the live node collection.
func (s *Session) Nodes() []canvas.Node { return s.mgr.Nodes() }

// Connections returns a copy of the live connection collection.
func (s *Session) Connections() []canvas.Connection { return s.mgr.Connections() }

// Revision returns the count of changes applied so far. It increases
// monotonically and identifies states in WebSocket frames.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.mgr.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.mgr.CanRedo() }

// HistoryDepth returns the past and future stack sizes.
func (s *Session) HistoryDepth() (past, future int) { return s.mgr.Depth() }

// Watch registers a listener invoked after every applied change.
// Listeners run outside the session lock, in registration order.
func (s *Session) Watch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Close stops the scheduler and turns every further mutation into a
// no-op. Pending deferred work is dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.sched.Stop()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) bumpAndNotify() {
	s.mu.Lock()
	s.revision++
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn()
	}
}
