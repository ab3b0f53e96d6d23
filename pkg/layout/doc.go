// Package layout computes canvas geometry for nodes and groups.
//
// The renderer measures most widgets and writes the result back into
// the node data, but freshly placed nodes have no measurement yet and
// primitive shapes never carry one (their width/height fields are
// scene geometry). [NodeBox] bridges the gap: it prefers a real
// measurement when the variant exposes one and falls back to a
// per-type sizing policy otherwise, then adds port stick-out margins
// and clamps to safety floors so every node has a non-degenerate box.
//
// Group mutators ([CreateGroup], [ResizeGroup], [JoinGroup],
// [LeaveGroup]) are pure slice-in/slice-out functions: they never
// mutate their input and return it unchanged for degenerate requests,
// which keeps no-op recomputations out of the undo history. The
// [Scheduler] coalesces deferred recomputation so rapidly moving
// children trigger at most one pending resize per group.
package layout
