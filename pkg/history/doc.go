// Package history implements the undo/redo log for canvas documents.
//
// A [Manager] owns the live document plus two snapshot stacks: past
// (oldest to most recent) and future (next redo first). Mutations go
// through the history-aware setters [Manager.SetNodes] and
// [Manager.SetConnections], which push the pre-update state onto the
// past stack when the change is significant. Compound gestures are
// wrapped in a transaction ([Manager.StartAction] /
// [Manager.EndAction]) so a multi-step drag collapses into a single
// undo step.
//
// # Significance
//
// Continuous drags emit many intermediate states; without filtering,
// one drag would produce hundreds of undo steps. [Significant] judges
// whether two snapshots differ enough to be worth a history entry:
// topology changes (nodes or connections added/removed, type changes)
// always qualify, geometric changes only beyond small thresholds.
// Non-geometric data edits (panel text, slider values) are
// deliberately invisible to the heuristic; see the package tests for
// the exact thresholds.
//
// # Guards
//
// Undo and redo are rate-limited by a shared [Gate] (a second call
// within the debounce interval is dropped, never queued) and by a
// short apply hold after each applied snapshot, during which every
// history entry point is suppressed. Both are driven by an injectable
// clock so tests run without sleeping.
package history
