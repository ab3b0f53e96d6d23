// Package editor binds one canvas document to a history manager,
// selection state, and a deferred-work scheduler, exposing the handle
// surface a host UI wires to keyboard shortcuts and drag lifecycle
// hooks: history-aware setters, Undo/Redo, StartAction/EndAction, and
// the group operations.
//
// A [Session] serializes all state access with its own lock - timer
// callbacks and request handlers never observe a mutation mid-flight,
// which is the Go rendition of the original single-threaded event
// loop. Change listeners registered with [Session.Watch] fire after
// every applied change, outside the lock, with a monotonically
// increasing revision available via [Session.Revision].
package editor
