// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about editor operations and
// document store access.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(&myEditorHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Editor().OnCommit("nodes", true)
package observability

import (
	"context"
	"sync"
	"time"
)

// EditorHooks receives events from editor sessions.
type EditorHooks interface {
	// OnCommit records a mutation applied through a history-aware
	// setter. Collection is "nodes" or "connections"; pushed reports
	// whether the change earned a history entry.
	OnCommit(collection string, pushed bool)

	// OnUndo and OnRedo record history navigation. Applied is false
	// when the call was dropped by a guard or an empty stack.
	OnUndo(applied bool)
	OnRedo(applied bool)

	// OnGroupCreated records a new group wrapping members nodes.
	OnGroupCreated(groupID string, members int)

	// OnGroupResized records an applied (non-skipped) group resize.
	OnGroupResized(groupID string)
}

// StoreHooks receives events from document store operations.
type StoreHooks interface {
	// OnGet records a document read. Found is false for misses.
	OnGet(ctx context.Context, backend, id string, found bool, duration time.Duration)

	// OnPut records a document write.
	OnPut(ctx context.Context, backend, id string, duration time.Duration, err error)

	// OnDelete records a document removal.
	OnDelete(ctx context.Context, backend, id string, err error)
}

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnCommit(string, bool)      {}
func (NoopEditorHooks) OnUndo(bool)                {}
func (NoopEditorHooks) OnRedo(bool)                {}
func (NoopEditorHooks) OnGroupCreated(string, int) {}
func (NoopEditorHooks) OnGroupResized(string)      {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGet(context.Context, string, string, bool, time.Duration)  {}
func (NoopStoreHooks) OnPut(context.Context, string, string, time.Duration, error) {}
func (NoopStoreHooks) OnDelete(context.Context, string, string, error)             {}

var (
	editorHooks EditorHooks = NoopEditorHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any editor sessions open.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	storeHooks = NoopStoreHooks{}
}
