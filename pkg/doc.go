// Package pkg provides the core libraries for the Patchbay canvas editor.
//
// # Overview
//
// Patchbay is a node-canvas editor: documents are dataflow graphs of
// typed nodes wired port-to-port, edited through an undo/redo history
// manager and an automatic group layout engine. The pkg directory is
// organized into three main areas:
//
//  1. Domain model - the document, its node types, and validation
//  2. Editing - history, layout, and the session facade that binds them
//  3. Infrastructure - persistence, rendering, and observability
//
// # Architecture
//
// The typical flow of a mutation through Patchbay:
//
//	client (HTTP/WS or CLI)
//	         ↓
//	    [editor] session (serialize access, schedule relayout)
//	         ↓
//	    [history] manager (snapshot, debounce, significance)
//	         ↓
//	    [layout] engine (group auto-sizing, settle frames)
//	         ↓
//	    [store] backend (memory, file, Redis, MongoDB)
//
// # Main Packages
//
// [canvas] - The document model: nodes with typed data variants,
// port-addressed connections, deep cloning, structural equality, the
// JSON codec, and document validation (referential integrity, group
// membership rules, cycle detection).
//
// [history] - Undo/redo over document snapshots: a bounded stack with
// debounced commits, a significance filter that skips no-op entries on
// undo, explicit transactions for compound edits, and rate gating.
//
// [layout] - The group auto-layout engine: measures member bounds,
// applies padding and port margins, and settles group frames over
// animation-friendly frame ticks.
//
// [editor] - The session facade used by every entry point. Owns one
// document, serializes mutations, drives history commits and relayout
// scheduling, and notifies watchers on every revision.
//
// [store] - Persistent document storage behind a single interface:
// in-memory (testing), one-file-per-document on disk (CLI), Redis, and
// MongoDB, plus retry helpers and content hashing for ETags.
//
// [render] - Document export: Graphviz DOT generation with group
// clusters, and SVG/PNG rendering.
//
// [errors] - Coded errors shared across packages, with user-facing
// messages and input validation helpers.
//
// [observability] - Hook points for store and editor instrumentation.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Quick Start
//
// Open a document, edit it, and undo:
//
//	doc, _ := canvas.Import("scene.json")
//	sess := editor.NewSession(doc, editor.Options{})
//	defer sess.Close()
//
//	sess.SetNodes(func(nodes []canvas.Node) []canvas.Node {
//		nodes[0].Position.X += 40
//		return nodes
//	})
//
//	sess.Undo()
//
// Render it:
//
//	svg, _ := render.RenderSVG(ctx, sess.Document())
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/history/...   # Specific package
//
// [canvas]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/canvas
// [history]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/history
// [layout]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/layout
// [editor]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/editor
// [store]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/store
// [render]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/render
// [errors]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/errors
// [observability]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/patchbaylabs/patchbay/pkg/buildinfo
package pkg
