// Package render exports canvas documents as node-link diagrams.
//
// # Overview
//
// This package turns a document's node graph into Graphviz output:
// nodes appear as labeled boxes, connections as port-labeled arrows,
// and groups as cluster subgraphs enclosing their members.
//
// # Usage
//
// Convert a document to DOT format, then render:
//
//	dot := render.ToDOT(doc, render.Options{})
//	svg, err := render.RenderSVG(ctx, doc)
//	png, err := render.RenderPNG(ctx, doc, 2.0)  // 2x scale
//
// Or pick the format from a file extension:
//
//	err := render.RenderFile(ctx, doc, "out.svg")
//
// # DOT Format
//
// [ToDOT] output is deterministic for a given document: nodes emit in
// document order, connections in collection order. The DOT source can
// be rendered via [RenderSVG] or processed with external Graphviz
// tools.
//
// # Dependencies
//
// SVG rendering happens in-process via [github.com/goccy/go-graphviz].
// PNG and PDF conversion shell out to rsvg-convert (librsvg).
package render
