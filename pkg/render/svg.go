package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
)

// RenderSVG renders a document to SVG using Graphviz.
// Returns the SVG bytes ready for display or conversion with [ToPNG]
// or [ToPDF].
func RenderSVG(ctx context.Context, doc canvas.Document) ([]byte, error) {
	return renderDOT(ctx, ToDOT(doc, Options{}))
}

// RenderPNG renders a document to PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI
// displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, doc canvas.Document, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, doc)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}

// RenderPDF renders a document to PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, doc canvas.Document) ([]byte, error) {
	svg, err := RenderSVG(ctx, doc)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderFile renders a document to path, picking the format from the
// extension: .dot, .svg, .png, or .pdf.
func RenderFile(ctx context.Context, doc canvas.Document, path string) error {
	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot":
		data = []byte(ToDOT(doc, Options{}))
	case ".svg":
		data, err = RenderSVG(ctx, doc)
	case ".png":
		data, err = RenderPNG(ctx, doc, 2.0)
	case ".pdf":
		data, err = RenderPDF(ctx, doc)
	default:
		return errors.New(errors.CodeInvalidInput, "unsupported export format %q (use .dot, .svg, .png, or .pdf)", ext)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.CodeRenderFailed, err, "write %s", path)
	}
	return nil
}

func renderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.CodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.CodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root <svg> tag so the viewBox starts
// at the origin and the element carries explicit pixel dimensions.
// Graphviz emits point-based sizes that browsers scale inconsistently.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
