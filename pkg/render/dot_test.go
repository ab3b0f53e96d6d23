package render

import (
	"strings"
	"testing"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

func testDoc() canvas.Document {
	return canvas.Document{
		Nodes: []canvas.Node{
			{
				ID:   "grp-1",
				Type: canvas.TypeGroup,
				Data: canvas.GroupData{Label: "inputs", Children: []string{"num-1"}},
			},
			{
				ID:   "num-1",
				Type: canvas.TypeNumber,
				Data: canvas.NumberData{Value: 2.5},
			},
			{
				ID:       "sphere-1",
				Type:     canvas.TypeSphere,
				Position: canvas.Point{X: 300, Y: 40},
				Data:     canvas.SphereData{Radius: 1.5},
			},
			{
				ID:   "view-1",
				Type: canvas.TypeViewport,
				Data: canvas.ViewportData{},
			},
		},
		Connections: []canvas.Connection{
			{ID: "c1", SourceNode: "num-1", SourcePort: "value", TargetNode: "sphere-1", TargetPort: "radius"},
			{ID: "c2", SourceNode: "sphere-1", SourcePort: "shape", TargetNode: "view-1", TargetPort: "shape"},
		},
	}
}

func TestToDOTStructure(t *testing.T) {
	dot := ToDOT(testDoc(), Options{})

	wants := []string{
		"digraph patchbay {",
		`subgraph "cluster_grp-1" {`,
		`label="inputs";`,
		`"num-1" [label="number\n2.5"];`,
		`"sphere-1" [label="sphere\nr=1.5"];`,
		`"view-1" [label="viewport"];`,
		`"num-1" -> "sphere-1" [label="value→radius", fontsize=10];`,
		`"sphere-1" -> "view-1" [label="shape→shape", fontsize=10];`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	// The group node itself must not appear as a plain node.
	if strings.Contains(dot, `"grp-1" [`) {
		t.Errorf("group emitted as a plain node:\n%s", dot)
	}
	// Grouped members emit inside the cluster only.
	if strings.Count(dot, `"num-1" [`) != 1 {
		t.Errorf("grouped node emitted more than once:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	doc := testDoc()
	a := ToDOT(doc, Options{})
	b := ToDOT(doc, Options{})
	if a != b {
		t.Error("ToDOT output differs between runs")
	}
}

func TestToDOTDetailedPositions(t *testing.T) {
	dot := ToDOT(testDoc(), Options{Detailed: true})
	if !strings.Contains(dot, `\n(300, 40)`) {
		t.Errorf("detailed DOT missing position label:\n%s", dot)
	}
}

func TestNodeLabels(t *testing.T) {
	tests := []struct {
		name string
		node canvas.Node
		want string
	}{
		{"box", canvas.Node{Type: canvas.TypeBox, Data: canvas.BoxData{Width: 2, Height: 1, Depth: 3}}, "box\n2 × 1 × 3"},
		{"math", canvas.Node{Type: canvas.TypeMath, Data: canvas.MathData{Op: canvas.MathAdd, Operands: 2}}, "math\nadd"},
		{"vector", canvas.Node{Type: canvas.TypeVector, Data: canvas.VectorData{X: 1, Y: 0, Z: 0.5}}, "vector\n(1, 0, 0.5)"},
		{"series", canvas.Node{Type: canvas.TypeSeries, Data: canvas.SeriesData{Start: 0, Step: 2, Count: 5}}, "series\n0 +2 ×5"},
		{"panel", canvas.Node{Type: canvas.TypePanel, Data: canvas.PanelData{Text: "notes\nsecond line"}}, "panel\nnotes"},
		{"empty panel", canvas.Node{Type: canvas.TypePanel, Data: canvas.PanelData{}}, "panel"},
		{"inspector", canvas.Node{Type: canvas.TypeInspector, Data: canvas.InspectorData{}}, "inspector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeLabel(tt.node); got != tt.want {
				t.Errorf("nodeLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="100pt" height="50pt" viewBox="0.00 0.00 144.00 72.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 144.00 72.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="144" height="72"`) {
		t.Errorf("pixel dimensions missing: %s", out)
	}

	// Non-SVG input passes through untouched.
	plain := []byte("not svg")
	if got := normalizeViewBox(plain); string(got) != "not svg" {
		t.Errorf("pass-through changed input: %q", got)
	}
}
