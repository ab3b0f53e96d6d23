package layout

import (
	"strings"
	"testing"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

func node(t canvas.Type, data canvas.Data, x, y float64) canvas.Node {
	return canvas.Node{ID: string(t) + "-n", Type: t, Position: canvas.Point{X: x, Y: y}, Data: data}
}

func TestNodeBoxDeterminism(t *testing.T) {
	n := node(canvas.TypeSphere, canvas.SphereData{Radius: 2, Transform: canvas.DefaultTransform()}, 13, 37)
	if a, b := NodeBox(n), NodeBox(n); a != b {
		t.Errorf("NodeBox not deterministic: %+v vs %+v", a, b)
	}
}

func TestNodeBoxStickOut(t *testing.T) {
	// Every node here measures 200x150, so the box width beyond 200
	// is exactly the stick-out margins.
	size := canvas.Size{Width: 200, Height: 150}
	tests := []struct {
		name        string
		n           canvas.Node
		left, width float64
	}{
		{
			"math has ports on both sides",
			node(canvas.TypeMath, canvas.MathData{Op: canvas.MathAdd, Operands: 2, Size: size}, 0, 0),
			PortStickOut, 200 + 2*PortStickOut,
		},
		{
			"number has outputs only",
			node(canvas.TypeNumber, canvas.NumberData{Size: size}, 0, 0),
			0, 200 + PortStickOut,
		},
		{
			"inspector has inputs only",
			node(canvas.TypeInspector, canvas.InspectorData{Size: size}, 0, 0),
			PortStickOut, 200 + PortStickOut,
		},
		{
			"panel is portless",
			node(canvas.TypePanel, canvas.PanelData{Size: size}, 0, 0),
			0, 200,
		},
		{
			"series is exempt despite its ports",
			node(canvas.TypeSeries, canvas.SeriesData{Size: size}, 0, 0),
			0, 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := NodeBox(tt.n)
			if got := tt.n.Position.X - box.X; got != tt.left {
				t.Errorf("left stick-out = %v, want %v", got, tt.left)
			}
			if box.Width != tt.width {
				t.Errorf("width = %v, want %v", box.Width, tt.width)
			}
		})
	}
}

func TestNodeBoxMeasuredOverridesFallback(t *testing.T) {
	measured := node(canvas.TypePanel, canvas.PanelData{Size: canvas.Size{Width: 333, Height: 222}}, 0, 0)
	box := NodeBox(measured)
	if box.Width != 333 || box.Height != 222 {
		t.Errorf("measured panel box = %vx%v, want 333x222", box.Width, box.Height)
	}

	// A sub-threshold measurement means "not measured yet".
	unmeasured := node(canvas.TypePanel, canvas.PanelData{Size: canvas.Size{Width: 0.5, Height: 0.5}}, 0, 0)
	fallback := NodeBox(node(canvas.TypePanel, canvas.PanelData{}, 0, 0))
	if NodeBox(unmeasured) != fallback {
		t.Error("sub-threshold measurement should fall back to the policy size")
	}
}

func TestNodeBoxPrimitiveSceneSizeNeverRead(t *testing.T) {
	// A box primitive with huge scene dimensions must size exactly
	// like one with tiny scene dimensions: the variant exposes no
	// canvas measurement, so only the fallback policy applies.
	big := node(canvas.TypeBox, canvas.BoxData{Width: 9999, Height: 9999, Depth: 9999}, 0, 0)
	small := node(canvas.TypeBox, canvas.BoxData{Width: 0.01, Height: 0.01, Depth: 0.01}, 0, 0)
	if NodeBox(big) != NodeBox(small) {
		t.Error("primitive scene geometry leaked into canvas sizing")
	}
}

func TestSharedSizingPolicies(t *testing.T) {
	// box, sphere, vector, and plane share one policy object; their
	// unmeasured base sizes are identical by construction. Vector has
	// an output port where plane does not, so compare heights and
	// port-stripped widths.
	types := []canvas.Type{canvas.TypeBox, canvas.TypeSphere, canvas.TypeVector, canvas.TypePlane}
	var baseW, baseH float64
	for i, typ := range types {
		data, err := canvas.DefaultData(typ)
		if err != nil {
			t.Fatal(err)
		}
		n := node(typ, data, 0, 0)
		box := NodeBox(n)
		left, right := stickOut(n)
		w, h := box.Width-left-right, box.Height
		if i == 0 {
			baseW, baseH = w, h
			continue
		}
		if w != baseW || h != baseH {
			t.Errorf("%s base = %vx%v, want shared %vx%v", typ, w, h, baseW, baseH)
		}
	}
}

func TestNodeBoxFloors(t *testing.T) {
	slim := node(canvas.TypeNumber, canvas.NumberData{Size: canvas.Size{Width: 200, Height: 10}}, 0, 0)
	if got := NodeBox(slim).Height; got != NumberMinHeight {
		t.Errorf("number height = %v, want floor %v", got, NumberMinHeight)
	}

	tiny := node(canvas.TypeInspector, canvas.InspectorData{Size: canvas.Size{Width: 30, Height: 30}}, 0, 0)
	box := NodeBox(tiny)
	if box.Height != MinHeight {
		t.Errorf("inspector height = %v, want floor %v", box.Height, MinHeight)
	}
	if box.Width < MinWidth {
		t.Errorf("width %v below floor %v", box.Width, MinWidth)
	}
}

func TestNodeBoxHeightCorrections(t *testing.T) {
	viewport := node(canvas.TypeViewport, canvas.ViewportData{Size: canvas.Size{Width: 300, Height: 200}}, 0, 0)
	if got := NodeBox(viewport).Height; got != 240 {
		t.Errorf("viewport height = %v, want 240 (200 + toolbar)", got)
	}

	flat := node(canvas.TypeBackground, canvas.BackgroundData{Size: canvas.Size{Width: 200, Height: 120}}, 0, 0)
	gradient := node(canvas.TypeBackground, canvas.BackgroundData{Gradient: true, Size: canvas.Size{Width: 200, Height: 120}}, 0, 0)
	if got := NodeBox(flat).Height; got != 150 {
		t.Errorf("background height = %v, want 150", got)
	}
	if got := NodeBox(gradient).Height; got != 180 {
		t.Errorf("gradient background height = %v, want 180", got)
	}
}

func TestMathWidensWithOperands(t *testing.T) {
	two := node(canvas.TypeMath, canvas.MathData{Op: canvas.MathAdd, Operands: 2}, 0, 0)
	six := node(canvas.TypeMath, canvas.MathData{Op: canvas.MathAdd, Operands: 6}, 0, 0)
	if NodeBox(six).Height <= NodeBox(two).Height {
		t.Error("math box should grow with the operand count")
	}
}

func TestPanelGrowsWithTextClamped(t *testing.T) {
	short := node(canvas.TypePanel, canvas.PanelData{Text: "hi"}, 0, 0)
	long := node(canvas.TypePanel, canvas.PanelData{Text: strings.Repeat("x", 40)}, 0, 0)
	huge := node(canvas.TypePanel, canvas.PanelData{Text: strings.Repeat("x", 4000)}, 0, 0)

	if NodeBox(long).Width <= NodeBox(short).Width {
		t.Error("panel width should grow with text length")
	}
	if got := NodeBox(huge).Width; got != 420 {
		t.Errorf("huge panel width = %v, want the 420 clamp", got)
	}
}

func TestBoxUnionContains(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 100, Height: 100}
	b := Box{X: 200, Y: 200, Width: 100, Height: 100}

	u := a.Union(b)
	if u != (Box{X: 0, Y: 0, Width: 300, Height: 300}) {
		t.Errorf("union = %+v", u)
	}
	if !u.Contains(canvas.Point{X: 150, Y: 150}) {
		t.Error("union should contain its interior")
	}
	if u.Contains(canvas.Point{X: 301, Y: 150}) {
		t.Error("union should not contain points beyond its edge")
	}
}
