package layout

import (
	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Geometry constants, in canvas units.
const (
	// PortStickOut is the margin reserved outside a node's visual body
	// for port handles protruding from its edge.
	PortStickOut = 24

	// MinWidth and MinHeight are the safety floors guaranteeing a
	// non-degenerate box for every node. Number nodes are a slim
	// slider row and get the lower NumberMinHeight floor.
	MinWidth        = 100
	MinHeight       = 100
	NumberMinHeight = 50

	// measuredFloor is the threshold below which a measured dimension
	// is treated as "not measured yet".
	measuredFloor = 1
)

// Box is an axis-aligned rectangle on the canvas. Boxes are derived
// on demand and never stored on a node.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	x := min(b.X, o.X)
	y := min(b.Y, o.Y)
	return Box{
		X:      x,
		Y:      y,
		Width:  max(b.X+b.Width, o.X+o.Width) - x,
		Height: max(b.Y+b.Height, o.Y+o.Height) - y,
	}
}

// Contains reports whether the point lies inside b, edges included.
func (b Box) Contains(p canvas.Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Center returns the midpoint of b.
func (b Box) Center() canvas.Point {
	return canvas.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// sizing is a per-type fallback sizing policy, consulted when a node
// has no usable measurement. Policies are shared values: types that
// look alike point at the same policy, so their sizing can never
// drift apart.
type sizing func(n canvas.Node) canvas.Size

func fixedSize(w, h float64) sizing {
	return func(canvas.Node) canvas.Size {
		return canvas.Size{Width: w, Height: h}
	}
}

var (
	// shapeSizing covers the parameter-row widgets that render like a
	// sphere node: the sphere itself, box, vector, and plane.
	shapeSizing = fixedSize(240, 220)

	// solidSizing covers the taller two-parameter solids.
	solidSizing = fixedSize(240, 250)

	numberSizing     = fixedSize(240, 60)
	seriesSizing     = fixedSize(260, 170)
	inspectorSizing  = fixedSize(220, 140)
	viewportSizing   = fixedSize(320, 240)
	backgroundSizing = fixedSize(240, 150)
	groupSizing      = fixedSize(300, 200)

	// mathSizing widens with the operand count so extra input ports
	// stay on the body.
	mathSizing sizing = func(n canvas.Node) canvas.Size {
		h := 90 + 26*float64(len(n.InPorts()))
		return canvas.Size{Width: 180, Height: h}
	}

	// panelSizing widens with the annotation text, clamped so huge
	// notes don't produce absurd boxes.
	panelSizing sizing = func(n canvas.Node) canvas.Size {
		text := ""
		if d, ok := n.Data.(canvas.PanelData); ok {
			text = d.Text
		}
		w := 120 + 7*float64(len(text))
		w = min(max(w, 150), 420)
		return canvas.Size{Width: w, Height: 100}
	}
)

func fallbackSizing(t canvas.Type) sizing {
	switch t {
	case canvas.TypeBox, canvas.TypeSphere, canvas.TypeVector, canvas.TypePlane:
		return shapeSizing
	case canvas.TypeCylinder, canvas.TypeTorus:
		return solidSizing
	case canvas.TypeNumber:
		return numberSizing
	case canvas.TypeMath:
		return mathSizing
	case canvas.TypeSeries:
		return seriesSizing
	case canvas.TypePanel:
		return panelSizing
	case canvas.TypeInspector:
		return inspectorSizing
	case canvas.TypeViewport:
		return viewportSizing
	case canvas.TypeBackground:
		return backgroundSizing
	case canvas.TypeGroup:
		return groupSizing
	}
	return fixedSize(MinWidth, MinHeight)
}

// NodeBox computes the node's bounding box: base size (measured when
// the variant exposes a usable measurement, per-type fallback
// otherwise), plus port stick-out margins, type height corrections,
// and safety floors. Pure and deterministic in (type, data, position).
//
// Primitive shape variants never satisfy [canvas.Measurable], so
// their scene dimensions cannot leak into canvas sizing.
func NodeBox(n canvas.Node) Box {
	left, right := stickOut(n)

	base := fallbackSizing(n.Type)(n)
	w, h := base.Width, base.Height
	if m, ok := n.Data.(canvas.Measurable); ok {
		ms := m.Measured()
		if ms.Width > measuredFloor {
			w = ms.Width
		}
		if ms.Height > measuredFloor {
			h = ms.Height
		}
	}

	h += heightCorrection(n)

	w = max(w, MinWidth)
	floor := float64(MinHeight)
	if n.Type == canvas.TypeNumber {
		floor = NumberMinHeight
	}
	h = max(h, floor)

	return Box{
		X:      n.Position.X - left,
		Y:      n.Position.Y,
		Width:  left + w + right,
		Height: h,
	}
}

// stickOut returns the left/right margins for port handles. Series
// nodes render their ports inline and get no margins.
func stickOut(n canvas.Node) (left, right float64) {
	if n.Type == canvas.TypeSeries {
		return 0, 0
	}
	if len(n.InPorts()) > 0 {
		left = PortStickOut
	}
	if len(n.OutPorts()) > 0 {
		right = PortStickOut
	}
	return left, right
}

// heightCorrection returns extra height for types whose chrome sits
// below the measured body: viewports carry a toolbar strip, background
// nodes a color row (two rows in gradient mode).
func heightCorrection(n canvas.Node) float64 {
	switch d := n.Data.(type) {
	case canvas.ViewportData:
		return 40
	case canvas.BackgroundData:
		if d.Gradient {
			return 60
		}
		return 30
	}
	return 0
}
