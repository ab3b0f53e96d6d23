package canvas

import (
	"fmt"
	"slices"
)

// Type is the discriminator tag of a node. The set of types is fixed;
// [KnownType] reports membership and the JSON codec rejects anything
// else.
type Type string

const (
	// Primitive shapes. Their data carries scene geometry (sizes in
	// scene units) and a transform - never a measured canvas size.
	TypeBox      Type = "box"
	TypeSphere   Type = "sphere"
	TypeCylinder Type = "cylinder"
	TypeTorus    Type = "torus"
	TypePlane    Type = "plane"

	// Value sources and operators.
	TypeVector Type = "vector"
	TypeNumber Type = "number"
	TypeMath   Type = "math"
	TypeSeries Type = "series"

	// Widgets and sinks.
	TypePanel      Type = "panel"
	TypeInspector  Type = "inspector"
	TypeViewport   Type = "viewport"
	TypeBackground Type = "background"

	// Container.
	TypeGroup Type = "group"
)

// KnownType reports whether t is one of the fixed node types.
func KnownType(t Type) bool {
	switch t {
	case TypeBox, TypeSphere, TypeCylinder, TypeTorus, TypePlane,
		TypeVector, TypeNumber, TypeMath, TypeSeries,
		TypePanel, TypeInspector, TypeViewport, TypeBackground,
		TypeGroup:
		return true
	}
	return false
}

// IsPrimitive reports whether t is a primitive shape type. Primitive
// data fields are scene geometry and must never be read as canvas
// size.
func IsPrimitive(t Type) bool {
	switch t {
	case TypeBox, TypeSphere, TypeCylinder, TypeTorus, TypePlane:
		return true
	}
	return false
}

// Data is the typed payload of a node: a tagged union with exactly
// one variant struct per node type, each carrying only the fields
// relevant to that type. The union is closed - variants live in this
// package so that sizing and serialization can dispatch exhaustively
// over the tag.
type Data interface {
	// Kind returns the type tag the variant belongs to.
	Kind() Type
	// Clone returns an independent copy of the variant.
	Clone() Data
	// InPorts returns the variant's input ports as a read-only view.
	InPorts() []Port
	// OutPorts returns the variant's output ports as a read-only view.
	OutPorts() []Port

	equal(Data) bool
}

// Measurable is implemented by variants whose on-canvas extent is
// measured by the renderer and written back into the data. Primitive
// shape variants deliberately do not implement it: their width/height
// fields are scene geometry.
type Measurable interface {
	Measured() Size
}

// Spatial is implemented by variants that place geometry in the 3D
// scene. The history manager compares poses when judging whether a
// change is significant.
type Spatial interface {
	Pose() Transform
}

// DefaultData returns the default variant for a node type, used when
// a serialized node carries no data payload and by document
// scaffolding. Unknown types yield an error.
func DefaultData(t Type) (Data, error) {
	switch t {
	case TypeBox:
		return BoxData{Width: 1, Height: 1, Depth: 1, Transform: DefaultTransform()}, nil
	case TypeSphere:
		return SphereData{Radius: 1, Transform: DefaultTransform()}, nil
	case TypeCylinder:
		return CylinderData{Radius: 1, Height: 2, Transform: DefaultTransform()}, nil
	case TypeTorus:
		return TorusData{Radius: 1, Tube: 0.4, Transform: DefaultTransform()}, nil
	case TypePlane:
		return PlaneData{Width: 2, Depth: 2, Transform: DefaultTransform()}, nil
	case TypeVector:
		return VectorData{}, nil
	case TypeNumber:
		return NumberData{Max: 10, Step: 0.1}, nil
	case TypeMath:
		return MathData{Op: MathAdd, Operands: 2}, nil
	case TypeSeries:
		return SeriesData{Step: 1, Count: 10}, nil
	case TypePanel:
		return PanelData{}, nil
	case TypeInspector:
		return InspectorData{}, nil
	case TypeViewport:
		return ViewportData{ShowGrid: true}, nil
	case TypeBackground:
		return BackgroundData{Color: "#1a1a2e"}, nil
	case TypeGroup:
		return GroupData{Label: "Group"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// ====== Shared port tables ======
//
// Port lists are derived from the variant, not stored. Shared slices
// below are read-only views; callers must not modify them.

var (
	geometryOut = []Port{{Name: "shape", Type: PortGeometry}}

	boxIn      = []Port{{Name: "width", Type: PortNumber}, {Name: "height", Type: PortNumber}, {Name: "depth", Type: PortNumber}}
	sphereIn   = []Port{{Name: "radius", Type: PortNumber}}
	cylinderIn = []Port{{Name: "radius", Type: PortNumber}, {Name: "height", Type: PortNumber}}
	torusIn    = []Port{{Name: "radius", Type: PortNumber}, {Name: "tube", Type: PortNumber}}
	planeIn    = []Port{{Name: "width", Type: PortNumber}, {Name: "depth", Type: PortNumber}}

	vectorIn  = []Port{{Name: "x", Type: PortNumber}, {Name: "y", Type: PortNumber}, {Name: "z", Type: PortNumber}}
	vectorOut = []Port{{Name: "vector", Type: PortVector}}

	numberOut = []Port{{Name: "value", Type: PortNumber}}

	seriesIn  = []Port{{Name: "start", Type: PortNumber}, {Name: "step", Type: PortNumber}, {Name: "count", Type: PortNumber}}
	seriesOut = []Port{{Name: "series", Type: PortNumber}}

	inspectorIn  = []Port{{Name: "value", Type: PortAny}}
	viewportIn   = []Port{{Name: "shape", Type: PortGeometry}}
	backgroundIn = []Port{{Name: "color", Type: PortColor}}

	mathOut = []Port{{Name: "result", Type: PortNumber}}
)

// ====== Primitive shapes ======

// BoxData holds a box primitive's scene geometry. Width, Height, and
// Depth are scene units - they are not a canvas size.
type BoxData struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Depth     float64   `json:"depth"`
	Transform Transform `json:"transform"`
}

func (d BoxData) Kind() Type       { return TypeBox }
func (d BoxData) Clone() Data      { return d }
func (d BoxData) InPorts() []Port  { return boxIn }
func (d BoxData) OutPorts() []Port { return geometryOut }
func (d BoxData) Pose() Transform  { return d.Transform }
func (d BoxData) equal(o Data) bool {
	b, ok := o.(BoxData)
	return ok && d == b
}

// SphereData holds a sphere primitive's scene geometry.
type SphereData struct {
	Radius    float64   `json:"radius"`
	Transform Transform `json:"transform"`
}

func (d SphereData) Kind() Type       { return TypeSphere }
func (d SphereData) Clone() Data      { return d }
func (d SphereData) InPorts() []Port  { return sphereIn }
func (d SphereData) OutPorts() []Port { return geometryOut }
func (d SphereData) Pose() Transform  { return d.Transform }
func (d SphereData) equal(o Data) bool {
	s, ok := o.(SphereData)
	return ok && d == s
}

// CylinderData holds a cylinder primitive's scene geometry.
type CylinderData struct {
	Radius    float64   `json:"radius"`
	Height    float64   `json:"height"`
	Transform Transform `json:"transform"`
}

func (d CylinderData) Kind() Type       { return TypeCylinder }
func (d CylinderData) Clone() Data      { return d }
func (d CylinderData) InPorts() []Port  { return cylinderIn }
func (d CylinderData) OutPorts() []Port { return geometryOut }
func (d CylinderData) Pose() Transform  { return d.Transform }
func (d CylinderData) equal(o Data) bool {
	c, ok := o.(CylinderData)
	return ok && d == c
}

// TorusData holds a torus primitive's scene geometry.
type TorusData struct {
	Radius    float64   `json:"radius"`
	Tube      float64   `json:"tube"`
	Transform Transform `json:"transform"`
}

func (d TorusData) Kind() Type       { return TypeTorus }
func (d TorusData) Clone() Data      { return d }
func (d TorusData) InPorts() []Port  { return torusIn }
func (d TorusData) OutPorts() []Port { return geometryOut }
func (d TorusData) Pose() Transform  { return d.Transform }
func (d TorusData) equal(o Data) bool {
	t, ok := o.(TorusData)
	return ok && d == t
}

// PlaneData holds a plane primitive's scene geometry.
type PlaneData struct {
	Width     float64   `json:"width"`
	Depth     float64   `json:"depth"`
	Transform Transform `json:"transform"`
}

func (d PlaneData) Kind() Type       { return TypePlane }
func (d PlaneData) Clone() Data      { return d }
func (d PlaneData) InPorts() []Port  { return planeIn }
func (d PlaneData) OutPorts() []Port { return geometryOut }
func (d PlaneData) Pose() Transform  { return d.Transform }
func (d PlaneData) equal(o Data) bool {
	p, ok := o.(PlaneData)
	return ok && d == p
}

// ====== Value sources and operators ======

// VectorData is a 3-component vector input widget.
type VectorData struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Size Size    `json:"size"`
}

func (d VectorData) Kind() Type       { return TypeVector }
func (d VectorData) Clone() Data      { return d }
func (d VectorData) InPorts() []Port  { return vectorIn }
func (d VectorData) OutPorts() []Port { return vectorOut }
func (d VectorData) Measured() Size   { return d.Size }
func (d VectorData) equal(o Data) bool {
	v, ok := o.(VectorData)
	return ok && d == v
}

// NumberData is a scalar slider widget.
type NumberData struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Size  Size    `json:"size"`
}

func (d NumberData) Kind() Type       { return TypeNumber }
func (d NumberData) Clone() Data      { return d }
func (d NumberData) InPorts() []Port  { return nil }
func (d NumberData) OutPorts() []Port { return numberOut }
func (d NumberData) Measured() Size   { return d.Size }
func (d NumberData) equal(o Data) bool {
	n, ok := o.(NumberData)
	return ok && d == n
}

// MathOp selects the arithmetic operation of a math node.
type MathOp string

const (
	MathAdd      MathOp = "add"
	MathSubtract MathOp = "subtract"
	MathMultiply MathOp = "multiply"
	MathDivide   MathOp = "divide"
)

// MathData is an arithmetic operator node. Operands controls the
// number of input ports; values below 2 behave as 2 and the port list
// is capped at 26 ("a" through "z").
type MathData struct {
	Op       MathOp `json:"op"`
	Operands int    `json:"operands"`
	Size     Size   `json:"size"`
}

func (d MathData) Kind() Type  { return TypeMath }
func (d MathData) Clone() Data { return d }

func (d MathData) InPorts() []Port {
	n := max(d.Operands, 2)
	n = min(n, 26)
	ports := make([]Port, n)
	for i := range ports {
		ports[i] = Port{Name: string(rune('a' + i)), Type: PortNumber}
	}
	return ports
}

func (d MathData) OutPorts() []Port { return mathOut }
func (d MathData) Measured() Size   { return d.Size }
func (d MathData) equal(o Data) bool {
	m, ok := o.(MathData)
	return ok && d == m
}

// SeriesData generates an arithmetic sequence. Its ports render
// inline with the node body, so the layout engine exempts it from
// port stick-out margins.
type SeriesData struct {
	Start float64 `json:"start"`
	Step  float64 `json:"step"`
	Count int     `json:"count"`
	Size  Size    `json:"size"`
}

func (d SeriesData) Kind() Type       { return TypeSeries }
func (d SeriesData) Clone() Data      { return d }
func (d SeriesData) InPorts() []Port  { return seriesIn }
func (d SeriesData) OutPorts() []Port { return seriesOut }
func (d SeriesData) Measured() Size   { return d.Size }
func (d SeriesData) equal(o Data) bool {
	s, ok := o.(SeriesData)
	return ok && d == s
}

// ====== Widgets and sinks ======

// PanelData is a free-floating text annotation. Panels have no ports;
// they exist purely as canvas notes.
type PanelData struct {
	Text string `json:"text"`
	Size Size   `json:"size"`
}

func (d PanelData) Kind() Type       { return TypePanel }
func (d PanelData) Clone() Data      { return d }
func (d PanelData) InPorts() []Port  { return nil }
func (d PanelData) OutPorts() []Port { return nil }
func (d PanelData) Measured() Size   { return d.Size }
func (d PanelData) equal(o Data) bool {
	p, ok := o.(PanelData)
	return ok && d == p
}

// InspectorData shows the live value flowing into its input port.
type InspectorData struct {
	Size Size `json:"size"`
}

func (d InspectorData) Kind() Type       { return TypeInspector }
func (d InspectorData) Clone() Data      { return d }
func (d InspectorData) InPorts() []Port  { return inspectorIn }
func (d InspectorData) OutPorts() []Port { return nil }
func (d InspectorData) Measured() Size   { return d.Size }
func (d InspectorData) equal(o Data) bool {
	i, ok := o.(InspectorData)
	return ok && d == i
}

// ViewportData is an embedded 3D preview of the geometry flowing into
// it.
type ViewportData struct {
	ShowGrid bool `json:"showGrid"`
	Size     Size `json:"size"`
}

func (d ViewportData) Kind() Type       { return TypeViewport }
func (d ViewportData) Clone() Data      { return d }
func (d ViewportData) InPorts() []Port  { return viewportIn }
func (d ViewportData) OutPorts() []Port { return nil }
func (d ViewportData) Measured() Size   { return d.Size }
func (d ViewportData) equal(o Data) bool {
	v, ok := o.(ViewportData)
	return ok && d == v
}

// BackgroundData sets the scene background: a flat color, or a
// two-color gradient when Gradient is set.
type BackgroundData struct {
	Color       string `json:"color"`
	SecondColor string `json:"secondColor,omitempty"`
	Gradient    bool   `json:"gradient"`
	Size        Size   `json:"size"`
}

func (d BackgroundData) Kind() Type       { return TypeBackground }
func (d BackgroundData) Clone() Data      { return d }
func (d BackgroundData) InPorts() []Port  { return backgroundIn }
func (d BackgroundData) OutPorts() []Port { return nil }
func (d BackgroundData) Measured() Size   { return d.Size }
func (d BackgroundData) equal(o Data) bool {
	b, ok := o.(BackgroundData)
	return ok && d == b
}

// ====== Container ======

// GroupData is a container node enclosing member nodes. Children
// holds non-owning references by node ID: membership is exclusive (a
// node belongs to at most one group) and groups never nest. New marks
// a freshly created group for the creation animation; the editor
// clears it shortly after creation.
type GroupData struct {
	Label    string   `json:"label"`
	Children []string `json:"children"`
	Size     Size     `json:"size"`
	New      bool     `json:"new,omitempty"`
}

func (d GroupData) Kind() Type { return TypeGroup }

func (d GroupData) Clone() Data {
	d.Children = slices.Clone(d.Children)
	return d
}

func (d GroupData) InPorts() []Port  { return nil }
func (d GroupData) OutPorts() []Port { return nil }
func (d GroupData) Measured() Size   { return d.Size }
func (d GroupData) equal(o Data) bool {
	g, ok := o.(GroupData)
	return ok && d.Label == g.Label && d.Size == g.Size && d.New == g.New &&
		slices.Equal(d.Children, g.Children)
}

// Compile-time checks that the optional interfaces are implemented by
// the intended variants.
var (
	_ Spatial = BoxData{}
	_ Spatial = SphereData{}
	_ Spatial = CylinderData{}
	_ Spatial = TorusData{}
	_ Spatial = PlaneData{}

	_ Measurable = VectorData{}
	_ Measurable = NumberData{}
	_ Measurable = MathData{}
	_ Measurable = SeriesData{}
	_ Measurable = PanelData{}
	_ Measurable = InspectorData{}
	_ Measurable = ViewportData{}
	_ Measurable = BackgroundData{}
	_ Measurable = GroupData{}
)
