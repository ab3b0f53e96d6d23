package canvas

import "slices"

// Point is a position on the 2D canvas, in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a vector in 3D scene space. Primitive shape parameters and
// transforms are expressed in scene units, which are unrelated to
// canvas units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Size is a measured on-canvas extent in canvas units. A zero or
// near-zero dimension means "not measured yet" - consumers fall back
// to per-type sizing policies.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transform is a node's pose in the 3D scene: where the generated
// geometry sits, how it is rotated (radians per axis), and how it is
// scaled.
type Transform struct {
	Location Vec3 `json:"location"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// DefaultTransform returns the neutral pose: origin location, zero
// rotation, unit scale.
func DefaultTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// PortType classifies the values a port carries.
type PortType string

const (
	PortNumber   PortType = "number"
	PortVector   PortType = "vector"
	PortGeometry PortType = "geometry"
	PortColor    PortType = "color"
	PortAny      PortType = "any"
)

// Port is a named, typed attachment point on a node. Ports are
// derived deterministically from a node's data variant and are not
// serialized; connections reference them by name.
type Port struct {
	Name string   `json:"name"`
	Type PortType `json:"type"`
}

// Node is a placeable canvas entity: a stable identifier, a type tag,
// a 2D position, and a typed data variant. The variant carries only
// the fields relevant to its type; see [Data].
//
// The zero value is not usable - Data must be set (use [DefaultData]
// or a variant literal) before the node enters a document.
type Node struct {
	ID       string `json:"id"`
	Type     Type   `json:"type"`
	Position Point  `json:"position"`
	Data     Data   `json:"data"`
}

// Clone returns a structurally independent copy of the node.
// Mutating the copy's data never affects the original.
func (n Node) Clone() Node {
	if n.Data != nil {
		n.Data = n.Data.Clone()
	}
	return n
}

// Equal reports whether two nodes are structurally identical,
// including every data field. This is full equality, not the looser
// significance comparison used by the history manager.
func (n Node) Equal(o Node) bool {
	if n.ID != o.ID || n.Type != o.Type || n.Position != o.Position {
		return false
	}
	if n.Data == nil || o.Data == nil {
		return n.Data == nil && o.Data == nil
	}
	return n.Data.equal(o.Data)
}

// InPorts returns the node's input ports. Nodes with nil data expose
// no ports. The returned slice is a read-only view.
func (n Node) InPorts() []Port {
	if n.Data == nil {
		return nil
	}
	return n.Data.InPorts()
}

// OutPorts returns the node's output ports. Nodes with nil data
// expose no ports. The returned slice is a read-only view.
func (n Node) OutPorts() []Port {
	if n.Data == nil {
		return nil
	}
	return n.Data.OutPorts()
}

// Connection is a directed link from a source node's output port to a
// target node's input port, identified by its own ID.
type Connection struct {
	ID         string `json:"id"`
	SourceNode string `json:"sourceNode"`
	SourcePort string `json:"sourcePort"`
	TargetNode string `json:"targetNode"`
	TargetPort string `json:"targetPort"`
}

// Document is the unit of canvas state: the ordered node collection
// and the connection collection. Node order is z-order - earlier
// nodes render behind later ones, which is why group nodes are
// inserted at the front.
//
// Document is not safe for concurrent use without external
// synchronization; the editor session layer provides it.
type Document struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Clone returns a deep copy of the document. The copy shares no
// memory with the original: history snapshots rely on this.
func (d Document) Clone() Document {
	return Document{
		Nodes:       CloneNodes(d.Nodes),
		Connections: slices.Clone(d.Connections),
	}
}

// Equal reports whether two documents are structurally identical,
// element-wise and in order.
func (d Document) Equal(o Document) bool {
	return NodesEqual(d.Nodes, o.Nodes) && ConnectionsEqual(d.Connections, o.Connections)
}

// Node returns a copy of the node with the given ID, or false if no
// such node exists.
func (d Document) Node(id string) (Node, bool) {
	if i := FindNode(d.Nodes, id); i >= 0 {
		return d.Nodes[i], true
	}
	return Node{}, false
}

// CountByType tallies nodes per type tag.
func (d Document) CountByType() map[Type]int {
	counts := make(map[Type]int, len(d.Nodes))
	for _, n := range d.Nodes {
		counts[n.Type]++
	}
	return counts
}

// Groups returns copies of all group nodes in z-order.
func (d Document) Groups() []Node {
	var groups []Node
	for _, n := range d.Nodes {
		if n.Type == TypeGroup {
			groups = append(groups, n.Clone())
		}
	}
	return groups
}

// CloneNodes deep-copies a node slice. Returns nil for empty input so
// cloned empty collections stay comparable with slices.Equal-style
// checks.
func CloneNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// NodesEqual reports element-wise structural equality of two node
// slices, order included.
func NodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ConnectionsEqual reports element-wise equality of two connection
// slices, order included.
func ConnectionsEqual(a, b []Connection) bool {
	return slices.Equal(a, b)
}

// FindNode returns the index of the node with the given ID, or -1.
func FindNode(nodes []Node, id string) int {
	return slices.IndexFunc(nodes, func(n Node) bool { return n.ID == id })
}
