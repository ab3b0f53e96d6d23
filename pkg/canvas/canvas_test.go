package canvas

import "testing"

func numberNode(id string, value float64) Node {
	return Node{
		ID:       id,
		Type:     TypeNumber,
		Position: Point{X: 100, Y: 100},
		Data:     NumberData{Value: value, Min: 0, Max: 10, Step: 0.1},
	}
}

func sphereNode(id string) Node {
	return Node{
		ID:       id,
		Type:     TypeSphere,
		Position: Point{X: 400, Y: 100},
		Data:     SphereData{Radius: 1.5, Transform: DefaultTransform()},
	}
}

func groupNode(id string, children ...string) Node {
	return Node{
		ID:   id,
		Type: TypeGroup,
		Data: GroupData{Label: "Group", Children: children},
	}
}

func TestDocumentCloneIsIndependent(t *testing.T) {
	doc := Document{
		Nodes: []Node{
			numberNode("num-1", 2),
			sphereNode("sphere-1"),
			groupNode("group-1", "num-1", "sphere-1"),
		},
		Connections: []Connection{
			{ID: "conn-1", SourceNode: "num-1", SourcePort: "value", TargetNode: "sphere-1", TargetPort: "radius"},
		},
	}

	clone := doc.Clone()
	if !clone.Equal(doc) {
		t.Fatal("clone should equal the original")
	}

	clone.Nodes[0].Position.X = 999
	clone.Nodes[0].Data = NumberData{Value: 7}
	clone.Connections[0].TargetPort = "elsewhere"
	if g, ok := clone.Nodes[2].Data.(GroupData); ok {
		g.Children[0] = "swapped"
	}

	if doc.Nodes[0].Position.X != 100 {
		t.Error("mutating clone position leaked into original")
	}
	if got := doc.Nodes[0].Data.(NumberData).Value; got != 2 {
		t.Errorf("original value = %v, want 2", got)
	}
	if doc.Connections[0].TargetPort != "radius" {
		t.Error("mutating clone connection leaked into original")
	}
	if got := doc.Nodes[2].Data.(GroupData).Children[0]; got != "num-1" {
		t.Errorf("original group child = %q, want num-1", got)
	}
}

func TestNodeEqual(t *testing.T) {
	base := numberNode("n", 2)

	moved := base
	moved.Position.Y = 500
	retuned := base
	retuned.Data = NumberData{Value: 3, Min: 0, Max: 10, Step: 0.1}
	retyped := base
	retyped.Type = TypeSeries
	retyped.Data = SeriesData{Start: 0, Step: 1, Count: 5}

	if !base.Equal(base.Clone()) {
		t.Error("node should equal its clone")
	}
	if base.Equal(moved) {
		t.Error("moved node should not be equal")
	}
	if base.Equal(retuned) {
		t.Error("node with changed data should not be equal")
	}
	if base.Equal(retyped) {
		t.Error("node with changed type should not be equal")
	}

	nilData := Node{ID: "n", Type: TypeNumber, Position: base.Position}
	if base.Equal(nilData) || nilData.Equal(base) {
		t.Error("nil data should never equal populated data")
	}
	if !nilData.Equal(nilData) {
		t.Error("two nil-data nodes should be equal")
	}
}

func TestDocumentEqualIsOrderSensitive(t *testing.T) {
	a := Document{Nodes: []Node{numberNode("n1", 1), numberNode("n2", 2)}}
	b := Document{Nodes: []Node{numberNode("n2", 2), numberNode("n1", 1)}}
	if a.Equal(b) {
		t.Error("node order is z-order; reordered documents must differ")
	}
}

func TestMathInPorts(t *testing.T) {
	tests := []struct {
		operands int
		want     int
		first    string
		last     string
	}{
		{operands: 0, want: 2, first: "a", last: "b"},
		{operands: 2, want: 2, first: "a", last: "b"},
		{operands: 5, want: 5, first: "a", last: "e"},
		{operands: 26, want: 26, first: "a", last: "z"},
		{operands: 40, want: 26, first: "a", last: "z"},
	}
	for _, tc := range tests {
		ports := MathData{Op: MathAdd, Operands: tc.operands}.InPorts()
		if len(ports) != tc.want {
			t.Errorf("operands=%d: got %d ports, want %d", tc.operands, len(ports), tc.want)
			continue
		}
		if ports[0].Name != tc.first || ports[len(ports)-1].Name != tc.last {
			t.Errorf("operands=%d: ports span %s..%s, want %s..%s",
				tc.operands, ports[0].Name, ports[len(ports)-1].Name, tc.first, tc.last)
		}
	}
}

func TestDefaultData(t *testing.T) {
	for _, typ := range []Type{
		TypeBox, TypeSphere, TypeCylinder, TypeTorus, TypePlane,
		TypeVector, TypeNumber, TypeMath, TypeSeries,
		TypePanel, TypeInspector, TypeViewport, TypeBackground,
		TypeGroup,
	} {
		data, err := DefaultData(typ)
		if err != nil {
			t.Errorf("DefaultData(%s): %v", typ, err)
			continue
		}
		if data.Kind() != typ {
			t.Errorf("DefaultData(%s).Kind() = %s", typ, data.Kind())
		}
	}

	if _, err := DefaultData("teapot"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestFindNode(t *testing.T) {
	nodes := []Node{numberNode("a", 1), numberNode("b", 2)}
	if i := FindNode(nodes, "b"); i != 1 {
		t.Errorf("FindNode(b) = %d, want 1", i)
	}
	if i := FindNode(nodes, "zzz"); i != -1 {
		t.Errorf("FindNode(zzz) = %d, want -1", i)
	}
}

func TestGroupsReturnsCopies(t *testing.T) {
	doc := Document{Nodes: []Node{
		groupNode("g1", "a"),
		numberNode("a", 1),
	}}
	groups := doc.Groups()
	if len(groups) != 1 || groups[0].ID != "g1" {
		t.Fatalf("Groups() = %v", groups)
	}
	groups[0].Data.(GroupData).Children[0] = "mutated"
	if doc.Nodes[0].Data.(GroupData).Children[0] != "a" {
		t.Error("Groups() must return independent copies")
	}
}

func TestCountByType(t *testing.T) {
	doc := Document{Nodes: []Node{
		numberNode("a", 1), numberNode("b", 2), sphereNode("s"),
	}}
	counts := doc.CountByType()
	if counts[TypeNumber] != 2 || counts[TypeSphere] != 1 {
		t.Errorf("CountByType() = %v", counts)
	}
}
