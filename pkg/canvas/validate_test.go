package canvas

import (
	"errors"
	"testing"
)

func conn(id, src, srcPort, tgt, tgtPort string) Connection {
	return Connection{ID: id, SourceNode: src, SourcePort: srcPort, TargetNode: tgt, TargetPort: tgtPort}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc := Document{
		Nodes: []Node{
			groupNode("g", "num", "math"),
			numberNode("num", 2),
			{ID: "math", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
			sphereNode("sphere"),
			{ID: "view", Type: TypeViewport, Data: ViewportData{ShowGrid: true}},
		},
		Connections: []Connection{
			conn("c1", "num", "value", "math", "a"),
			conn("c2", "num", "value", "math", "b"),
			conn("c3", "math", "result", "sphere", "radius"),
			conn("c4", "sphere", "shape", "view", "shape"),
		},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{
			name: "empty node ID",
			doc:  Document{Nodes: []Node{{Type: TypeNumber, Data: NumberData{}}}},
			want: ErrMissingNodeID,
		},
		{
			name: "duplicate node ID",
			doc:  Document{Nodes: []Node{numberNode("dup", 1), numberNode("dup", 2)}},
			want: ErrDuplicateNodeID,
		},
		{
			name: "duplicate connection ID",
			doc: Document{
				Nodes: []Node{numberNode("n", 1), sphereNode("s"), sphereNode("s2")},
				Connections: []Connection{
					conn("c", "n", "value", "s", "radius"),
					conn("c", "n", "value", "s2", "radius"),
				},
			},
			want: ErrDuplicateConnectionID,
		},
		{
			name: "dangling source",
			doc: Document{
				Nodes:       []Node{sphereNode("s")},
				Connections: []Connection{conn("c", "ghost", "value", "s", "radius")},
			},
			want: ErrUnknownEndpoint,
		},
		{
			name: "dangling target",
			doc: Document{
				Nodes:       []Node{numberNode("n", 1)},
				Connections: []Connection{conn("c", "n", "value", "ghost", "radius")},
			},
			want: ErrUnknownEndpoint,
		},
		{
			name: "unknown output port",
			doc: Document{
				Nodes:       []Node{numberNode("n", 1), sphereNode("s")},
				Connections: []Connection{conn("c", "n", "shape", "s", "radius")},
			},
			want: ErrUnknownPort,
		},
		{
			name: "unknown input port",
			doc: Document{
				Nodes:       []Node{numberNode("n", 1), sphereNode("s")},
				Connections: []Connection{conn("c", "n", "value", "s", "diameter")},
			},
			want: ErrUnknownPort,
		},
		{
			name: "math port beyond operand count",
			doc: Document{
				Nodes: []Node{
					numberNode("n", 1),
					{ID: "m", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
				},
				Connections: []Connection{conn("c", "n", "value", "m", "c")},
			},
			want: ErrUnknownPort,
		},
		{
			name: "group child does not exist",
			doc:  Document{Nodes: []Node{groupNode("g", "ghost")}},
			want: ErrMissingGroupChild,
		},
		{
			name: "nested group",
			doc: Document{Nodes: []Node{
				groupNode("outer", "inner"),
				groupNode("inner"),
			}},
			want: ErrNestedGroup,
		},
		{
			name: "shared group child",
			doc: Document{Nodes: []Node{
				groupNode("g1", "n"),
				groupNode("g2", "n"),
				numberNode("n", 1),
			}},
			want: ErrSharedGroupChild,
		},
		{
			name: "two-node cycle",
			doc: Document{
				Nodes: []Node{
					{ID: "m1", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
					{ID: "m2", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
				},
				Connections: []Connection{
					conn("c1", "m1", "result", "m2", "a"),
					conn("c2", "m2", "result", "m1", "a"),
				},
			},
			want: ErrCycle,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.doc.Validate()
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateAllowsDiamondFanOut(t *testing.T) {
	// A value feeding two consumers that converge again is a DAG, not
	// a cycle.
	doc := Document{
		Nodes: []Node{
			numberNode("n", 1),
			{ID: "m1", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
			{ID: "m2", Type: TypeMath, Data: MathData{Op: MathMultiply, Operands: 2}},
			{ID: "m3", Type: TypeMath, Data: MathData{Op: MathAdd, Operands: 2}},
		},
		Connections: []Connection{
			conn("c1", "n", "value", "m1", "a"),
			conn("c2", "n", "value", "m2", "a"),
			conn("c3", "m1", "result", "m3", "a"),
			conn("c4", "m2", "result", "m3", "b"),
		},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
