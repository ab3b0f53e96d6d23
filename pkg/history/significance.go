package history

import (
	"math"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Thresholds below which a purely geometric delta is insignificant:
// canvas positions and scene locations within PositionEpsilon per
// axis, rotations and scales within TransformEpsilon per axis.
const (
	PositionEpsilon  = 0.1
	TransformEpsilon = 0.001
)

// Significant reports whether two snapshots differ enough to deserve
// a history entry. Two snapshots are insignificantly different iff
// their connection lists are element-wise equal, node counts match,
// and every node has an ID-matched counterpart of the same type whose
// position (and, for shape variants, pose) stays within the epsilons.
// Anything else - a node or connection added or removed, a type
// change, a pose present on one side only, a larger delta - is
// significant.
//
// The heuristic deliberately ignores non-geometric data changes:
// editing a panel's text or a slider's value without moving anything
// does not register. That matches the editor's intent (undo is
// primarily for spatial edits) and is relied on by callers that write
// transient flags without polluting history.
func Significant(a, b canvas.Document) bool {
	if !canvas.ConnectionsEqual(a.Connections, b.Connections) {
		return true
	}
	if len(a.Nodes) != len(b.Nodes) {
		return true
	}

	byID := make(map[string]canvas.Node, len(b.Nodes))
	for _, n := range b.Nodes {
		byID[n.ID] = n
	}
	for _, n := range a.Nodes {
		o, ok := byID[n.ID]
		if !ok || o.Type != n.Type {
			return true
		}
		if exceeds(n.Position.X, o.Position.X, PositionEpsilon) ||
			exceeds(n.Position.Y, o.Position.Y, PositionEpsilon) {
			return true
		}
		if poseDiffers(n.Data, o.Data) {
			return true
		}
	}
	return false
}

func poseDiffers(a, b canvas.Data) bool {
	sa, aok := a.(canvas.Spatial)
	sb, bok := b.(canvas.Spatial)
	if aok != bok {
		return true
	}
	if !aok {
		return false
	}

	pa, pb := sa.Pose(), sb.Pose()
	return vecExceeds(pa.Location, pb.Location, PositionEpsilon) ||
		vecExceeds(pa.Rotation, pb.Rotation, TransformEpsilon) ||
		vecExceeds(pa.Scale, pb.Scale, TransformEpsilon)
}

func vecExceeds(a, b canvas.Vec3, eps float64) bool {
	return exceeds(a.X, b.X, eps) || exceeds(a.Y, b.Y, eps) || exceeds(a.Z, b.Z, eps)
}

func exceeds(a, b, eps float64) bool {
	return math.Abs(a-b) > eps
}
