package layout

import (
	"math"
	"slices"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Group frame padding, in canvas units. The side padding surrounds
// the member union on every edge, the bottom chrome leaves room for
// the group's controls, and the header band sits above the content
// (it offsets the frame's Y only).
const (
	GroupPadSide   = 20
	GroupPadBottom = 30
	GroupHeader    = 45

	// ResizeEpsilon is the per-dimension threshold under which a
	// recomputed frame is considered unchanged, keeping redundant
	// geometry writes out of re-renders and the undo history.
	ResizeEpsilon = 1

	// Simple box defaults used by Overlaps for unmeasured nodes.
	simpleWidth  = 150
	simpleHeight = 100
)

// groupFrame returns the frame enclosing the union of member boxes,
// padded per the constants above.
func groupFrame(union Box) Box {
	return Box{
		X:      union.X - GroupPadSide,
		Y:      union.Y - GroupPadSide - GroupHeader,
		Width:  union.Width + 2*GroupPadSide,
		Height: union.Height + 2*GroupPadSide + GroupPadBottom,
	}
}

// memberUnion computes the union of the listed members' boxes.
// Members without a live node are skipped; ok is false when none are
// live.
func memberUnion(nodes []canvas.Node, members []string) (Box, bool) {
	var union Box
	found := false
	for _, id := range members {
		i := canvas.FindNode(nodes, id)
		if i < 0 {
			continue
		}
		b := NodeBox(nodes[i])
		if !found {
			union = b
			found = true
			continue
		}
		union = union.Union(b)
	}
	return union, found
}

// CreateGroup wraps the selected nodes in a new group node. Eligible
// members are the selected IDs that exist and are not themselves
// groups, de-duplicated in selection order; fewer than two eligible
// members is a no-op (ok = false, input returned untouched).
//
// The group node (label "Group", New flag set, children = eligible
// IDs) is positioned and sized to enclose the members' boxes plus
// padding and inserted at the front of the slice, so it renders
// behind its children. Eligible members are pulled out of any other
// group first - membership stays exclusive at all times - and
// affected lists every other group whose child list changed, so the
// caller can schedule their resize.
//
// CreateGroup never mutates its input; the returned slice is fresh.
func CreateGroup(nodes []canvas.Node, selection []string, newID string) (out []canvas.Node, group canvas.Node, affected []string, ok bool) {
	var eligible []string
	for _, id := range selection {
		if slices.Contains(eligible, id) || id == newID {
			continue
		}
		i := canvas.FindNode(nodes, id)
		if i < 0 || nodes[i].Type == canvas.TypeGroup {
			continue
		}
		eligible = append(eligible, id)
	}
	if len(eligible) < 2 {
		return nodes, canvas.Node{}, nil, false
	}

	union, _ := memberUnion(nodes, eligible)
	frame := groupFrame(union)

	out = canvas.CloneNodes(nodes)
	affected = removeFromGroups(out, eligible)

	group = canvas.Node{
		ID:       newID,
		Type:     canvas.TypeGroup,
		Position: canvas.Point{X: frame.X, Y: frame.Y},
		Data: canvas.GroupData{
			Label:    "Group",
			Children: eligible,
			Size:     canvas.Size{Width: frame.Width, Height: frame.Height},
			New:      true,
		},
	}
	out = append([]canvas.Node{group}, out...)
	return out, group, affected, true
}

// ResizeGroup recomputes the group's frame from its current children.
// A missing group, a group with no live children, or a recomputed
// frame within [ResizeEpsilon] of the current one in every dimension
// returns the input slice untouched with changed = false.
func ResizeGroup(nodes []canvas.Node, groupID string) (out []canvas.Node, changed bool) {
	gi := canvas.FindNode(nodes, groupID)
	if gi < 0 {
		return nodes, false
	}
	data, ok := nodes[gi].Data.(canvas.GroupData)
	if !ok {
		return nodes, false
	}

	union, live := memberUnion(nodes, data.Children)
	if !live {
		return nodes, false
	}
	frame := groupFrame(union)

	cur := nodes[gi]
	if math.Abs(frame.X-cur.Position.X) < ResizeEpsilon &&
		math.Abs(frame.Y-cur.Position.Y) < ResizeEpsilon &&
		math.Abs(frame.Width-data.Size.Width) < ResizeEpsilon &&
		math.Abs(frame.Height-data.Size.Height) < ResizeEpsilon {
		return nodes, false
	}

	out = canvas.CloneNodes(nodes)
	out[gi].Position = canvas.Point{X: frame.X, Y: frame.Y}
	data.Size = canvas.Size{Width: frame.Width, Height: frame.Height}
	out[gi].Data = data
	return out, true
}

// JoinGroup adds the node to the group's child list, pulling it out
// of any other group first so membership stays exclusive. Affected
// lists every group whose child list changed. A missing node or
// group, a self-join, or joining a group into a group is a no-op
// (ok = false); joining a group the node already belongs to is valid
// but affects nothing.
func JoinGroup(nodes []canvas.Node, nodeID, groupID string) (out []canvas.Node, affected []string, ok bool) {
	ni := canvas.FindNode(nodes, nodeID)
	gi := canvas.FindNode(nodes, groupID)
	if ni < 0 || gi < 0 || nodeID == groupID {
		return nodes, nil, false
	}
	if nodes[ni].Type == canvas.TypeGroup {
		return nodes, nil, false
	}
	target, isGroup := nodes[gi].Data.(canvas.GroupData)
	if !isGroup {
		return nodes, nil, false
	}

	alreadyMember := slices.Contains(target.Children, nodeID)
	out = canvas.CloneNodes(nodes)
	affected = removeTracked(out, nodeID, groupID)
	if !alreadyMember {
		target = out[gi].Data.(canvas.GroupData)
		target.Children = append(target.Children, nodeID)
		out[gi].Data = target
		affected = append(affected, groupID)
	}
	if len(affected) == 0 {
		return nodes, nil, true
	}
	return out, affected, true
}

// LeaveGroup removes the node from whichever group lists it. Returns
// the owning group's ID, or ok = false when no group claims the node.
func LeaveGroup(nodes []canvas.Node, nodeID string) (out []canvas.Node, groupID string, ok bool) {
	out = canvas.CloneNodes(nodes)
	affected := removeTracked(out, nodeID, "")
	if len(affected) == 0 {
		return nodes, "", false
	}
	return out, affected[0], true
}

// Overlaps reports whether the center of the node's simple box (its
// measured size, or plain defaults when unmeasured - deliberately not
// the full bounding-box algorithm) falls inside the group's
// rectangle. Drag handlers use it to offer join-group affordances.
func Overlaps(node, group canvas.Node) bool {
	if group.Type != canvas.TypeGroup || node.ID == group.ID {
		return false
	}
	nw, nh := simpleSize(node)
	center := canvas.Point{X: node.Position.X + nw/2, Y: node.Position.Y + nh/2}

	gw, gh := simpleSize(group)
	rect := Box{X: group.Position.X, Y: group.Position.Y, Width: gw, Height: gh}
	return rect.Contains(center)
}

func simpleSize(n canvas.Node) (w, h float64) {
	w, h = simpleWidth, simpleHeight
	if m, ok := n.Data.(canvas.Measurable); ok {
		ms := m.Measured()
		if ms.Width > measuredFloor {
			w = ms.Width
		}
		if ms.Height > measuredFloor {
			h = ms.Height
		}
	}
	return w, h
}

// removeFromGroups strips every listed ID from every group's child
// list, in place, returning the IDs of the groups that changed.
func removeFromGroups(nodes []canvas.Node, ids []string) (affected []string) {
	for i := range nodes {
		g, ok := nodes[i].Data.(canvas.GroupData)
		if !ok {
			continue
		}
		kept := slices.DeleteFunc(slices.Clone(g.Children), func(child string) bool {
			return slices.Contains(ids, child)
		})
		if len(kept) != len(g.Children) {
			g.Children = kept
			nodes[i].Data = g
			affected = append(affected, nodes[i].ID)
		}
	}
	return affected
}

// removeTracked strips nodeID from every group except the one named
// by keepID, in place, returning the IDs of the groups that changed.
func removeTracked(nodes []canvas.Node, nodeID, keepID string) (affected []string) {
	for i := range nodes {
		if nodes[i].ID == keepID {
			continue
		}
		g, ok := nodes[i].Data.(canvas.GroupData)
		if !ok {
			continue
		}
		j := slices.Index(g.Children, nodeID)
		if j < 0 {
			continue
		}
		g.Children = slices.Delete(slices.Clone(g.Children), j, j+1)
		nodes[i].Data = g
		affected = append(affected, nodes[i].ID)
	}
	return affected
}
