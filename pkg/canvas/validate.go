package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingNodeID is returned by [Document.Validate] when a node
	// has an empty ID. All nodes must have non-empty identifiers.
	ErrMissingNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Document.Validate] when two
	// nodes share an ID. Node IDs must be unique per document.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateConnectionID is returned by [Document.Validate] when
	// two connections share an ID.
	ErrDuplicateConnectionID = errors.New("duplicate connection ID")

	// ErrUnknownEndpoint is returned by [Document.Validate] when a
	// connection references a node that does not exist. Dangling
	// connections are pruned by collaborators, not by this package,
	// but they are never valid in a persisted document.
	ErrUnknownEndpoint = errors.New("connection references unknown node")

	// ErrUnknownPort is returned by [Document.Validate] when a
	// connection names a port its endpoint node does not expose.
	ErrUnknownPort = errors.New("connection references unknown port")

	// ErrMissingGroupChild is returned by [Document.Validate] when a
	// group lists a child ID with no matching node.
	ErrMissingGroupChild = errors.New("group references unknown child")

	// ErrNestedGroup is returned by [Document.Validate] when a group
	// lists another group as a child. Groups never nest.
	ErrNestedGroup = errors.New("groups must not contain groups")

	// ErrSharedGroupChild is returned by [Document.Validate] when a
	// node appears in more than one group's child list. Membership is
	// exclusive.
	ErrSharedGroupChild = errors.New("node belongs to more than one group")

	// ErrCycle is returned by [Document.Validate] when the dataflow
	// graph formed by the connections contains a directed cycle.
	// Cycles are detected with depth-first search using white/gray/
	// black coloring.
	ErrCycle = errors.New("document contains a connection cycle")
)

// Validate checks document integrity and returns nil if valid.
// It verifies, in order:
//
//  1. Node IDs are non-empty and unique; connection IDs are unique
//  2. Connections reference existing nodes and ports they expose
//  3. Group children exist, are not groups, and belong to one group
//  4. The dataflow graph is acyclic
//
// The first violation found is returned, wrapped with the offending
// node or connection ID. Validation runs in O(N+C) time.
func (d Document) Validate() error {
	byID := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return ErrMissingNodeID
		}
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		byID[n.ID] = i
	}

	if err := d.validateConnections(byID); err != nil {
		return err
	}
	if err := d.validateGroups(byID); err != nil {
		return err
	}
	return d.detectCycles(byID)
}

func (d Document) validateConnections(byID map[string]int) error {
	seen := make(map[string]bool, len(d.Connections))
	for _, c := range d.Connections {
		if c.ID != "" {
			if seen[c.ID] {
				return fmt.Errorf("connection %s: %w", c.ID, ErrDuplicateConnectionID)
			}
			seen[c.ID] = true
		}

		si, ok := byID[c.SourceNode]
		if !ok {
			return fmt.Errorf("connection %s: source %s: %w", c.ID, c.SourceNode, ErrUnknownEndpoint)
		}
		ti, ok := byID[c.TargetNode]
		if !ok {
			return fmt.Errorf("connection %s: target %s: %w", c.ID, c.TargetNode, ErrUnknownEndpoint)
		}
		if !hasPort(d.Nodes[si].OutPorts(), c.SourcePort) {
			return fmt.Errorf("connection %s: output %s.%s: %w", c.ID, c.SourceNode, c.SourcePort, ErrUnknownPort)
		}
		if !hasPort(d.Nodes[ti].InPorts(), c.TargetPort) {
			return fmt.Errorf("connection %s: input %s.%s: %w", c.ID, c.TargetNode, c.TargetPort, ErrUnknownPort)
		}
	}
	return nil
}

func (d Document) validateGroups(byID map[string]int) error {
	owner := make(map[string]string)
	for _, n := range d.Nodes {
		g, ok := n.Data.(GroupData)
		if !ok {
			continue
		}
		for _, child := range g.Children {
			ci, exists := byID[child]
			if !exists {
				return fmt.Errorf("group %s: child %s: %w", n.ID, child, ErrMissingGroupChild)
			}
			if d.Nodes[ci].Type == TypeGroup {
				return fmt.Errorf("group %s: child %s: %w", n.ID, child, ErrNestedGroup)
			}
			if prev, taken := owner[child]; taken {
				return fmt.Errorf("node %s (groups %s, %s): %w", child, prev, n.ID, ErrSharedGroupChild)
			}
			owner[child] = n.ID
		}
	}
	return nil
}

func (d Document) detectCycles(byID map[string]int) error {
	outgoing := make(map[string][]string, len(d.Nodes))
	for _, c := range d.Connections {
		outgoing[c.SourceNode] = append(outgoing[c.SourceNode], c.TargetNode)
	}

	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.Nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, next := range outgoing[id] {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range byID {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrCycle
			}
		}
	}
	return nil
}

func hasPort(ports []Port, name string) bool {
	for _, p := range ports {
		if p.Name == name {
			return true
		}
	}
	return false
}
