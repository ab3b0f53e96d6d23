package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes canvas positions in node labels. When false,
	// labels carry only the type-specific summary.
	Detailed bool
}

// ToDOT converts a document to Graphviz DOT format. Grouped nodes are
// wrapped in cluster subgraphs; edges carry source→target port labels.
// The output is deterministic: nodes emit in document z-order,
// connections in collection order.
func ToDOT(doc canvas.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph patchbay {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	grouped := make(map[string]bool)
	for _, g := range doc.Groups() {
		gd, ok := g.Data.(canvas.GroupData)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", g.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", clusterLabel(gd))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=grey;\n")
		for _, child := range gd.Children {
			i := canvas.FindNode(doc.Nodes, child)
			if i < 0 {
				continue
			}
			grouped[child] = true
			writeNode(&buf, "    ", doc.Nodes[i], opts)
		}
		buf.WriteString("  }\n")
	}

	for _, n := range doc.Nodes {
		if n.Type == canvas.TypeGroup || grouped[n.ID] {
			continue
		}
		writeNode(&buf, "  ", n, opts)
	}

	buf.WriteString("\n")
	for _, c := range doc.Connections {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n",
			c.SourceNode, c.TargetNode, c.SourcePort+"→"+c.TargetPort)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n canvas.Node, opts Options) {
	label := nodeLabel(n)
	if opts.Detailed {
		label += fmt.Sprintf("\n(%.0f, %.0f)", n.Position.X, n.Position.Y)
	}
	fmt.Fprintf(buf, "%s%q [label=%q];\n", indent, n.ID, label)
}

func clusterLabel(gd canvas.GroupData) string {
	if gd.Label != "" {
		return gd.Label
	}
	return "group"
}

// nodeLabel builds the type-specific summary shown inside a node box.
func nodeLabel(n canvas.Node) string {
	head := string(n.Type)
	switch d := n.Data.(type) {
	case canvas.BoxData:
		return fmt.Sprintf("%s\n%s × %s × %s", head, trim(d.Width), trim(d.Height), trim(d.Depth))
	case canvas.SphereData:
		return fmt.Sprintf("%s\nr=%s", head, trim(d.Radius))
	case canvas.CylinderData:
		return fmt.Sprintf("%s\nr=%s h=%s", head, trim(d.Radius), trim(d.Height))
	case canvas.TorusData:
		return fmt.Sprintf("%s\nr=%s tube=%s", head, trim(d.Radius), trim(d.Tube))
	case canvas.PlaneData:
		return fmt.Sprintf("%s\n%s × %s", head, trim(d.Width), trim(d.Depth))
	case canvas.VectorData:
		return fmt.Sprintf("%s\n(%s, %s, %s)", head, trim(d.X), trim(d.Y), trim(d.Z))
	case canvas.NumberData:
		return fmt.Sprintf("%s\n%s", head, trim(d.Value))
	case canvas.MathData:
		return fmt.Sprintf("%s\n%s", head, d.Op)
	case canvas.SeriesData:
		return fmt.Sprintf("%s\n%s +%s ×%d", head, trim(d.Start), trim(d.Step), d.Count)
	case canvas.PanelData:
		if d.Text != "" {
			return head + "\n" + firstLine(d.Text)
		}
	case canvas.BackgroundData:
		if d.Color != "" {
			return head + "\n" + d.Color
		}
	}
	return head
}

// trim formats a float without trailing zeros.
func trim(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "…"
	}
	return s
}
