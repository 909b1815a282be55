package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/hybridnet/pkg/network"
)

// Options configures DOT generation.
type Options struct {
	// Label maps taxa to leaf labels. Nil labels leaves by taxon id.
	Label network.LabelFunc

	// Title is drawn above the diagram when not empty.
	Title string

	// Detailed labels internal nodes with their index and hybrid nodes
	// with their extended Newick tag.
	Detailed bool
}

var edgeColors = map[network.Source]string{
	network.Merged: "black",
	network.Tree1:  "royalblue",
	network.Tree2:  "darkorange",
}

// ToDOT converts a network to Graphviz DOT format.
func ToDOT(n *network.Network, opts Options) string {
	label := opts.Label
	if label == nil {
		label = network.IntLabels
	}
	deg := n.InDegrees()
	tags := n.HybridTags()

	var buf bytes.Buffer
	buf.WriteString("digraph N {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.08];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for v := range n.Len() {
		fmt.Fprintf(&buf, "  n%d [%s];\n", v, strings.Join(nodeAttrs(n, v, deg[v], tags[v], label, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for v := range n.Len() {
		for _, e := range n.Children(v) {
			attrs := []string{fmt.Sprintf("color=%s", edgeColors[e.Source])}
			if e.Source != network.Merged {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", v, e.To, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *network.Network, v, indeg int, tag string, label network.LabelFunc, detailed bool) []string {
	switch {
	case len(n.Children(v)) == 0:
		return []string{
			"shape=box", "style=\"rounded,filled\"", "fillcolor=white", "width=0",
			fmt.Sprintf("label=%q", label(n.Taxon(v))),
		}
	case indeg > 1:
		attrs := []string{"shape=diamond", "style=filled", "fillcolor=crimson", "width=0.15", "height=0.15"}
		if detailed {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", tag))
		}
		return attrs
	case detailed:
		return []string{fmt.Sprintf("xlabel=\"%d\"", v)}
	default:
		return []string{"label=\"\""}
	}
}
