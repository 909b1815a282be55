package network

import (
	"slices"
	"strconv"
	"strings"
)

// LabelFunc maps a taxon to its display label.
type LabelFunc func(taxon int) string

// IntLabels labels taxa by their identifiers.
func IntLabels(taxon int) string { return strconv.Itoa(taxon) }

// ExtendedNewick renders n in extended Newick format. The subtree below a
// reticulation is written once, under its first parent in canonical order,
// and tagged #H1, #H2, ... Other parents refer to it by tag alone.
func (n *Network) ExtendedNewick(label LabelFunc) string {
	if label == nil {
		label = IntLabels
	}
	canon := n.Canonicals()
	deg := n.InDegrees()
	tags := make(map[int]string)
	written := make(map[int]bool)

	var b strings.Builder
	var write func(v int)
	write = func(v int) {
		if deg[v] > 1 {
			if written[v] {
				b.WriteString(tags[v])
				return
			}
			written[v] = true
			tags[v] = "#H" + strconv.Itoa(len(tags)+1)
		}
		nd := n.nodes[v]
		if len(nd.children) > 0 {
			kids := slices.Clone(nd.children)
			slices.SortFunc(kids, func(a, b Edge) int {
				return strings.Compare(canon[a.To], canon[b.To])
			})
			b.WriteByte('(')
			for i, e := range kids {
				if i > 0 {
					b.WriteByte(',')
				}
				write(e.To)
			}
			b.WriteByte(')')
		} else {
			b.WriteString(label(nd.taxon))
		}
		b.WriteString(tags[v])
	}
	write(n.root)
	b.WriteByte(';')
	return b.String()
}

// Hybrids returns the nodes with more than one parent.
func (n *Network) Hybrids() []int {
	var out []int
	for v, d := range n.InDegrees() {
		if d > 1 {
			out = append(out, v)
		}
	}
	return out
}

// HybridTags returns the extended Newick tag of every reticulation, numbered
// in the order [Network.ExtendedNewick] writes them.
func (n *Network) HybridTags() map[int]string {
	canon := n.Canonicals()
	deg := n.InDegrees()
	tags := make(map[int]string)
	seen := make(map[int]bool)
	var walk func(v int)
	walk = func(v int) {
		if seen[v] {
			return
		}
		seen[v] = true
		if deg[v] > 1 {
			tags[v] = "#H" + strconv.Itoa(len(tags)+1)
		}
		kids := slices.Clone(n.nodes[v].children)
		slices.SortFunc(kids, func(a, b Edge) int {
			return strings.Compare(canon[a.To], canon[b.To])
		})
		for _, e := range kids {
			walk(e.To)
		}
	}
	walk(n.root)
	return tags
}
