package network

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// Source tells which input tree an edge belongs to.
type Source uint8

const (
	// Merged edges belong to both input trees.
	Merged Source = iota
	// Tree1 edges belong to the first input tree only.
	Tree1
	// Tree2 edges belong to the second input tree only.
	Tree2
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case Merged:
		return "merged"
	case Tree1:
		return "tree1"
	case Tree2:
		return "tree2"
	default:
		return fmt.Sprintf("Source(%d)", s)
	}
}

// in reports whether an edge tagged s is part of the embedding of tree src.
func (s Source) in(src Source) bool { return s == Merged || s == src }

// Edge is a directed edge to a child node.
type Edge struct {
	To     int
	Source Source
}

type node struct {
	taxon    int
	children []Edge
}

// Network is a rooted phylogenetic network whose edges are tagged with the
// input tree they come from. Nodes live in an arena; a node with more than one
// parent is a reticulation.
//
// Every node has at most one incoming edge per input tree, a Merged edge
// counting for both. Following only the edges of one tree from the root
// therefore yields a tree, the embedding returned by [Network.Displayed].
//
// Networks are values: operations return new networks and never modify their
// arguments, so results held by a [Set] or by a cache can be shared freely.
type Network struct {
	nodes []node
	root  int
}

// FromTree converts a tree into a network with every edge tagged src.
func FromTree(t *phylo.Tree, src Source) *Network {
	n := &Network{nodes: make([]node, t.Len()), root: t.Root()}
	for v := range t.Len() {
		n.nodes[v].taxon = t.Taxon(v)
		for _, c := range t.Children(v) {
			n.nodes[v].children = append(n.nodes[v].children, Edge{To: c, Source: src})
		}
	}
	return n
}

// IsomorphicMerge fuses two isomorphic trees into one network whose edges are
// all Merged. The topology is taken from t1. It panics if the trees are not
// isomorphic.
func IsomorphicMerge(t1, t2 *phylo.Tree) *Network {
	if t1.Canonical() != t2.Canonical() {
		panic(fmt.Sprintf("network: merging non-isomorphic trees %s and %s", t1, t2))
	}
	return FromTree(t1, Merged)
}

// Root returns the index of the root node.
func (n *Network) Root() int { return n.root }

// Len returns the number of nodes.
func (n *Network) Len() int { return len(n.nodes) }

// Taxon returns the taxon of leaf v, or [phylo.NoTaxon] for other nodes.
func (n *Network) Taxon(v int) int { return n.nodes[v].taxon }

// Children returns the outgoing edges of v. The slice must not be modified.
func (n *Network) Children(v int) []Edge { return n.nodes[v].children }

// Taxa returns the set of leaf taxa.
func (n *Network) Taxa() taxa.Set {
	var ids []int
	for _, nd := range n.nodes {
		if len(nd.children) == 0 && nd.taxon != phylo.NoTaxon {
			ids = append(ids, nd.taxon)
		}
	}
	return taxa.Of(ids...)
}

// InDegrees returns the number of incoming edges of every node.
func (n *Network) InDegrees() []int {
	deg := make([]int, len(n.nodes))
	for _, nd := range n.nodes {
		for _, e := range nd.children {
			deg[e.To]++
		}
	}
	return deg
}

// Reticulations returns the number of nodes with more than one parent.
func (n *Network) Reticulations() int { return len(n.Hybrids()) }

// Clone returns an independent copy of n.
func (n *Network) Clone() *Network {
	c := &Network{nodes: make([]node, len(n.nodes)), root: n.root}
	for i, nd := range n.nodes {
		c.nodes[i] = node{taxon: nd.taxon, children: slices.Clone(nd.children)}
	}
	return c
}

// Displayed returns the tree embedded in n by the edges of input tree src.
// Unary nodes of the embedding are suppressed.
func (n *Network) Displayed(src Source) *phylo.Tree {
	var walk func(v int) phylo.Shape
	walk = func(v int) phylo.Shape {
		nd := n.nodes[v]
		if len(nd.children) == 0 {
			return phylo.Leaf(nd.taxon)
		}
		s := phylo.Inner()
		for _, e := range nd.children {
			if e.Source.in(src) {
				s.Children = append(s.Children, walk(e.To))
			}
		}
		return s
	}
	return phylo.MustBuild(walk(n.root))
}

// Canonicals returns the canonical string of the part of n below every node.
// A reticulation is marked with '#' and spelled out under each of its parents;
// edges are prefixed with their source unless Merged.
func (n *Network) Canonicals() []string {
	out := make([]string, len(n.nodes))
	deg := n.InDegrees()
	var walk func(v int) string
	walk = func(v int) string {
		if out[v] != "" {
			return out[v]
		}
		nd := n.nodes[v]
		var s string
		if len(nd.children) == 0 {
			s = strconv.Itoa(nd.taxon)
		} else {
			parts := make([]string, len(nd.children))
			for i, e := range nd.children {
				parts[i] = edgePrefix(e.Source) + walk(e.To)
			}
			slices.Sort(parts)
			s = "(" + strings.Join(parts, ",") + ")"
		}
		if deg[v] > 1 {
			s = "#" + s
		}
		out[v] = s
		return s
	}
	walk(n.root)
	return out
}

func edgePrefix(s Source) string {
	switch s {
	case Tree1:
		return "1:"
	case Tree2:
		return "2:"
	default:
		return ""
	}
}

// Canonical returns a string that is equal for two networks exactly when
// they are isomorphic, edge sources included.
func (n *Network) Canonical() string { return n.Canonicals()[n.root] }

// String implements fmt.Stringer.
func (n *Network) String() string { return n.Canonical() + ";" }

func (n *Network) add(taxon int) int {
	n.nodes = append(n.nodes, node{taxon: taxon})
	return len(n.nodes) - 1
}

func (n *Network) leafOf(taxon int) (int, bool) {
	for v, nd := range n.nodes {
		if len(nd.children) == 0 && nd.taxon == taxon {
			return v, true
		}
	}
	return 0, false
}

// compact drops nodes unreachable from the root and renumbers the rest in
// depth-first discovery order.
func (n *Network) compact() *Network {
	index := make([]int, len(n.nodes))
	for i := range index {
		index[i] = -1
	}
	var order []int
	var visit func(v int)
	visit = func(v int) {
		if index[v] >= 0 {
			return
		}
		index[v] = len(order)
		order = append(order, v)
		for _, e := range n.nodes[v].children {
			visit(e.To)
		}
	}
	visit(n.root)

	out := &Network{nodes: make([]node, len(order)), root: 0}
	for i, v := range order {
		nd := n.nodes[v]
		out.nodes[i].taxon = nd.taxon
		out.nodes[i].children = make([]Edge, len(nd.children))
		for j, e := range nd.children {
			out.nodes[i].children[j] = Edge{To: index[e.To], Source: e.Source}
		}
	}
	return out
}
