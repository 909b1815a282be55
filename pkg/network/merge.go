package network

import (
	"fmt"

	"github.com/matzehuels/hybridnet/pkg/phylo"
)

// Substitute returns a copy of outer in which the leaf labeled placeholder is
// replaced by the whole of inner. Edges that entered the placeholder leaf
// enter the root of inner instead, keeping their sources. It panics if outer
// has no such leaf.
func Substitute(outer *Network, placeholder int, inner *Network) *Network {
	leaf, ok := outer.leafOf(placeholder)
	if !ok {
		panic(fmt.Sprintf("network: placeholder %d not found in %s", placeholder, outer))
	}
	if leaf == outer.root {
		return inner.Clone()
	}

	out := outer.Clone()
	offset := len(out.nodes)
	for _, nd := range inner.nodes {
		kids := make([]Edge, len(nd.children))
		for i, e := range nd.children {
			kids[i] = Edge{To: e.To + offset, Source: e.Source}
		}
		out.nodes = append(out.nodes, node{taxon: nd.taxon, children: kids})
	}
	innerRoot := inner.root + offset
	for v := range out.nodes[:offset] {
		for i, e := range out.nodes[v].children {
			if e.To == leaf {
				out.nodes[v].children[i].To = innerRoot
			}
		}
	}
	return out.compact()
}

// ExpandPlaceholder replaces the placeholder leaf of n by the common subtree
// sub, whose edges are Merged.
func ExpandPlaceholder(n *Network, placeholder int, sub *phylo.Tree) *Network {
	return Substitute(n, placeholder, FromTree(sub, Merged))
}

// CrossProduct substitutes every inner network at the placeholder of every
// outer network and returns the deduplicated result.
func CrossProduct(outer, inner *Set, placeholder int) *Set {
	out := NewSet()
	for _, o := range outer.Networks() {
		for _, in := range inner.Networks() {
			out.Add(Substitute(o, placeholder, in))
		}
	}
	return out
}
