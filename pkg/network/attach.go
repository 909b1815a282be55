package network

import (
	"fmt"

	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// AttachHybrid returns a copy of n with a reticulation above a new leaf for
// taxon. The reticulation gets one Tree1 parent placed so that the embedding
// of tree 1 regains the cluster a1.Cluster ∪ {taxon}, and one Tree2 parent
// placed the same way for a2.
//
// For a binary attachment the tree edge above the topmost node with the
// attachment cluster is subdivided; when that node is the root a new root is
// created above it. For a multifurcating attachment the reticulation becomes
// an extra child of that node. AttachHybrid panics if an attachment cluster
// is not found in the corresponding embedding.
func AttachHybrid(n *Network, taxon int, a1, a2 phylo.Attachment) *Network {
	out := n.Clone()
	leaf := out.add(taxon)
	h := out.add(phylo.NoTaxon)
	out.nodes[h].children = []Edge{{To: leaf, Source: Merged}}

	out.attach(h, Tree1, a1)
	out.attach(h, Tree2, a2)
	return out.compact()
}

func (n *Network) attach(h int, src Source, a phylo.Attachment) {
	v, ok := n.topmostWithCluster(src, a.Cluster)
	if !ok {
		panic(fmt.Sprintf("network: no %s node with cluster %s in %s", src, a.Cluster, n))
	}
	if a.Multi {
		n.nodes[v].children = append(n.nodes[v].children, Edge{To: h, Source: src})
		return
	}

	if v == n.root {
		r := n.add(phylo.NoTaxon)
		n.nodes[r].children = []Edge{{To: v, Source: Merged}, {To: h, Source: src}}
		n.root = r
		return
	}

	p, i := n.parentIn(src, v)
	tag := n.nodes[p].children[i].Source
	u := n.add(phylo.NoTaxon)
	n.nodes[u].children = []Edge{{To: v, Source: tag}, {To: h, Source: src}}
	n.nodes[p].children[i].To = u
}

// topmostWithCluster searches the embedding of src breadth first for the
// first node whose cluster equals c.
func (n *Network) topmostWithCluster(src Source, c taxa.Set) (int, bool) {
	clusters := n.clustersIn(src)
	queue := []int{n.root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if clusters[v].Equal(c) {
			return v, true
		}
		for _, e := range n.nodes[v].children {
			if e.Source.in(src) {
				queue = append(queue, e.To)
			}
		}
	}
	return 0, false
}

// clustersIn returns the cluster of every node in the embedding of src.
// Nodes outside the embedding get the cluster of their embedded descendants.
func (n *Network) clustersIn(src Source) []taxa.Set {
	out := make([]taxa.Set, len(n.nodes))
	done := make([]bool, len(n.nodes))
	var walk func(v int) taxa.Set
	walk = func(v int) taxa.Set {
		if done[v] {
			return out[v]
		}
		nd := n.nodes[v]
		var c taxa.Set
		if len(nd.children) == 0 && nd.taxon != phylo.NoTaxon {
			c = taxa.Of(nd.taxon)
		}
		for _, e := range nd.children {
			if e.Source.in(src) {
				c = c.Union(walk(e.To))
			}
		}
		out[v], done[v] = c, true
		return c
	}
	for v := range n.nodes {
		walk(v)
	}
	return out
}

// parentIn returns the node and child position of the incoming edge of v in
// the embedding of src.
func (n *Network) parentIn(src Source, v int) (int, int) {
	for p, nd := range n.nodes {
		for i, e := range nd.children {
			if e.To == v && e.Source.in(src) {
				return p, i
			}
		}
	}
	panic(fmt.Sprintf("network: node %d has no %s parent", v, src))
}
