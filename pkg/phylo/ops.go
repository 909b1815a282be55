package phylo

import (
	"fmt"
	"slices"

	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// RemoveTaxon returns a copy of t without the leaf labeled taxon. The parent
// of the leaf is suppressed if it is left with a single child, and taxon is
// added to [Tree.Removed] of the result.
func (t *Tree) RemoveTaxon(taxon int) (*Tree, error) {
	v, ok := t.LeafOf(taxon)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTaxon, taxon)
	}
	if t.nodes[v].parent == noParent {
		return nil, fmt.Errorf("%w: %d", ErrLastTaxon, taxon)
	}
	c := t.Clone()
	c.detach(v)
	c.nodes[v].taxon = NoTaxon
	c.removed = c.removed.With(taxon)
	return c.compact(), nil
}

// Subtree returns the subtree rooted at node v as a new tree with an empty
// removed set.
func (t *Tree) Subtree(v int) *Tree {
	out := &Tree{}
	var copyFrom func(u, parent int)
	copyFrom = func(u, parent int) {
		n := t.nodes[u]
		id := out.add(parent, n.taxon)
		for _, c := range n.children {
			copyFrom(c, id)
		}
	}
	copyFrom(v, noParent)
	return out
}

// Contract returns a copy of t in which the subtree rooted at v is replaced
// by a single leaf labeled placeholder.
func (t *Tree) Contract(v, placeholder int) *Tree {
	c := t.Clone()
	c.prune(v)
	c.nodes[v].taxon = placeholder
	return c.compact()
}

// Collapse returns a copy of t in which the given children of node v are
// replaced by a single new leaf labeled placeholder. If no other child of v
// remains, v itself becomes that leaf.
func (t *Tree) Collapse(v int, children []int, placeholder int) *Tree {
	c := t.Clone()
	for _, ch := range children {
		c.prune(ch)
		c.detach(ch)
	}
	c.add(v, placeholder)
	return c.compact()
}

// Refine returns copies of t1 and t2 in which each tree is refined by every
// cluster of the other tree that is compatible with all of its own clusters.
// Both results contain every cluster of their input. For binary trees Refine
// returns isomorphic copies of its inputs.
func Refine(t1, t2 *Tree) (*Tree, *Tree) {
	return refineBy(t1, t2), refineBy(t2, t1)
}

func refineBy(t, other *Tree) *Tree {
	out := t
	alive := t.Taxa()
	for _, c := range other.Clusters() {
		if c.Len() < 2 || c.Equal(alive) {
			continue
		}
		clusters := out.Clusters()
		if containsSet(clusters, c) || !compatibleWithAll(clusters, c) {
			continue
		}
		out = out.insertCluster(clusters, c)
	}
	return out
}

// insertCluster adds a node for cluster c, which must be compatible with all
// clusters of t and absent from t.
func (t *Tree) insertCluster(clusters []taxa.Set, c taxa.Set) *Tree {
	// The lowest node containing c is the one with the smallest cluster.
	lca := t.root
	for v, cl := range clusters {
		if c.SubsetOf(cl) && cl.Len() < clusters[lca].Len() {
			lca = v
		}
	}
	cp := t.Clone()
	var group []int
	for _, ch := range t.nodes[lca].children {
		if clusters[ch].SubsetOf(c) {
			group = append(group, ch)
		}
	}
	for _, ch := range group {
		cp.detach(ch)
	}
	id := cp.add(lca, NoTaxon)
	for _, ch := range group {
		cp.nodes[ch].parent = id
		cp.nodes[id].children = append(cp.nodes[id].children, ch)
	}
	return cp.compact()
}

func containsSet(sets []taxa.Set, c taxa.Set) bool {
	return slices.ContainsFunc(sets, c.Equal)
}

func compatibleWithAll(sets []taxa.Set, c taxa.Set) bool {
	for _, s := range sets {
		if !s.Compatible(c) {
			return false
		}
	}
	return true
}

// detach unlinks v from its parent. The node stays in the arena until the
// next compact.
func (t *Tree) detach(v int) {
	p := t.nodes[v].parent
	if p == noParent {
		return
	}
	t.nodes[p].children = slices.DeleteFunc(t.nodes[p].children, func(c int) bool { return c == v })
	t.nodes[v].parent = noParent
}

// prune turns v into a bare node by cutting off everything below it.
func (t *Tree) prune(v int) {
	for _, c := range t.nodes[v].children {
		t.nodes[c].parent = noParent
	}
	t.nodes[v].children = nil
}
