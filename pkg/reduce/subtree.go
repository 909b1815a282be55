package reduce

import (
	"slices"

	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// State is the outcome of a subtree reduction.
type State int

const (
	// Irreducible means the trees share no pendant subtree worth collapsing.
	Irreducible State = iota
	// Reduced means at least one common pendant subtree was collapsed.
	Reduced
	// Isomorphic means the two trees are identical up to child order.
	Isomorphic
)

func (s State) String() string {
	switch s {
	case Isomorphic:
		return "isomorphic"
	case Reduced:
		return "reduced"
	default:
		return "irreducible"
	}
}

// Pair records one collapsed common subtree. Placeholder is the taxon of the
// leaf that replaced it in both reduced trees; Tree1 and Tree2 are the
// isomorphic subtrees that were cut out.
type Pair struct {
	Placeholder int
	Tree1       *phylo.Tree
	Tree2       *phylo.Tree
}

// SubtreeResult is returned by [Subtrees]. T1 and T2 are the reduced trees
// when State is Reduced and the inputs otherwise.
type SubtreeResult struct {
	State State
	T1    *phylo.Tree
	T2    *phylo.Tree
	Pairs []Pair
}

// Placeholders returns the placeholder taxa of all pairs.
func (r SubtreeResult) Placeholders() taxa.Set {
	ids := make([]int, len(r.Pairs))
	for i, p := range r.Pairs {
		ids[i] = p.Placeholder
	}
	return taxa.Of(ids...)
}

// collapse describes one maximal common pendant set by the clusters of its
// members. A single member is an internal common subtree; several members are
// common siblings that do not make up a common node.
type collapse struct {
	members []taxa.Set
}

func (c collapse) cluster() taxa.Set {
	var out taxa.Set
	for _, m := range c.members {
		out = out.Union(m)
	}
	return out
}

// Subtrees finds every maximal common pendant subtree of t1 and t2 and
// replaces it in both trees by a leaf labeled with its smallest taxon. A set
// of common subtrees that are siblings in both trees is treated as one
// pendant subtree. The inputs are not modified.
func Subtrees(t1, t2 *phylo.Tree) SubtreeResult {
	c1, c2 := t1.Canonicals(), t2.Canonicals()
	if c1[t1.Root()] == c2[t2.Root()] {
		return SubtreeResult{State: Isomorphic, T1: t1, T2: t2}
	}

	in2 := make(map[string]int, len(c2))
	for v, s := range c2 {
		in2[s] = v
	}
	common := func(v int) (int, bool) {
		w, ok := in2[c1[v]]
		return w, ok
	}

	clusters := t1.Clusters()
	var found []collapse
	for v := range t1.Len() {
		if t1.IsLeaf(v) {
			continue
		}
		if _, ok := common(v); ok {
			continue
		}
		// Group the common children of v by the parent of their counterpart.
		groups := make(map[int][]int)
		var parents []int
		for _, ch := range t1.Children(v) {
			w, ok := common(ch)
			if !ok {
				continue
			}
			p := t2.Parent(w)
			if _, seen := groups[p]; !seen {
				parents = append(parents, p)
			}
			groups[p] = append(groups[p], ch)
		}
		for _, p := range parents {
			g := groups[p]
			if len(g) == 1 && t1.IsLeaf(g[0]) {
				continue
			}
			col := collapse{members: make([]taxa.Set, len(g))}
			for i, ch := range g {
				col.members[i] = clusters[ch]
			}
			found = append(found, col)
		}
	}
	if len(found) == 0 {
		return SubtreeResult{State: Irreducible, T1: t1, T2: t2}
	}

	res := SubtreeResult{State: Reduced, T1: t1, T2: t2}
	for _, col := range found {
		q := col.cluster().Min()
		var sub1, sub2 *phylo.Tree
		res.T1, sub1 = apply(res.T1, col, q)
		res.T2, sub2 = apply(res.T2, col, q)
		res.Pairs = append(res.Pairs, Pair{Placeholder: q, Tree1: sub1, Tree2: sub2})
	}
	slices.SortFunc(res.Pairs, func(a, b Pair) int { return a.Placeholder - b.Placeholder })
	return res
}

// apply cuts the members of col out of t, puts a leaf q in their place and
// returns the new tree together with the cut-out part.
func apply(t *phylo.Tree, col collapse, q int) (*phylo.Tree, *phylo.Tree) {
	nodes := make([]int, len(col.members))
	for i, m := range col.members {
		v, ok := t.NodeWithCluster(m)
		if !ok {
			panic("reduce: collapsed cluster " + m.String() + " not found in " + t.String())
		}
		nodes[i] = v
	}
	if len(nodes) == 1 {
		return t.Contract(nodes[0], q), t.Subtree(nodes[0])
	}

	shapes := make([]phylo.Shape, len(nodes))
	for i, v := range nodes {
		shapes[i] = t.Subtree(v).Shape()
	}
	star := phylo.MustBuild(phylo.Inner(shapes...))
	return t.Collapse(t.Parent(nodes[0]), nodes, q), star
}
