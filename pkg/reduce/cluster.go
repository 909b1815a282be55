package reduce

import (
	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// ClusterSplit is a pair of trees split along a common cluster. Bottom1 and
// Bottom2 are the subtrees spanning the cluster; Top1 and Top2 are the rest of
// the trees with the cluster replaced by a leaf labeled Placeholder.
type ClusterSplit struct {
	Cluster     taxa.Set
	Placeholder int
	Bottom1     *phylo.Tree
	Bottom2     *phylo.Tree
	Top1        *phylo.Tree
	Top2        *phylo.Tree
}

// Clusters looks for a minimal non-trivial cluster shared by t1 and t2: a
// cluster of at least two taxa, smaller than the whole taxon set, that
// contains no smaller shared cluster. Among several candidates the smallest
// one in [taxa.Set.Compare] order is chosen. The inputs are not modified.
func Clusters(t1, t2 *phylo.Tree) (ClusterSplit, bool) {
	all := t1.Taxa()
	cl1, cl2 := t1.Clusters(), t2.Clusters()

	best, v1, found := taxa.Set{}, -1, false
	for v, c := range cl1 {
		if c.Len() < 2 || c.Equal(all) {
			continue
		}
		if found && c.Compare(best) >= 0 {
			continue
		}
		for _, d := range cl2 {
			if d.Equal(c) {
				best, v1, found = c, v, true
				break
			}
		}
	}
	if !found {
		return ClusterSplit{}, false
	}

	v2, _ := t2.NodeWithCluster(best)
	q := best.Min()
	return ClusterSplit{
		Cluster:     best,
		Placeholder: q,
		Bottom1:     t1.Subtree(v1),
		Bottom2:     t2.Subtree(v2),
		Top1:        t1.Contract(v1, q),
		Top2:        t2.Contract(v2, q),
	}, true
}
