package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

var (
	leaf  = phylo.Leaf
	inner = phylo.Inner
	build = phylo.MustBuild
)

func TestSubtrees_Isomorphic(t *testing.T) {
	t1 := build(inner(inner(leaf(0), leaf(1)), inner(leaf(2), leaf(3))))
	t2 := build(inner(inner(leaf(3), leaf(2)), inner(leaf(1), leaf(0))))

	res := Subtrees(t1, t2)
	assert.Equal(t, Isomorphic, res.State)
	assert.Empty(t, res.Pairs)
}

func TestSubtrees_Irreducible(t *testing.T) {
	t1 := build(inner(leaf(0), inner(leaf(1), leaf(2))))
	t2 := build(inner(inner(leaf(0), leaf(1)), leaf(2)))

	res := Subtrees(t1, t2)
	assert.Equal(t, Irreducible, res.State)
	assert.Same(t, t1, res.T1)
	assert.Same(t, t2, res.T2)
}

func TestSubtrees_CollapsesCommonCherry(t *testing.T) {
	// (2,3) hangs off different places in the two trees.
	t1 := build(inner(leaf(0), inner(leaf(1), inner(leaf(2), leaf(3)))))
	t2 := build(inner(inner(leaf(0), inner(leaf(2), leaf(3))), leaf(1)))

	res := Subtrees(t1, t2)
	require.Equal(t, Reduced, res.State)
	require.Len(t, res.Pairs, 1)

	p := res.Pairs[0]
	assert.Equal(t, 2, p.Placeholder)
	assert.Equal(t, "(2,3)", p.Tree1.Canonical())
	assert.Equal(t, p.Tree1.Canonical(), p.Tree2.Canonical())
	assert.Equal(t, "((1,2),0)", res.T1.Canonical())
	assert.Equal(t, "((0,2),1)", res.T2.Canonical())
	assert.Equal(t, []int{2}, res.Placeholders().Slice())

	assert.Equal(t, "(((2,3),1),0)", t1.Canonical(), "inputs must not change")
}

func TestSubtrees_SeveralPairs(t *testing.T) {
	t1 := build(inner(
		inner(inner(leaf(0), leaf(1)), leaf(4)),
		inner(inner(leaf(2), leaf(3)), leaf(5)),
	))
	t2 := build(inner(
		inner(inner(leaf(0), leaf(1)), leaf(5)),
		inner(inner(leaf(2), leaf(3)), leaf(4)),
	))

	res := Subtrees(t1, t2)
	require.Equal(t, Reduced, res.State)
	require.Len(t, res.Pairs, 2)
	assert.Equal(t, 0, res.Pairs[0].Placeholder)
	assert.Equal(t, 2, res.Pairs[1].Placeholder)
	assert.Equal(t, []int{0, 2, 4, 5}, res.T1.Taxa().Slice())
	assert.Equal(t, res.T1.Taxa().Slice(), res.T2.Taxa().Slice())
}

func TestSubtrees_CommonSiblingsInMultifurcation(t *testing.T) {
	// 1 and 2 are siblings in both trees, but neither tree has a node {1,2}.
	t1 := build(inner(inner(leaf(0), leaf(1), leaf(2)), leaf(3)))
	t2 := build(inner(inner(leaf(3), leaf(1), leaf(2)), leaf(0)))

	res := Subtrees(t1, t2)
	require.Equal(t, Reduced, res.State)
	require.Len(t, res.Pairs, 1)

	p := res.Pairs[0]
	assert.Equal(t, 1, p.Placeholder)
	assert.Equal(t, "(1,2)", p.Tree1.Canonical())
	assert.Equal(t, "((0,1),3)", res.T1.Canonical())
	assert.Equal(t, "((1,3),0)", res.T2.Canonical())
}

func TestClusters(t *testing.T) {
	// Both trees share {3,4,5} but resolve it differently.
	t1 := build(inner(
		inner(leaf(0), inner(leaf(1), leaf(2))),
		inner(leaf(3), inner(leaf(4), leaf(5))),
	))
	t2 := build(inner(
		inner(inner(leaf(0), leaf(1)), leaf(2)),
		inner(inner(leaf(3), leaf(4)), leaf(5)),
	))

	split, ok := Clusters(t1, t2)
	require.True(t, ok)
	// {0,1,2} and {3,4,5} are both shared; the smaller in set order wins.
	assert.True(t, split.Cluster.Equal(taxa.Of(0, 1, 2)))
	assert.Equal(t, 0, split.Placeholder)
	assert.Equal(t, "((1,2),0)", split.Bottom1.Canonical())
	assert.Equal(t, "((0,1),2)", split.Bottom2.Canonical())
	assert.Equal(t, []int{0, 3, 4, 5}, split.Top1.Taxa().Slice())
	assert.Equal(t, []int{0, 3, 4, 5}, split.Top2.Taxa().Slice())
}

func TestClusters_PrefersMinimal(t *testing.T) {
	t1 := build(inner(
		inner(leaf(0), inner(leaf(1), inner(leaf(2), leaf(3)))),
		leaf(4),
	))
	t2 := build(inner(
		inner(inner(leaf(0), leaf(1)), inner(leaf(2), leaf(3))),
		leaf(4),
	))

	split, ok := Clusters(t1, t2)
	require.True(t, ok)
	assert.True(t, split.Cluster.Equal(taxa.Of(2, 3)))
}

func TestClusters_None(t *testing.T) {
	t1 := build(inner(leaf(0), inner(leaf(1), leaf(2))))
	t2 := build(inner(inner(leaf(0), leaf(1)), leaf(2)))

	_, ok := Clusters(t1, t2)
	assert.False(t, ok)
}
