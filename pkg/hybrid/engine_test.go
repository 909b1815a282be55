package hybrid

import (
	"context"
	stderrors "errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hybridnet/pkg/errors"
	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

var (
	leaf  = phylo.Leaf
	inner = phylo.Inner
	build = phylo.MustBuild
)

// A=0, B=1, C=2, D=3, E=4, F=5.
const (
	A = iota
	B
	C
	D
	E
	F
)

func compute(t *testing.T, t1, t2 *phylo.Tree, opts Options) *Result {
	t.Helper()
	res, err := New(opts).Compute(context.Background(), t1, t2)
	require.NoError(t, err)
	return res
}

func TestCompute_OneHybridization(t *testing.T) {
	t1 := build(inner(leaf(A), inner(leaf(B), leaf(C))))
	t2 := build(inner(inner(leaf(A), leaf(B)), leaf(C)))

	res := compute(t, t1, t2, Options{})
	assert.Equal(t, 1, res.HybridizationNumber)
	// Any of the three taxa can be the reticulation.
	assert.Len(t, res.Networks, 3)
	assertSound(t, res, t1, t2)
}

func TestCompute_IdenticalTrees(t *testing.T) {
	t1 := build(inner(inner(leaf(A), leaf(B)), inner(leaf(C), leaf(D))))
	t2 := build(inner(inner(leaf(D), leaf(C)), inner(leaf(B), leaf(A))))

	res := compute(t, t1, t2, Options{})
	assert.Equal(t, 0, res.HybridizationNumber)
	require.Len(t, res.Networks, 1)
	assert.Equal(t, t1.Canonical(), res.Networks[0].Canonical())
	assert.Equal(t, 0, res.Networks[0].Reticulations())
}

func TestCompute_ClusterAdditivity(t *testing.T) {
	// Both trees contain {D,E,F}; they disagree inside it and outside it.
	t1 := build(inner(
		inner(leaf(A), inner(leaf(B), leaf(C))),
		inner(leaf(D), inner(leaf(E), leaf(F))),
	))
	t2 := build(inner(
		inner(inner(leaf(A), leaf(B)), leaf(C)),
		inner(inner(leaf(D), leaf(E)), leaf(F)),
	))

	inside := compute(t, build(inner(leaf(D), inner(leaf(E), leaf(F)))),
		build(inner(inner(leaf(D), leaf(E)), leaf(F))), Options{})
	outside := compute(t, build(inner(inner(leaf(A), inner(leaf(B), leaf(C))), leaf(D))),
		build(inner(inner(inner(leaf(A), leaf(B)), leaf(C)), leaf(D))), Options{})

	res := compute(t, t1, t2, Options{})
	assert.Equal(t, inside.HybridizationNumber+outside.HybridizationNumber, res.HybridizationNumber)
	assert.Equal(t, 2, res.HybridizationNumber)
	assert.Len(t, res.Networks, len(inside.Networks)*len(outside.Networks))
	assert.Positive(t, res.Stats.ClusterReductions)
	assertSound(t, res, t1, t2)
}

func TestCompute_SubtreeReduction(t *testing.T) {
	// The cherry (D,E) moves between the trees as a whole.
	t1 := build(inner(leaf(A), inner(leaf(B), inner(leaf(C), inner(leaf(D), leaf(E))))))
	t2 := build(inner(inner(leaf(A), inner(leaf(D), leaf(E))), inner(leaf(B), leaf(C))))

	res := compute(t, t1, t2, Options{})
	assert.Equal(t, bruteForce(t1, t2), res.HybridizationNumber)
	assert.Positive(t, res.Stats.SubtreeReductions)
	assertSound(t, res, t1, t2)
}

func TestCompute_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		n := 4 + i%4
		t1 := randomBinary(rng, n)
		t2 := randomBinary(rng, n)

		want := bruteForce(t1, t2)
		res := compute(t, t1, t2, Options{})
		require.Equal(t, want, res.HybridizationNumber, "trees %s and %s", t1, t2)
		assertSound(t, res, t1, t2)
	}
}

func TestCompute_Multifurcating(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 25; i++ {
		n := 5 + i%3
		t1 := randomMultifurcating(rng, n)
		t2 := randomMultifurcating(rng, n)

		res := compute(t, t1, t2, Options{})
		assertSound(t, res, t1, t2)
	}
}

func TestCompute_MultifurcatingMatchesResolutions(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	checked := 0
	for i := 0; i < 30; i++ {
		t1 := randomMultifurcating(rng, 5)
		t2 := randomMultifurcating(rng, 5)
		rs1, rs2 := resolutions(t1.Shape()), resolutions(t2.Shape())
		if len(rs1)*len(rs2) > 2000 {
			continue
		}

		want := Infeasible
		for _, s1 := range rs1 {
			for _, s2 := range rs2 {
				want = min(want, bruteForce(build(s1), build(s2)))
			}
		}
		res := compute(t, t1, t2, Options{})
		require.Equal(t, want, res.HybridizationNumber, "trees %s and %s", t1, t2)
		checked++
	}
	assert.Positive(t, checked)
}

func TestCompute_ExplicitBudget(t *testing.T) {
	t1 := build(inner(
		inner(leaf(A), inner(leaf(B), leaf(C))),
		inner(leaf(D), inner(leaf(E), leaf(F))),
	))
	t2 := build(inner(
		inner(inner(leaf(A), leaf(B)), leaf(C)),
		inner(inner(leaf(D), leaf(E)), leaf(F)),
	))

	res := compute(t, t1, t2, Options{Budget: 4})
	assert.Equal(t, 2, res.HybridizationNumber)
	assert.Equal(t, 1, res.Stats.Iterations)

	_, err := New(Options{Budget: 1}).Compute(context.Background(), t1, t2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBudgetExceeded))
	var be *errors.BudgetExceededError
	require.True(t, stderrors.As(err, &be))
	assert.Equal(t, 1, be.Budget)
}

func TestCompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t1 := build(inner(leaf(A), inner(leaf(B), leaf(C))))
	t2 := build(inner(inner(leaf(A), leaf(B)), leaf(C)))
	_, err := New(Options{}).Compute(ctx, t1, t2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.IsInput(err))
}

// cancelOnBranch cancels the search at its first branching step.
type cancelOnBranch struct {
	observability.NoopSearchHooks
	cancel   context.CancelFunc
	branches int
}

func (h *cancelOnBranch) OnBranch(context.Context, int, int) {
	h.branches++
	h.cancel()
}

func TestCompute_CancelledWhileBranching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hooks := &cancelOnBranch{cancel: cancel}

	t1 := build(inner(leaf(A), inner(leaf(B), leaf(C))))
	t2 := build(inner(inner(leaf(A), leaf(B)), leaf(C)))
	var (
		res *Result
		err error
	)
	require.NotPanics(t, func() {
		res, err = New(Options{Hooks: hooks}).Compute(ctx, t1, t2)
	})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, errors.ErrCodeCancelled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "budget 1")
	assert.Equal(t, 1, hooks.branches)
}

func TestCompute_DifferentTaxa(t *testing.T) {
	t1 := build(inner(leaf(A), leaf(B)))
	t2 := build(inner(leaf(A), leaf(C)))

	_, err := New(Options{}).Compute(context.Background(), t1, t2)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = New(Options{}).Compute(context.Background(), t1, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestCompute_RestrictedCandidates(t *testing.T) {
	t1 := build(inner(leaf(A), inner(leaf(B), leaf(C))))
	t2 := build(inner(inner(leaf(A), leaf(B)), leaf(C)))

	res := compute(t, t1, t2, Options{Candidates: taxa.Of(B)})
	assert.Equal(t, 1, res.HybridizationNumber)
	require.Len(t, res.Networks, 1)
	hyb := res.Networks[0].Hybrids()
	require.Len(t, hyb, 1)
}

func TestCompute_RestrictedCandidatesSkipCollapsedSubtrees(t *testing.T) {
	// The cherry (D,E) is common to both trees and holds no candidate, so no
	// reticulation may sit above it.
	t1 := build(inner(leaf(A), inner(leaf(B), inner(leaf(C), inner(leaf(D), leaf(E))))))
	t2 := build(inner(inner(leaf(A), inner(leaf(D), leaf(E))), inner(leaf(B), leaf(C))))

	free := compute(t, t1, t2, Options{})
	assert.Equal(t, 1, free.HybridizationNumber)

	cand := taxa.Of(A, B, C)
	res := compute(t, t1, t2, Options{Candidates: cand})
	assert.Equal(t, 2, res.HybridizationNumber)
	assert.Positive(t, res.Stats.SubtreeReductions)
	assertSound(t, res, t1, t2)
	for _, n := range res.Networks {
		for _, v := range n.Hybrids() {
			below := taxaBelow(n, v)
			assert.True(t, below.Intersects(cand), "reticulation above %s in %s", below, n)
		}
	}
}

func TestCompute_ReusesMemoAcrossCalls(t *testing.T) {
	t1 := build(inner(
		inner(leaf(A), inner(leaf(B), leaf(C))),
		inner(leaf(D), inner(leaf(E), leaf(F))),
	))
	t2 := build(inner(
		inner(inner(leaf(A), leaf(B)), leaf(C)),
		inner(inner(leaf(D), leaf(E)), leaf(F)),
	))

	eng := New(Options{})
	first, err := eng.Compute(context.Background(), t1, t2)
	require.NoError(t, err)
	second, err := eng.Compute(context.Background(), t1, t2)
	require.NoError(t, err)

	assert.Equal(t, first.HybridizationNumber, second.HybridizationNumber)
	assert.Equal(t, keys(first.Networks), keys(second.Networks))
	assert.Less(t, second.Stats.Calls, first.Stats.Calls)
	assert.Positive(t, second.Stats.MemoHits)
}

func TestCompute_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	t1, t2 := randomBinary(rng, 7), randomBinary(rng, 7)

	a := compute(t, t1, t2, Options{})
	b := compute(t, t1, t2, Options{MemoSize: 4})
	assert.Equal(t, a.HybridizationNumber, b.HybridizationNumber)
	assert.Equal(t, keys(a.Networks), keys(b.Networks), "eviction must not change results")
}

func keys(nets []*network.Network) []string {
	out := make([]string, len(nets))
	for i, n := range nets {
		out[i] = n.Canonical()
	}
	return out
}

// taxaBelow returns the taxa reachable from v.
func taxaBelow(n *network.Network, v int) taxa.Set {
	var ids []int
	var walk func(v int)
	walk = func(v int) {
		if len(n.Children(v)) == 0 && n.Taxon(v) != phylo.NoTaxon {
			ids = append(ids, n.Taxon(v))
		}
		for _, e := range n.Children(v) {
			walk(e.To)
		}
	}
	walk(v)
	return taxa.Of(ids...)
}

// assertSound checks that every network has the reported number of
// reticulations, that networks are distinct and that each input tree is
// displayed up to refinement.
func assertSound(t *testing.T, res *Result, t1, t2 *phylo.Tree) {
	t.Helper()
	require.NotEmpty(t, res.Networks)
	seen := make(map[string]bool)
	for _, n := range res.Networks {
		key := n.Canonical()
		assert.False(t, seen[key], "duplicate network %s", key)
		seen[key] = true

		assert.Equal(t, res.HybridizationNumber, n.Reticulations(), "network %s", n)
		assert.True(t, n.Taxa().Equal(t1.Taxa()))
		for src, in := range map[network.Source]*phylo.Tree{network.Tree1: t1, network.Tree2: t2} {
			shown := n.Displayed(src)
			for _, c := range in.Clusters() {
				_, ok := shown.NodeWithCluster(c)
				assert.True(t, ok, "%s of %s misses cluster %s of %s", src, n, c, in)
			}
		}
	}
}

// bruteForce computes the hybridization number of two binary trees from its
// definition: zero for isomorphic trees, otherwise one more than the best
// result after cutting off any common pendant subtree.
func bruteForce(t1, t2 *phylo.Tree) int {
	memo := make(map[string]int)
	var h func(t1, t2 *phylo.Tree) int
	h = func(t1, t2 *phylo.Tree) int {
		c1, c2 := t1.Canonicals(), t2.Canonicals()
		if c1[t1.Root()] == c2[t2.Root()] {
			return 0
		}
		key := c1[t1.Root()] + "|" + c2[t2.Root()]
		if v, ok := memo[key]; ok {
			return v
		}
		in2 := make(map[string]bool, len(c2))
		for _, s := range c2 {
			in2[s] = true
		}
		clusters := t1.Clusters()
		best := Infeasible
		for v := range t1.Len() {
			if v == t1.Root() || !in2[c1[v]] {
				continue
			}
			r1, r2 := t1, t2
			for _, x := range clusters[v].Slice() {
				r1, _ = r1.RemoveTaxon(x)
				r2, _ = r2.RemoveTaxon(x)
			}
			best = min(best, 1+h(r1, r2))
		}
		memo[key] = best
		return best
	}
	return h(t1, t2)
}

func randomBinary(rng *rand.Rand, n int) *phylo.Tree {
	parts := make([]phylo.Shape, n)
	for i := range parts {
		parts[i] = leaf(i)
	}
	for len(parts) > 1 {
		i := rng.Intn(len(parts))
		a := parts[i]
		parts = append(parts[:i], parts[i+1:]...)
		j := rng.Intn(len(parts))
		parts[j] = inner(a, parts[j])
	}
	return build(parts[0])
}

// randomMultifurcating contracts random internal edges of a random binary
// tree.
func randomMultifurcating(rng *rand.Rand, n int) *phylo.Tree {
	var flatten func(s phylo.Shape) phylo.Shape
	flatten = func(s phylo.Shape) phylo.Shape {
		if len(s.Children) == 0 {
			return s
		}
		out := inner()
		for _, c := range s.Children {
			c = flatten(c)
			if len(c.Children) > 0 && rng.Intn(3) == 0 {
				out.Children = append(out.Children, c.Children...)
			} else {
				out.Children = append(out.Children, c)
			}
		}
		return out
	}
	return build(flatten(randomBinary(rng, n).Shape()))
}

// resolutions returns every binary resolution of a shape.
func resolutions(s phylo.Shape) []phylo.Shape {
	if len(s.Children) == 0 {
		return []phylo.Shape{s}
	}
	combos := [][]phylo.Shape{nil}
	for _, c := range s.Children {
		var next [][]phylo.Shape
		for _, prefix := range combos {
			for _, r := range resolutions(c) {
				next = append(next, append(slices.Clone(prefix), r))
			}
		}
		combos = next
	}

	// Binary trees over child positions, built by grafting one position at a
	// time onto every edge.
	skeletons := []phylo.Shape{leaf(0)}
	for i := 1; i < len(s.Children); i++ {
		var next []phylo.Shape
		for _, sk := range skeletons {
			next = append(next, graft(sk, leaf(i))...)
		}
		skeletons = next
	}

	var out []phylo.Shape
	for _, parts := range combos {
		for _, sk := range skeletons {
			out = append(out, substitute(sk, parts))
		}
	}
	return out
}

func graft(s, p phylo.Shape) []phylo.Shape {
	out := []phylo.Shape{inner(s, p)}
	for i, c := range s.Children {
		for _, g := range graft(c, p) {
			kids := slices.Clone(s.Children)
			kids[i] = g
			out = append(out, inner(kids...))
		}
	}
	return out
}

func substitute(s phylo.Shape, parts []phylo.Shape) phylo.Shape {
	if len(s.Children) == 0 {
		return parts[s.Taxon]
	}
	kids := make([]phylo.Shape, len(s.Children))
	for i, c := range s.Children {
		kids[i] = substitute(c, parts)
	}
	return inner(kids...)
}
