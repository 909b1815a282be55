package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

func TestMemo_Lookup(t *testing.T) {
	nets := network.NewSet(network.FromTree(phylo.MustBuild(phylo.Inner(phylo.Leaf(0), phylo.Leaf(1))), network.Merged))

	tests := []struct {
		name      string
		h, budget int
		k         int
		wantOK    bool
		wantH     int
	}{
		{"solved within budget", 2, 3, 2, true, 2},
		{"solved, larger budget", 2, 3, 5, true, 2},
		{"solved, smaller budget", 2, 3, 1, true, Infeasible},
		{"infeasible, smaller budget", Infeasible, 3, 2, true, Infeasible},
		{"infeasible, same budget", Infeasible, 3, 3, true, Infeasible},
		{"infeasible, larger budget", Infeasible, 3, 4, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemo(8)
			m.store("k", tt.h, tt.budget, nets)

			h, got, ok := m.lookup("k", tt.k)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantH, h)
			if ok && h < Infeasible {
				assert.Same(t, nets, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestMemo_KeepsWidestInfeasibleBudget(t *testing.T) {
	m := NewMemo(8)
	m.store("k", Infeasible, 4, nil)
	m.store("k", Infeasible, 2, nil)

	_, _, ok := m.lookup("k", 4)
	assert.True(t, ok)
}

func TestMemo_Evicts(t *testing.T) {
	m := NewMemo(2)
	m.store("a", Infeasible, 1, nil)
	m.store("b", Infeasible, 1, nil)
	m.store("c", Infeasible, 1, nil)

	assert.Equal(t, 2, m.Len())
	_, _, ok := m.lookup("a", 1)
	assert.False(t, ok)

	m.Purge()
	assert.Equal(t, 0, m.Len())
}

func TestMemoKey(t *testing.T) {
	a := memoKey("(0,1)", "(0,1)", taxa.Of(0, 1), false)
	assert.Len(t, a, 64)
	assert.Equal(t, a, memoKey("(0,1)", "(0,1)", taxa.Of(1, 0), false))
	assert.NotEqual(t, a, memoKey("(0,1)", "(0,1)", taxa.Of(0), false))
	assert.NotEqual(t, a, memoKey("(0,1)", "(0,1)", taxa.Of(0, 1), true))
}

func TestStats_HitRate(t *testing.T) {
	assert.Zero(t, Stats{}.HitRate())
	assert.InDelta(t, 0.25, Stats{MemoHits: 1, MemoMisses: 3}.HitRate(), 1e-9)
}
