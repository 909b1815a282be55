package hybrid

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/hybridnet/pkg/cache"
	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// DefaultMemoSize is the number of subproblems remembered when
// Options.MemoSize is zero.
const DefaultMemoSize = 1 << 16

type entry struct {
	h      int
	budget int
	nets   *network.Set
}

// Memo remembers solved subproblems, keyed by the canonical form of the two
// trees and the candidate set. It evicts least recently used entries once
// full; an evicted subproblem is simply solved again.
//
// A Memo is not safe for concurrent use.
type Memo struct {
	lru *lru.Cache[string, entry]
}

// NewMemo creates a memo holding at most size entries.
func NewMemo(size int) *Memo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Memo{lru: c}
}

// Len returns the number of entries.
func (m *Memo) Len() int { return m.lru.Len() }

// Purge drops all entries.
func (m *Memo) Purge() { m.lru.Purge() }

// lookup returns the answer for budget k if the stored entry decides it.
// An entry with a finite h answers every budget: h itself when h <= k and
// infeasible otherwise. An infeasible entry answers budgets up to the one it
// was computed with.
func (m *Memo) lookup(key string, k int) (int, *network.Set, bool) {
	e, ok := m.lru.Get(key)
	if !ok {
		return 0, nil, false
	}
	switch {
	case e.h < Infeasible && e.h <= k:
		return e.h, e.nets, true
	case e.h < Infeasible:
		return Infeasible, nil, true
	case e.budget >= k:
		return Infeasible, nil, true
	}
	return 0, nil, false
}

func (m *Memo) store(key string, h, k int, nets *network.Set) {
	if h >= Infeasible {
		// Keep the widest budget known to be infeasible.
		if old, ok := m.lru.Peek(key); ok && old.h >= Infeasible && old.budget > k {
			return
		}
		nets = nil
	}
	m.lru.Add(key, entry{h: h, budget: k, nets: nets})
}

func memoKey(c1, c2 string, cand taxa.Set, reduced bool) string {
	flag := "u"
	if reduced {
		flag = "r"
	}
	return cache.Hash([]byte(c1 + "|" + c2 + "|" + cand.String() + "|" + flag))
}
