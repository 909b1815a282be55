package network

import (
	"maps"
	"slices"
)

// Set is a set of networks keyed by their canonical string. Isomorphic
// networks collapse into one entry.
type Set struct {
	m map[string]*Network
}

// NewSet returns a set holding the given networks.
func NewSet(nets ...*Network) *Set {
	s := &Set{m: make(map[string]*Network, len(nets))}
	for _, n := range nets {
		s.Add(n)
	}
	return s
}

// Add inserts n and reports whether it was not already present.
func (s *Set) Add(n *Network) bool {
	key := n.Canonical()
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = n
	return true
}

// AddAll inserts every network of other.
func (s *Set) AddAll(other *Set) {
	if other == nil {
		return
	}
	for k, n := range other.m {
		if _, ok := s.m[k]; !ok {
			s.m[k] = n
		}
	}
}

// Has reports whether a network isomorphic to n is in the set.
func (s *Set) Has(n *Network) bool {
	_, ok := s.m[n.Canonical()]
	return ok
}

// Len returns the number of networks.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Keys returns the canonical strings of the networks in sorted order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.m))
}

// Networks returns the networks ordered by canonical string.
func (s *Set) Networks() []*Network {
	keys := s.Keys()
	out := make([]*Network, len(keys))
	for i, k := range keys {
		out[i] = s.m[k]
	}
	return out
}

// Map returns a new set holding f applied to every network.
func (s *Set) Map(f func(*Network) *Network) *Set {
	out := NewSet()
	for _, n := range s.Networks() {
		out.Add(f(n))
	}
	return out
}
