// Package taxa provides immutable sets of taxon identifiers.
//
// A taxon identifier is a small non-negative integer assigned by the input
// adapter (see package io). Both input trees of a hybridization problem are
// normalized onto one identifier space before the search runs, so sets from
// either tree can be compared directly.
//
// [Set] is a value type: every operation returns a new set and never modifies
// its receiver or arguments. The zero value is the empty set and is ready to use.
package taxa

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Set is an immutable set of taxon identifiers backed by a bitset.
type Set struct {
	b *bitset.BitSet
}

// Of returns the set containing the given identifiers.
// Negative identifiers are ignored.
func Of(ids ...int) Set {
	if len(ids) == 0 {
		return Set{}
	}
	b := bitset.New(0)
	for _, id := range ids {
		if id >= 0 {
			b.Set(uint(id))
		}
	}
	return Set{b: b}
}

// Range returns the set {0, 1, ..., n-1}.
func Range(n int) Set {
	if n <= 0 {
		return Set{}
	}
	b := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		b.Set(uint(i))
	}
	return Set{b: b}
}

// Has reports whether id is a member of s.
func (s Set) Has(id int) bool {
	return id >= 0 && s.b != nil && s.b.Test(uint(id))
}

// Len returns the number of members.
func (s Set) Len() int {
	if s.b == nil {
		return 0
	}
	return int(s.b.Count())
}

// Empty reports whether s has no members.
func (s Set) Empty() bool { return s.b == nil || s.b.None() }

// With returns s ∪ {id}.
func (s Set) With(id int) Set {
	if id < 0 || s.Has(id) {
		return s
	}
	b := s.clone()
	b.Set(uint(id))
	return Set{b: b}
}

// Without returns s \ {id}.
func (s Set) Without(id int) Set {
	if !s.Has(id) {
		return s
	}
	b := s.clone()
	b.Clear(uint(id))
	return Set{b: b}
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	switch {
	case s.b == nil:
		return o
	case o.b == nil:
		return s
	}
	return Set{b: s.b.Union(o.b)}
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	if s.b == nil || o.b == nil {
		return Set{}
	}
	return Set{b: s.b.Intersection(o.b)}
}

// Minus returns s \ o.
func (s Set) Minus(o Set) Set {
	if s.b == nil || o.b == nil {
		return s
	}
	return Set{b: s.b.Difference(o.b)}
}

// Equal reports whether s and o have the same members.
// Unlike [bitset.BitSet.Equal], the capacity of the backing bitsets is ignored.
func (s Set) Equal(o Set) bool {
	switch {
	case s.Empty():
		return o.Empty()
	case o.Empty():
		return false
	}
	return s.b.SymmetricDifferenceCardinality(o.b) == 0
}

// SubsetOf reports whether every member of s is a member of o.
func (s Set) SubsetOf(o Set) bool {
	if s.Empty() {
		return true
	}
	if o.b == nil {
		return false
	}
	return o.b.IsSuperSet(s.b)
}

// Intersects reports whether s and o share at least one member.
func (s Set) Intersects(o Set) bool {
	if s.b == nil || o.b == nil {
		return false
	}
	return s.b.IntersectionCardinality(o.b) > 0
}

// Compatible reports whether s and o are nested or disjoint, the condition
// under which two clusters can coexist in one rooted tree.
func (s Set) Compatible(o Set) bool {
	return !s.Intersects(o) || s.SubsetOf(o) || o.SubsetOf(s)
}

// Min returns the smallest member, or -1 for the empty set.
func (s Set) Min() int {
	if s.b == nil {
		return -1
	}
	if i, ok := s.b.NextSet(0); ok {
		return int(i)
	}
	return -1
}

// Slice returns the members in ascending order.
func (s Set) Slice() []int {
	out := make([]int, 0, s.Len())
	s.Each(func(id int) { out = append(out, id) })
	return out
}

// Each calls fn for every member in ascending order.
func (s Set) Each(fn func(id int)) {
	if s.b == nil {
		return
	}
	for i, ok := s.b.NextSet(0); ok; i, ok = s.b.NextSet(i + 1) {
		fn(int(i))
	}
}

// Compare orders sets by size, then lexicographically by members.
// It returns -1, 0 or +1.
func (s Set) Compare(o Set) int {
	if a, b := s.Len(), o.Len(); a != b {
		if a < b {
			return -1
		}
		return 1
	}
	as, bs := s.Slice(), o.Slice()
	for i := range as {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String renders the set as "{0,3,7}". The format is stable and is used
// inside canonical cache keys.
func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	s.Each(func(id int) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Itoa(id))
	})
	sb.WriteByte('}')
	return sb.String()
}

func (s Set) clone() *bitset.BitSet {
	if s.b == nil {
		return bitset.New(0)
	}
	return s.b.Clone()
}
