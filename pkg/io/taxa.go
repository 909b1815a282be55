package io

import (
	"slices"
	"strconv"
)

// Taxa maps taxon ids to leaf labels. Ids are positions in the sorted label
// list.
type Taxa struct {
	labels []string
	ids    map[string]int
}

// NewTaxa returns the mapping for the given labels. Duplicates are ignored.
func NewTaxa(labels []string) *Taxa {
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	t := &Taxa{labels: sorted, ids: make(map[string]int, len(sorted))}
	for i, l := range sorted {
		t.ids[l] = i
	}
	return t
}

// Len returns the number of taxa.
func (t *Taxa) Len() int { return len(t.labels) }

// Labels returns the labels in id order. The slice must not be modified.
func (t *Taxa) Labels() []string { return t.labels }

// Label returns the label of id, or the id itself for ids without a label.
// Its signature matches network.LabelFunc.
func (t *Taxa) Label(id int) string {
	if id >= 0 && id < len(t.labels) {
		return t.labels[id]
	}
	return strconv.Itoa(id)
}

// ID returns the id of label.
func (t *Taxa) ID(label string) (int, bool) {
	id, ok := t.ids[label]
	return id, ok
}
