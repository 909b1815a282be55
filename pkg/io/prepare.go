package io

import (
	"slices"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/matzehuels/hybridnet/pkg/errors"
	"github.com/matzehuels/hybridnet/pkg/phylo"
)

// Instance is a pair of trees over a shared id space, ready for the search.
type Instance struct {
	Tree1 *phylo.Tree
	Tree2 *phylo.Tree
	Taxa  *Taxa

	// Dropped lists, in sorted order, the labels that occur in only one of
	// the input trees.
	Dropped []string
}

// Prepare maps two parsed trees onto integer trees over their common leaf
// labels. Leaves must be labeled and labels must be unique within a tree.
// Internal node names and branch lengths are ignored.
func Prepare(g1, g2 *tree.Tree) (*Instance, error) {
	if g1 == nil || g2 == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "both trees are required")
	}
	l1, err := leafLabels(g1)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, err, "first tree")
	}
	l2, err := leafLabels(g2)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNewick, err, "second tree")
	}

	var common, dropped []string
	for l := range l1 {
		if l2[l] {
			common = append(common, l)
		} else {
			dropped = append(dropped, l)
		}
	}
	for l := range l2 {
		if !l1[l] {
			dropped = append(dropped, l)
		}
	}
	if len(common) == 0 {
		return nil, errors.New(errors.ErrCodeDisjointTaxa, "the trees have no leaf label in common")
	}
	slices.Sort(dropped)

	tx := NewTaxa(common)
	t1, err := phylo.Build(shapeOf(g1, tx))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "first tree")
	}
	t2, err := phylo.Build(shapeOf(g2, tx))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "second tree")
	}
	return &Instance{Tree1: t1, Tree2: t2, Taxa: tx, Dropped: dropped}, nil
}

// leafLabels returns the leaf labels of g, rejecting missing, malformed and
// repeated labels.
func leafLabels(g *tree.Tree) (map[string]bool, error) {
	root := g.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidNewick, "empty tree")
	}

	labels := make(map[string]bool)
	var walk func(v, from *tree.Node) error
	walk = func(v, from *tree.Node) error {
		kids := children(v, from)
		if len(kids) == 0 {
			name := v.Name()
			if err := errors.ValidateTaxonLabel(name); err != nil {
				return err
			}
			if labels[name] {
				return errors.New(errors.ErrCodeInvalidNewick, "duplicate leaf label %q", name)
			}
			labels[name] = true
			return nil
		}
		for _, c := range kids {
			if err := walk(c, v); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil); err != nil {
		return nil, err
	}
	return labels, nil
}

// shapeOf returns the shape of g over the ids of tx. Leaves whose label is
// not in tx become empty internal shapes, which phylo.Build drops.
func shapeOf(g *tree.Tree, tx *Taxa) phylo.Shape {
	var walk func(v, from *tree.Node) phylo.Shape
	walk = func(v, from *tree.Node) phylo.Shape {
		kids := children(v, from)
		if len(kids) == 0 {
			if id, ok := tx.ID(v.Name()); ok {
				return phylo.Leaf(id)
			}
			return phylo.Inner()
		}
		s := phylo.Inner()
		for _, c := range kids {
			s.Children = append(s.Children, walk(c, v))
		}
		return s
	}
	return walk(g.Root(), nil)
}
