package phylo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// NoTaxon marks an internal node.
const NoTaxon = -1

const noParent = -1

var (
	// ErrEmptyTree is returned by [Build] for a shape without any leaf.
	ErrEmptyTree = errors.New("tree has no leaves")

	// ErrDuplicateTaxon is returned by [Build] when two leaves carry the same taxon.
	ErrDuplicateTaxon = errors.New("duplicate taxon")

	// ErrInvalidTaxon is returned by [Build] for a leaf with a negative taxon.
	ErrInvalidTaxon = errors.New("leaf taxon must be non-negative")

	// ErrUnknownTaxon is returned when an operation names a taxon that is not
	// a leaf of the tree.
	ErrUnknownTaxon = errors.New("taxon is not a leaf of the tree")

	// ErrLastTaxon is returned by [Tree.RemoveTaxon] when removing the leaf
	// would leave an empty tree.
	ErrLastTaxon = errors.New("cannot remove the last taxon")
)

type node struct {
	taxon    int
	parent   int
	children []int
}

// Tree is a rooted tree over taxon identifiers. See the package documentation
// for the normal form every Tree satisfies.
//
// The zero value is not usable; trees come from [Build] or from operations on
// existing trees.
type Tree struct {
	nodes   []node
	root    int
	removed taxa.Set
}

// Shape is a nested description of a tree, used to build trees and to hand
// them across package boundaries. A Shape with children is internal and its
// Taxon is ignored.
type Shape struct {
	Taxon    int
	Children []Shape
}

// Leaf returns the shape of a single leaf.
func Leaf(taxon int) Shape { return Shape{Taxon: taxon} }

// Inner returns the shape of an internal node over the given children.
func Inner(children ...Shape) Shape { return Shape{Taxon: NoTaxon, Children: children} }

// Build creates a tree from a shape. Unary internal nodes are suppressed and
// internal shapes without leaves below them are dropped.
// Build returns [ErrEmptyTree], [ErrDuplicateTaxon] or [ErrInvalidTaxon] for
// malformed shapes.
func Build(s Shape) (*Tree, error) {
	seen := taxa.Set{}
	var check func(s Shape) (bool, error)
	check = func(s Shape) (bool, error) {
		if len(s.Children) == 0 {
			if s.Taxon == NoTaxon {
				return false, nil
			}
			if s.Taxon < 0 {
				return false, fmt.Errorf("%w: %d", ErrInvalidTaxon, s.Taxon)
			}
			if seen.Has(s.Taxon) {
				return false, fmt.Errorf("%w: %d", ErrDuplicateTaxon, s.Taxon)
			}
			seen = seen.With(s.Taxon)
			return true, nil
		}
		found := false
		for _, c := range s.Children {
			ok, err := check(c)
			if err != nil {
				return false, err
			}
			found = found || ok
		}
		return found, nil
	}
	ok, err := check(s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyTree
	}

	raw := &Tree{root: 0}
	var add func(s Shape, parent int)
	add = func(s Shape, parent int) {
		if len(s.Children) == 0 {
			raw.add(parent, s.Taxon)
			return
		}
		id := raw.add(parent, NoTaxon)
		for _, c := range s.Children {
			add(c, id)
		}
	}
	add(s, noParent)
	return raw.compact(), nil
}

// MustBuild is like [Build] but panics on error. It is intended for tests
// and fixed fixtures.
func MustBuild(s Shape) *Tree {
	t, err := Build(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the nested description of t, children in arena order.
func (t *Tree) Shape() Shape {
	var walk func(v int) Shape
	walk = func(v int) Shape {
		n := t.nodes[v]
		if len(n.children) == 0 {
			return Leaf(n.taxon)
		}
		s := Shape{Taxon: NoTaxon, Children: make([]Shape, len(n.children))}
		for i, c := range n.children {
			s.Children[i] = walk(c)
		}
		return s
	}
	return walk(t.root)
}

// Root returns the index of the root node.
func (t *Tree) Root() int { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// IsLeaf reports whether v has no children.
func (t *Tree) IsLeaf(v int) bool { return len(t.nodes[v].children) == 0 }

// Taxon returns the taxon of leaf v, or [NoTaxon] for internal nodes.
func (t *Tree) Taxon(v int) int { return t.nodes[v].taxon }

// Parent returns the parent of v, or -1 for the root.
func (t *Tree) Parent(v int) int { return t.nodes[v].parent }

// Children returns the children of v. The slice must not be modified.
func (t *Tree) Children(v int) []int { return t.nodes[v].children }

// Removed returns the taxa excised from this tree by [Tree.RemoveTaxon].
func (t *Tree) Removed() taxa.Set { return t.removed }

// Taxa returns the set of alive taxa, the taxa labeling the leaves.
func (t *Tree) Taxa() taxa.Set {
	ids := make([]int, 0, len(t.nodes))
	for _, n := range t.nodes {
		if len(n.children) == 0 {
			ids = append(ids, n.taxon)
		}
	}
	return taxa.Of(ids...)
}

// Universe returns Taxa() ∪ Removed().
func (t *Tree) Universe() taxa.Set { return t.Taxa().Union(t.removed) }

// LeafOf returns the index of the leaf labeled taxon.
func (t *Tree) LeafOf(taxon int) (int, bool) {
	for v, n := range t.nodes {
		if len(n.children) == 0 && n.taxon == taxon {
			return v, true
		}
	}
	return 0, false
}

// Clusters returns the cluster (set of taxa below) of every node, indexed by
// node.
func (t *Tree) Clusters() []taxa.Set {
	out := make([]taxa.Set, len(t.nodes))
	for v := len(t.nodes) - 1; v >= 0; v-- {
		n := t.nodes[v]
		if len(n.children) == 0 {
			out[v] = taxa.Of(n.taxon)
			continue
		}
		for _, c := range n.children {
			out[v] = out[v].Union(out[c])
		}
	}
	return out
}

// NodeWithCluster returns the node whose cluster equals c.
func (t *Tree) NodeWithCluster(c taxa.Set) (int, bool) {
	for v, cl := range t.Clusters() {
		if cl.Equal(c) {
			return v, true
		}
	}
	return 0, false
}

// Canonicals returns the canonical string of the subtree at every node,
// indexed by node. See [Tree.Canonical].
func (t *Tree) Canonicals() []string {
	out := make([]string, len(t.nodes))
	for v := len(t.nodes) - 1; v >= 0; v-- {
		n := t.nodes[v]
		if len(n.children) == 0 {
			out[v] = strconv.Itoa(n.taxon)
			continue
		}
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			parts[i] = out[c]
		}
		slices.Sort(parts)
		out[v] = "(" + strings.Join(parts, ",") + ")"
	}
	return out
}

// Canonical returns a Newick-like string with sorted children. Two trees have
// the same canonical string exactly when they are isomorphic.
func (t *Tree) Canonical() string { return t.Canonicals()[t.root] }

// String implements fmt.Stringer.
func (t *Tree) String() string { return t.Canonical() + ";" }

// Clone returns an independent copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:   make([]node, len(t.nodes)),
		root:    t.root,
		removed: t.removed,
	}
	for i, n := range t.nodes {
		c.nodes[i] = node{taxon: n.taxon, parent: n.parent, children: slices.Clone(n.children)}
	}
	return c
}

// Attachment describes where a leaf hangs in a tree: the cluster of its
// parent without the leaf itself, and whether the parent has more than two
// children. It is what a network needs to reinsert the leaf after it was
// removed.
type Attachment struct {
	Cluster taxa.Set
	Multi   bool
}

// AttachmentOf returns the attachment of the leaf labeled taxon.
func (t *Tree) AttachmentOf(taxon int) (Attachment, error) {
	v, ok := t.LeafOf(taxon)
	if !ok {
		return Attachment{}, fmt.Errorf("%w: %d", ErrUnknownTaxon, taxon)
	}
	p := t.nodes[v].parent
	if p == noParent {
		return Attachment{}, fmt.Errorf("%w: %d", ErrLastTaxon, taxon)
	}
	return Attachment{
		Cluster: t.Clusters()[p].Without(taxon),
		Multi:   len(t.nodes[p].children) > 2,
	}, nil
}

func (t *Tree) add(parent, taxon int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{taxon: taxon, parent: parent})
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

// compact rebuilds the tree in preorder, dropping childless internal nodes
// and suppressing unary ones.
func (t *Tree) compact() *Tree {
	live := make([]bool, len(t.nodes))
	var mark func(v int) bool
	mark = func(v int) bool {
		n := t.nodes[v]
		if len(n.children) == 0 {
			live[v] = n.taxon != NoTaxon
			return live[v]
		}
		for _, c := range n.children {
			if mark(c) {
				live[v] = true
			}
		}
		return live[v]
	}
	mark(t.root)

	out := &Tree{removed: t.removed}
	var emit func(v, parent int)
	emit = func(v, parent int) {
		n := t.nodes[v]
		if len(n.children) == 0 {
			out.add(parent, n.taxon)
			return
		}
		var kids []int
		for _, c := range n.children {
			if live[c] {
				kids = append(kids, c)
			}
		}
		if len(kids) == 1 {
			emit(kids[0], parent)
			return
		}
		id := out.add(parent, NoTaxon)
		for _, c := range kids {
			emit(c, id)
		}
	}
	emit(t.root, noParent)
	out.root = 0
	return out
}
