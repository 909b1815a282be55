// Package phylo provides the working rooted tree used by the hybridization
// search.
//
// # Overview
//
// A [Tree] is a rooted, possibly multifurcating tree whose leaves carry taxon
// identifiers (see package taxa). Nodes live in an arena and are addressed by
// index; children are stored as index lists. There are no pointers between
// nodes, so cloning a tree is a slice copy and two trees never alias each other.
//
// Trees are values. Every operation that changes shape ([Tree.RemoveTaxon],
// [Tree.Subtree], [Tree.Contract], [Tree.Collapse], [Refine]) returns a new
// tree and leaves its receiver untouched. The search engine relies on this:
// sibling branches of the search hold their own trees and cannot observe each
// other's edits.
//
// # Normal Form
//
// Every tree returned by this package is compact:
//
//   - no internal node has exactly one child (unary nodes are suppressed)
//   - no internal node is childless
//   - node indices are in preorder, so a parent's index is smaller than its
//     children's indices
//
// The preorder property lets [Tree.Clusters] compute all clusters in one
// reverse scan of the arena.
//
// # Removed Taxa
//
// [Tree.RemoveTaxon] excises a leaf and records its taxon in [Tree.Removed],
// so that Taxa() ∪ Removed() stays equal to the universe the tree was built
// over. The search uses the record to reattach removed taxa as hybrid nodes in
// finished networks.
//
// # Canonical Form
//
// [Tree.Canonical] renders a Newick-like string in which children are sorted,
// so two trees get the same string exactly when they are isomorphic as
// unordered leaf-labeled trees:
//
//	t, _ := phylo.Build(phylo.Inner(phylo.Leaf(2), phylo.Inner(phylo.Leaf(1), phylo.Leaf(0))))
//	fmt.Println(t.Canonical()) // ((0,1),2)
package phylo
