// Package network provides the rooted phylogenetic networks produced by the
// hybridization search.
//
// # Overview
//
// A [Network] is a rooted DAG over taxon identifiers. Every edge carries a
// [Source]: Tree1 or Tree2 when it belongs to one input tree only, Merged when
// both input trees share it. Following the edges of one input tree from the
// root yields the tree that the network displays for it ([Network.Displayed]).
//
// # Building Networks
//
// The search never edits a network in place. It starts from trees and
// combines partial results with a handful of operators:
//
//   - [IsomorphicMerge]: two isomorphic trees become one all-Merged network
//   - [ExpandPlaceholder]: a common subtree is put back where a subtree
//     reduction left a placeholder leaf
//   - [CrossProduct]: the solutions of an inner subproblem are substituted at
//     the placeholder of every solution of the outer subproblem
//   - [AttachHybrid]: a taxon removed during branching returns as a
//     reticulation with one parent per input tree
//
// # Canonical Form
//
// [Network.Canonical] unfolds the network from the root with sorted children,
// marking reticulations and edge sources. Isomorphic networks get the same
// string, which is what [Set] uses to drop duplicates and to order results.
package network
