// Package io converts between Newick text and the integer trees and
// networks the search works on.
//
// # Input
//
// [ParseNewick] and [ReadTrees] read Newick text with the gotree parser.
// [Prepare] then maps the leaf labels of two parsed trees onto one shared
// id space:
//
//	g1, _ := io.ParseNewick("(A,(B,C));")
//	g2, _ := io.ParseNewick("((A,B),C);")
//	inst, err := io.Prepare(g1, g2)
//
// Ids are assigned in sorted label order, so the same pair of trees always
// yields the same instance. When the label sets differ, both trees are
// restricted to the labels they share and the others are reported in
// [Instance.Dropped]. Trees without a shared label are rejected with
// errors.ErrCodeDisjointTaxa.
//
// # Output
//
// [NewDocument] turns a search result into a [Document]: the hybridization
// number, the taxon labels and, per network, its extended Newick string,
// the two embedded input trees and the node arena. Documents round-trip
// through [WriteJSON] and [ReadJSON], which is how results are cached and
// served. [WriteNewick] writes one extended Newick string per line.
//
// Reticulations are written in the extended Newick convention: the subtree
// below a hybrid node appears once tagged #H1, #H2, ... and every other
// parent refers to it by tag.
package io
