// Package hybrid computes minimum hybridization networks for two rooted
// phylogenetic trees over the same taxa.
//
// # Overview
//
// The hybridization number of two trees is the smallest number of
// reticulations a network needs to display both of them. [Engine.Compute]
// returns that number together with every network attaining it that the
// search produces.
//
// # Search
//
// The search is a depth-first branch and bound. Each call on a pair of trees:
//
//  1. Returns a single all-Merged network when the trees are isomorphic.
//  2. Collapses maximal common pendant subtrees ([reduce.Subtrees]), solves
//     the smaller pair and puts the subtrees back.
//  3. Splits along a minimal common cluster ([reduce.Clusters]); the two
//     halves are solved separately and their hybridization numbers add up.
//  4. Otherwise removes each candidate taxon in turn from both trees, solves
//     the rest with a budget one smaller, and attaches the taxon back as a
//     reticulation. Branches that cannot beat the best result so far are cut
//     off by the budget.
//
// Results of subproblems are memoized in a bounded LRU [Memo], keyed by the
// canonical strings of both trees and the candidate set.
//
// # Budgets
//
// With Options.Budget unset the engine searches budgets 0, 1, 2, ... until a
// solution appears, so the first answer is the minimum. An explicit budget
// runs a single search and fails with errors.ErrCodeBudgetExceeded if the
// hybridization number is larger; results are never truncated.
//
// # Cancellation
//
// The context is checked once per recursive call. A cancelled search returns
// an error with code errors.ErrCodeCancelled that also matches the context
// error under the standard errors.Is.
package hybrid
