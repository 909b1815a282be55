// Package reduce implements the two reduction rules applied before the
// hybridization search branches.
//
// [Subtrees] collapses every maximal pendant subtree the two trees have in
// common into a single placeholder leaf. The hybridization number does not
// change, and the collapsed subtrees can be put back into any network for the
// reduced trees.
//
// [Clusters] splits the trees along a cluster they share. The bottom pair
// covers the cluster, the top pair covers the rest with the cluster replaced
// by a placeholder leaf. The two pairs are independent: the hybridization
// number of the whole is the sum of theirs.
//
// Placeholder leaves are labeled with the smallest taxon of what they stand
// for, so placeholders never collide with taxa still in the trees.
package reduce
