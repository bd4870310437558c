// Package cluster implements naive agglomerative hierarchical clustering.
//
// [Run] takes a [matrix.Matrix] of pairwise distances (or similarities, when
// [Options.Similarity] is set) and repeatedly merges the two closest clusters
// until one remains. The closeness of two clusters is given by the
// [Linkage]:
//
//   - [Single]: minimum pairwise member distance
//   - [Complete]: maximum pairwise member distance
//   - [Average]: mean pairwise member distance
//
// The result is a [Tree] stored as an arena of [Node] values addressed by
// integer ID, the depth-first leaf order used to draw dendrograms and
// reorder heatmaps, and the merge history.
//
// # Determinism
//
// Ties are broken by position in the active cluster list: the first pair in
// row-major order wins, and merged clusters move to the end of the list.
// Equal inputs always produce identical trees.
//
// # Cutting
//
// [Tree.CutHeight] and [Tree.CutK] flatten the hierarchy into groups, and
// [Assignments] turns those groups into per-item labels.
package cluster
