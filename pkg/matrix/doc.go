// Package matrix holds labelled square matrices of pairwise distances or
// similarities.
//
// A [Matrix] is backed by a gonum [mat.Dense] and never mutated after
// construction. It is the input of the clustering engine and of the heatmap
// grid:
//
//	m, err := matrix.New([]string{"A", "B", "C"}, [][]float64{
//	    {0, 1, 5},
//	    {1, 0, 5},
//	    {5, 5, 0},
//	})
//
// Similarity matrices (Jaccard, cosine) are turned into distances with
// [Matrix.ToDistance], which applies distance = 1 - similarity.
//
// Reordering by a leaf order puts similar items next to each other:
//
//	ordered, err := m.Reorder(order) // ordered[i][j] = m[order[i]][order[j]]
package matrix
