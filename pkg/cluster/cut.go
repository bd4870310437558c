package cluster

import (
	"github.com/matzehuels/dendro/pkg/errors"
)

// CutHeight returns the flat clusters obtained by cutting the tree at height
// h: every maximal subtree whose merge distance is at most h becomes one
// cluster. Leaves always qualify. Clusters are listed in leaf order.
func (t *Tree) CutHeight(h float64) [][]int {
	return t.cut(func(n Node) bool { return n.IsLeaf() || n.Distance <= h })
}

// CutK returns exactly k flat clusters by undoing the last k-1 merges.
// k must be in [1, n].
func (t *Tree) CutK(k int) ([][]int, error) {
	if k < 1 || k > t.leaves {
		return nil, errors.New(errors.ErrCodeInvalidInput, "k = %d out of range [1, %d]", k, t.leaves)
	}
	threshold := 2*t.leaves - k
	return t.cut(func(n Node) bool { return n.ID < threshold }), nil
}

// cut walks from the root and emits the members of the first node on each
// path for which keep returns true.
func (t *Tree) cut(keep func(Node) bool) [][]int {
	var clusters [][]int
	stack := []int{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		if keep(n) {
			clusters = append(clusters, t.Members(id))
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
	return clusters
}

// Assignments converts flat clusters into a per-item label: out[i] is the
// index of the cluster containing original item i, or -1 if none does.
func Assignments(clusters [][]int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	for c, members := range clusters {
		for _, m := range members {
			if m >= 0 && m < n {
				out[m] = c
			}
		}
	}
	return out
}
