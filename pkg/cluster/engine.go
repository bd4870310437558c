package cluster

import (
	"context"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// ScalableLimit is the item count above which callers should expect the
// cubic engine to become noticeably slow.
const ScalableLimit = 500

// Options configures a clustering run.
type Options struct {
	// Linkage is required.
	Linkage Linkage `json:"linkage"`
	// Similarity marks the input as a similarity matrix; it is converted with
	// distance = 1 - similarity before clustering.
	Similarity bool `json:"similarity,omitempty"`
}

// Merge records one step of the agglomeration.
type Merge struct {
	Step      int     `json:"step"`
	Node      int     `json:"node"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Distance  float64 `json:"distance"`
	Size      int     `json:"size"`
	Remaining int     `json:"remaining"`
}

// Result is the output of a clustering run.
type Result struct {
	Tree   *Tree
	Order  []int
	Merges []Merge
}

// Run clusters m with the given options. See [RunContext].
func Run(m *matrix.Matrix, opts Options) (*Result, error) {
	return RunContext(context.Background(), m, opts)
}

// RunContext builds the merge tree of m bottom-up.
//
// Every step scans all pairs (i, j), i < j, of the active cluster list in
// row-major order and merges the first pair with the strictly smallest
// linkage value. The new node takes active[i] as its left child and
// active[j] as its right child and is appended to the end of the list. Ties
// are therefore broken by list position, which makes the output a pure
// function of the input.
//
// The run takes O(n³) time and O(n²) space. ctx is checked once per merge.
func RunContext(ctx context.Context, m *matrix.Matrix, opts Options) (*Result, error) {
	if !opts.Linkage.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidLinkage, "linkage is required (one of single, complete, average)")
	}
	if m == nil || m.Size() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix is empty")
	}

	dist := m
	if opts.Similarity {
		dist = m.ToDistance()
	}
	if err := dist.ValidateDistances(); err != nil {
		return nil, err
	}

	n := dist.Size()
	tree := newTree(n)
	merges := make([]Merge, 0, n-1)

	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	var buf []float64
	linkage := func(a, b int) float64 {
		buf = buf[:0]
		for _, x := range tree.nodes[a].Members {
			for _, y := range tree.nodes[b].Members {
				buf = append(buf, dist.At(x, y))
			}
		}
		return opts.Linkage.reduce(buf)
	}

	for step := 1; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bi, bj := -1, -1
		var best float64
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				if d := linkage(active[i], active[j]); bi < 0 || d < best {
					bi, bj, best = i, j, d
				}
			}
		}

		left, right := active[bi], active[bj]
		id := tree.merge(left, right, best)

		// Remove j first so index i stays valid.
		active = append(active[:bj], active[bj+1:]...)
		active = append(active[:bi], active[bi+1:]...)
		active = append(active, id)

		merges = append(merges, Merge{
			Step:      step,
			Node:      id,
			Left:      left,
			Right:     right,
			Distance:  best,
			Size:      len(tree.nodes[id].Members),
			Remaining: len(active),
		})
	}

	return &Result{
		Tree:   tree,
		Order:  tree.Order(),
		Merges: merges,
	}, nil
}

// MergesOf returns the merge history encoded in t.
func MergesOf(t *Tree) []Merge {
	merges := make([]Merge, 0, t.leaves-1)
	remaining := t.leaves
	for id := t.leaves; id < len(t.nodes); id++ {
		remaining--
		node := t.nodes[id]
		merges = append(merges, Merge{
			Step:      id - t.leaves + 1,
			Node:      id,
			Left:      node.Left,
			Right:     node.Right,
			Distance:  node.Distance,
			Size:      len(node.Members),
			Remaining: remaining,
		})
	}
	return merges
}
