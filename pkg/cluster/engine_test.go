package cluster

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

func mustMatrix(t *testing.T, labels []string, rows [][]float64) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New(labels, rows)
	if err != nil {
		t.Fatalf("matrix.New() error: %v", err)
	}
	return m
}

func fourItems(t *testing.T) *matrix.Matrix {
	return mustMatrix(t, []string{"A", "B", "C", "D"}, [][]float64{
		{0, 1, 5, 5},
		{1, 0, 5, 5},
		{5, 5, 0, 1},
		{5, 5, 1, 0},
	})
}

// randomMatrix returns a symmetric matrix with values in [0, 10).
func randomMatrix(t *testing.T, n int, seed int64) *matrix.Matrix {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	labels := make([]string, n)
	rows := make([][]float64, n)
	for i := range rows {
		labels[i] = string(rune('a' + i%26))
		rows[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := r.Float64() * 10
			rows[i][j], rows[j][i] = v, v
		}
	}
	return mustMatrix(t, labels, rows)
}

func TestRunFourItems(t *testing.T) {
	for _, l := range Linkages() {
		t.Run(l.String(), func(t *testing.T) {
			res, err := Run(fourItems(t), Options{Linkage: l})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			tree := res.Tree

			if got, want := res.Order, []int{0, 1, 2, 3}; !slices.Equal(got, want) {
				t.Errorf("Order = %v, want %v", got, want)
			}

			first := tree.Node(4)
			if first.Left != 0 || first.Right != 1 || first.Distance != 1 {
				t.Errorf("first merge = %+v, want A+B at 1", first)
			}
			second := tree.Node(5)
			if second.Left != 2 || second.Right != 3 || second.Distance != 1 {
				t.Errorf("second merge = %+v, want C+D at 1", second)
			}
			root := tree.Node(tree.Root())
			if root.Distance != 5 {
				t.Errorf("root distance = %v, want 5", root.Distance)
			}
			if !slices.Equal(root.Members, []int{0, 1, 2, 3}) {
				t.Errorf("root members = %v", root.Members)
			}
		})
	}
}

func TestRunSingleItem(t *testing.T) {
	res, err := Run(mustMatrix(t, []string{"A"}, [][]float64{{0}}), Options{Linkage: Average})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Tree.Len() != 1 || res.Tree.Root() != 0 {
		t.Errorf("tree = %d nodes rooted at %d, want single leaf", res.Tree.Len(), res.Tree.Root())
	}
	if !slices.Equal(res.Order, []int{0}) {
		t.Errorf("Order = %v, want [0]", res.Order)
	}
	if len(res.Merges) != 0 {
		t.Errorf("Merges = %v, want none", res.Merges)
	}
	if !res.Tree.Node(0).IsLeaf() {
		t.Error("root should be a leaf")
	}
}

func TestRunSimilarity(t *testing.T) {
	m := mustMatrix(t, []string{"A", "B"}, [][]float64{{1, 0.9}, {0.9, 1}})
	res, err := Run(m, Options{Linkage: Average, Similarity: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := res.Tree.MaxDistance(); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("root distance = %v, want 0.1", got)
	}
}

func TestRunSimilarityMergesMostSimilarFirst(t *testing.T) {
	// A and B are the most similar pair; C sits between them in the input.
	m := mustMatrix(t, []string{"A", "C", "B"}, [][]float64{
		{1, 0.3, 0.9},
		{0.3, 1, 0.2},
		{0.9, 0.2, 1},
	})
	for _, l := range Linkages() {
		t.Run(l.String(), func(t *testing.T) {
			res, err := Run(m, Options{Linkage: l, Similarity: true})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			first := res.Tree.Node(3)
			pair := []int{min(first.Left, first.Right), max(first.Left, first.Right)}
			if !slices.Equal(pair, []int{0, 2}) || math.Abs(first.Distance-0.1) > 1e-9 {
				t.Errorf("first merge = %+v, want A+B at 0.1", first)
			}
			a, b := slices.Index(res.Order, 0), slices.Index(res.Order, 2)
			if a < 0 || b < 0 || a-b != 1 && b-a != 1 {
				t.Errorf("Order = %v, want A and B adjacent", res.Order)
			}
			if root := res.Tree.Node(res.Tree.Root()); root.Distance < first.Distance {
				t.Errorf("root distance %v below first merge", root.Distance)
			}
		})
	}
}

func TestRunLinkages(t *testing.T) {
	// A-B close; C is 2 from A and 6 from B.
	m := mustMatrix(t, []string{"A", "B", "C"}, [][]float64{
		{0, 1, 2},
		{1, 0, 6},
		{2, 6, 0},
	})
	tests := []struct {
		linkage Linkage
		want    float64
	}{
		{Single, 2},
		{Complete, 6},
		{Average, 4},
	}
	for _, tt := range tests {
		t.Run(tt.linkage.String(), func(t *testing.T) {
			res, err := Run(m, Options{Linkage: tt.linkage})
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Tree.MaxDistance(); got != tt.want {
				t.Errorf("root distance = %v, want %v", got, tt.want)
			}
			// A+B is appended after C, so C is the left child.
			root := res.Tree.Node(res.Tree.Root())
			if root.Left != 2 || root.Right != 3 {
				t.Errorf("root children = %d, %d, want 2, 3", root.Left, root.Right)
			}
			if !slices.Equal(res.Order, []int{2, 0, 1}) {
				t.Errorf("Order = %v, want [2 0 1]", res.Order)
			}
		})
	}
}

func TestRunTieBreaksByPosition(t *testing.T) {
	m := mustMatrix(t, []string{"A", "B", "C"}, [][]float64{
		{0, 3, 3},
		{3, 0, 3},
		{3, 3, 0},
	})
	res, err := Run(m, Options{Linkage: Single})
	if err != nil {
		t.Fatal(err)
	}
	first := res.Merges[0]
	if first.Left != 0 || first.Right != 1 {
		t.Errorf("first merge = %d+%d, want 0+1", first.Left, first.Right)
	}
}

func TestRunErrors(t *testing.T) {
	valid := fourItems(t)
	tests := []struct {
		name string
		m    *matrix.Matrix
		opts Options
		code errors.Code
	}{
		{"missing linkage", valid, Options{}, errors.ErrCodeInvalidLinkage},
		{"unknown linkage", valid, Options{Linkage: Linkage(42)}, errors.ErrCodeInvalidLinkage},
		{"nil matrix", nil, Options{Linkage: Single}, errors.ErrCodeInvalidInput},
		{"nan", mustMatrix(t, []string{"A", "B"}, [][]float64{{0, math.NaN()}, {math.NaN(), 0}}), Options{Linkage: Single}, errors.ErrCodeInvalidMatrix},
		{"negative", mustMatrix(t, []string{"A", "B"}, [][]float64{{0, -1}, {-1, 0}}), Options{Linkage: Single}, errors.ErrCodeInvalidMatrix},
		{"similarity above one", mustMatrix(t, []string{"A", "B"}, [][]float64{{1, 1.5}, {1.5, 1}}), Options{Linkage: Single, Similarity: true}, errors.ErrCodeInvalidMatrix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.m, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Run() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunContext(ctx, fourItems(t), Options{Linkage: Single}); err != context.Canceled {
		t.Errorf("RunContext() error = %v, want context.Canceled", err)
	}
}

func TestRunProperties(t *testing.T) {
	for _, n := range []int{2, 3, 7, 16, 33} {
		for _, l := range Linkages() {
			m := randomMatrix(t, n, int64(n))
			res, err := Run(m, Options{Linkage: l})
			if err != nil {
				t.Fatalf("n=%d %s: Run() error: %v", n, l, err)
			}
			tree := res.Tree

			if err := tree.Validate(); err != nil {
				t.Errorf("n=%d %s: Validate() = %v", n, l, err)
			}
			if tree.Len() != 2*n-1 {
				t.Errorf("n=%d %s: Len() = %d, want %d", n, l, tree.Len(), 2*n-1)
			}
			if len(res.Merges) != n-1 {
				t.Errorf("n=%d %s: %d merges, want %d", n, l, len(res.Merges), n-1)
			}
			if err := matrix.ValidatePermutation(res.Order, n); err != nil {
				t.Errorf("n=%d %s: order is not a permutation: %v", n, l, err)
			}
			if !tree.IsMonotone() {
				t.Errorf("n=%d %s: tree is not monotone", n, l)
			}
			for i := 1; i < len(res.Merges); i++ {
				if res.Merges[i].Distance < res.Merges[i-1].Distance {
					t.Errorf("n=%d %s: merge %d distance %v below previous %v", n, l, i, res.Merges[i].Distance, res.Merges[i-1].Distance)
				}
			}
			if last := res.Merges[len(res.Merges)-1]; last.Remaining != 1 || last.Size != n {
				t.Errorf("n=%d %s: last merge = %+v", n, l, last)
			}
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	m := randomMatrix(t, 20, 7)
	a, err := Run(m, Options{Linkage: Average})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(m, Options{Linkage: Average})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Order, b.Order) {
		t.Errorf("orders differ: %v vs %v", a.Order, b.Order)
	}
	if !slices.Equal(a.Merges, b.Merges) {
		t.Error("merge histories differ")
	}
}

func TestMergesOf(t *testing.T) {
	res, err := Run(randomMatrix(t, 9, 3), Options{Linkage: Complete})
	if err != nil {
		t.Fatal(err)
	}
	if got := MergesOf(res.Tree); !slices.Equal(got, res.Merges) {
		t.Errorf("MergesOf() = %v\nwant %v", got, res.Merges)
	}
}
