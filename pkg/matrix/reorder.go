package matrix

import (
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/dendro/pkg/errors"
)

// ValidatePermutation checks that order contains each of 0..n-1 exactly once.
func ValidatePermutation(order []int, n int) error {
	if len(order) != n {
		return errors.New(errors.ErrCodeInvalidInput, "order has %d entries, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for pos, idx := range order {
		if idx < 0 || idx >= n {
			return errors.New(errors.ErrCodeInvalidInput, "order[%d] = %d out of range [0, %d)", pos, idx, n)
		}
		if seen[idx] {
			return errors.New(errors.ErrCodeInvalidInput, "order repeats index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

// Reorder returns a new matrix with rows, columns and labels permuted so that
// out[i][j] = m[order[i]][order[j]].
func (m *Matrix) Reorder(order []int) (*Matrix, error) {
	n := m.Size()
	if err := ValidatePermutation(order, n); err != nil {
		return nil, err
	}

	out := mat.NewDense(n, n, nil)
	labels := make([]string, n)
	for i, oi := range order {
		labels[i] = m.labels[oi]
		for j, oj := range order {
			out.Set(i, j, m.data.At(oi, oj))
		}
	}
	return &Matrix{labels: labels, data: out}, nil
}

// Positions inverts a permutation: Positions(order)[original] = position.
func Positions(order []int) []int {
	pos := make([]int, len(order))
	for p, idx := range order {
		pos[idx] = p
	}
	return pos
}

// Equal reports whether a and b have identical labels and values.
func Equal(a, b *Matrix) bool {
	if a.Size() != b.Size() {
		return false
	}
	for i := range a.labels {
		if a.labels[i] != b.labels[i] {
			return false
		}
	}
	return mat.Equal(a.data, b.data)
}
