package matrix

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/dendro/pkg/errors"
)

// clampTolerance bounds the float error accepted when 1 - similarity dips
// just below zero (cosine similarities of 1.0000000001 and the like).
const clampTolerance = 1e-9

// Matrix is an immutable n×n matrix of pairwise values with one display label
// per row. Whether the values are distances or similarities is up to the
// caller; [Matrix.ToDistance] converts the latter.
type Matrix struct {
	labels []string
	data   *mat.Dense
}

// New builds a Matrix from labels and row-major values.
//
// It fails with INVALID_INPUT when the matrix is empty, when the number of
// rows differs from the number of labels, or when a row is not of length n.
// Values are copied; rows may be reused by the caller afterwards.
func New(labels []string, rows [][]float64) (*Matrix, error) {
	n := len(labels)
	if n == 0 || len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix is empty")
	}
	if len(rows) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"matrix has %d rows but %d labels", len(rows), n)
	}

	flat := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"row %d (%s) has %d values, want %d", i, labels[i], len(row), n)
		}
		flat = append(flat, row...)
	}

	return &Matrix{
		labels: append([]string(nil), labels...),
		data:   mat.NewDense(n, n, flat),
	}, nil
}

// FromDense wraps a square gonum matrix. The matrix is copied.
func FromDense(labels []string, d mat.Matrix) (*Matrix, error) {
	r, c := d.Dims()
	if r != c {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix is %dx%d, want square", r, c)
	}
	if r != len(labels) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"matrix has %d rows but %d labels", r, len(labels))
	}
	return &Matrix{
		labels: append([]string(nil), labels...),
		data:   mat.DenseCopyOf(d),
	}, nil
}

// Size returns n.
func (m *Matrix) Size() int { return len(m.labels) }

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }

// Label returns the display label of row i.
func (m *Matrix) Label(i int) string { return m.labels[i] }

// Labels returns a copy of the labels.
func (m *Matrix) Labels() []string { return append([]string(nil), m.labels...) }

// Rows returns a copy of the values as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	n := m.Size()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, m.data)
	}
	return out
}

// Dense returns a copy of the underlying gonum matrix.
func (m *Matrix) Dense() *mat.Dense { return mat.DenseCopyOf(m.data) }

// IsSymmetric reports whether m equals its transpose within tol.
func (m *Matrix) IsSymmetric(tol float64) bool {
	return mat.EqualApprox(m.data, m.data.T(), tol)
}

// ValidateDistances checks that every off-diagonal value is a finite,
// non-negative number. The diagonal is never read by the clustering engine
// and is therefore not checked.
func (m *Matrix) ValidateDistances() error {
	n := m.Size()
	for i := 0; i < n; i++ {
		row := m.data.RawRowView(i)
		if !floats.HasNaN(row) && floats.Min(row) >= 0 && !math.IsInf(floats.Max(row), 1) {
			continue
		}
		for j, v := range row {
			if i == j {
				continue
			}
			switch {
			case math.IsNaN(v):
				return errors.New(errors.ErrCodeInvalidMatrix, "NaN distance between %s and %s", m.labels[i], m.labels[j])
			case math.IsInf(v, 0):
				return errors.New(errors.ErrCodeInvalidMatrix, "infinite distance between %s and %s", m.labels[i], m.labels[j])
			case v < 0:
				return errors.New(errors.ErrCodeInvalidMatrix, "negative distance %g between %s and %s", v, m.labels[i], m.labels[j])
			}
		}
	}
	return nil
}

// ToDistance converts a similarity matrix into a distance matrix using
// distance = 1 - similarity. Results in [-1e-9, 0) are clamped to zero.
func (m *Matrix) ToDistance() *Matrix {
	n := m.Size()
	out := mat.NewDense(n, n, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		d := 1 - v
		if d < 0 && d >= -clampTolerance {
			return 0
		}
		return d
	}, m.data)
	return &Matrix{labels: m.Labels(), data: out}
}

// MaxOffDiagonal returns the largest finite off-diagonal value, or 0 for a
// 1×1 matrix.
func (m *Matrix) MaxOffDiagonal() float64 {
	n := m.Size()
	best := math.Inf(-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := m.data.At(i, j); i != j && !math.IsNaN(v) && !math.IsInf(v, 0) && v > best {
				best = v
			}
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// Dataset returns the transport form of m.
func (m *Matrix) Dataset() Dataset {
	return Dataset{Labels: m.Labels(), Matrix: m.Rows()}
}
