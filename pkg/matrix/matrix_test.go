package matrix

import (
	"math"
	"testing"

	"github.com/matzehuels/dendro/pkg/errors"
)

func fourItems(t *testing.T) *Matrix {
	t.Helper()
	m, err := New([]string{"A", "B", "C", "D"}, [][]float64{
		{0, 1, 5, 5},
		{1, 0, 5, 5},
		{5, 5, 0, 1},
		{5, 5, 1, 0},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		rows     [][]float64
		wantCode errors.Code
	}{
		{"valid", []string{"A", "B"}, [][]float64{{0, 1}, {1, 0}}, ""},
		{"single", []string{"A"}, [][]float64{{0}}, ""},
		{"empty", nil, nil, errors.ErrCodeInvalidInput},
		{"label mismatch", []string{"A", "B", "C"}, [][]float64{{0, 1}, {1, 0}}, errors.ErrCodeInvalidInput},
		{"ragged row", []string{"A", "B"}, [][]float64{{0, 1}, {1}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.labels, tt.rows)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("New() error: %v", err)
				}
				if m.Size() != len(tt.labels) {
					t.Errorf("Size() = %d, want %d", m.Size(), len(tt.labels))
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("New() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	rows := [][]float64{{0, 1}, {1, 0}}
	labels := []string{"A", "B"}
	m, err := New(labels, rows)
	if err != nil {
		t.Fatal(err)
	}
	rows[0][1] = 99
	labels[0] = "Z"
	if m.At(0, 1) != 1 {
		t.Errorf("At(0,1) = %v after caller mutation, want 1", m.At(0, 1))
	}
	if m.Label(0) != "A" {
		t.Errorf("Label(0) = %q after caller mutation, want A", m.Label(0))
	}
}

func TestValidateDistances(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		wantErr bool
	}{
		{"valid", [][]float64{{0, 2}, {2, 0}}, false},
		{"diagonal ignored", [][]float64{{math.NaN(), 2}, {2, -1}}, false},
		{"nan", [][]float64{{0, math.NaN()}, {2, 0}}, true},
		{"inf", [][]float64{{0, math.Inf(1)}, {2, 0}}, true},
		{"negative", [][]float64{{0, 2}, {-0.5, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New([]string{"A", "B"}, tt.rows)
			if err != nil {
				t.Fatal(err)
			}
			err = m.ValidateDistances()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDistances() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidMatrix) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidMatrix)
			}
		})
	}
}

func TestToDistance(t *testing.T) {
	sim, err := New([]string{"A", "B", "C"}, [][]float64{
		{1, 0.9, 0.2},
		{0.9, 1, 1.0000000001},
		{0.2, 1.0000000001, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	d := sim.ToDistance()

	if got := d.At(0, 1); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("distance(A,B) = %v, want 0.1", got)
	}
	if got := d.At(0, 2); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("distance(A,C) = %v, want 0.8", got)
	}
	if got := d.At(1, 2); got != 0 {
		t.Errorf("distance(B,C) = %v, want clamped 0", got)
	}
	if got := d.At(0, 0); got != 0 {
		t.Errorf("diagonal = %v, want 0", got)
	}
	if err := d.ValidateDistances(); err != nil {
		t.Errorf("converted matrix should validate: %v", err)
	}
	if sim.At(0, 1) != 0.9 {
		t.Error("ToDistance must not mutate the source matrix")
	}
}

func TestIsSymmetric(t *testing.T) {
	if !fourItems(t).IsSymmetric(0) {
		t.Error("fourItems should be symmetric")
	}
	m, _ := New([]string{"A", "B"}, [][]float64{{0, 1}, {2, 0}})
	if m.IsSymmetric(1e-9) {
		t.Error("asymmetric matrix reported symmetric")
	}
}

func TestReorder(t *testing.T) {
	m := fourItems(t)
	order := []int{2, 3, 0, 1}

	r, err := m.Reorder(order)
	if err != nil {
		t.Fatal(err)
	}
	for i := range order {
		for j := range order {
			if r.At(i, j) != m.At(order[i], order[j]) {
				t.Fatalf("reordered[%d][%d] = %v, want %v", i, j, r.At(i, j), m.At(order[i], order[j]))
			}
		}
	}
	if got := r.Labels(); got[0] != "C" || got[3] != "B" {
		t.Errorf("labels = %v, want [C D A B]", got)
	}

	identity := []int{0, 1, 2, 3}
	again, err := r.Reorder(identity)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(r, again) {
		t.Error("reordering by identity should return the same matrix")
	}
}

func TestReorderRejectsBadOrder(t *testing.T) {
	m := fourItems(t)
	for _, order := range [][]int{{0, 1, 2}, {0, 1, 2, 2}, {0, 1, 2, 4}, {-1, 0, 1, 2}} {
		if _, err := m.Reorder(order); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Reorder(%v) error = %v, want INVALID_INPUT", order, err)
		}
	}
}

func TestPositions(t *testing.T) {
	pos := Positions([]int{2, 0, 1})
	want := []int{1, 2, 0}
	for i := range want {
		if pos[i] != want[i] {
			t.Fatalf("Positions = %v, want %v", pos, want)
		}
	}
}

func TestMaxOffDiagonal(t *testing.T) {
	m, _ := New([]string{"A", "B"}, [][]float64{{9, 0.04}, {0.07, 9}})
	if got := m.MaxOffDiagonal(); got != 0.07 {
		t.Errorf("MaxOffDiagonal() = %v, want 0.07", got)
	}
	single, _ := New([]string{"A"}, [][]float64{{1}})
	if got := single.MaxOffDiagonal(); got != 0 {
		t.Errorf("MaxOffDiagonal() of 1x1 = %v, want 0", got)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	m := fourItems(t)
	back, err := m.Dataset().Build()
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(m, back) {
		t.Error("Dataset().Build() should reproduce the matrix")
	}
}
