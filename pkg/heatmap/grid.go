package heatmap

import (
	"fmt"
	"math"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// Default geometry.
const (
	DefaultSize     = 600.0
	DefaultFontSize = 12.0
)

// Options configures a Grid.
type Options struct {
	// Width and Height bound the cell area; cells are square.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Scheme Scheme `json:"scheme"`
	// ScaleMax is the value mapped to the darkest color. Zero uses the
	// largest off-diagonal value.
	ScaleMax float64 `json:"scale_max,omitempty"`

	// Similarity formats cell tooltips as percentages.
	Similarity bool   `json:"similarity,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Precision  int    `json:"precision,omitempty"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultSize
	}
	if o.Height == 0 {
		o.Height = DefaultSize
	}
	if o.Scheme == "" {
		o.Scheme = DefaultScheme
	}
	if o.Precision <= 0 {
		o.Precision = 1
	}
}

// Grid is a matrix reordered by a leaf order, ready to draw:
// Values[i][j] = m[Order[i]][Order[j]].
type Grid struct {
	Order    []int
	Labels   []string
	Values   [][]float64
	CellSize float64
	Scale    *Scale

	opts      Options
	positions []int
}

// New reorders m by order and prepares the color scale.
func New(m *matrix.Matrix, order []int, opts Options) (*Grid, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix is nil")
	}
	opts.SetDefaults()
	if opts.Width < 0 || opts.Height < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dimensions must be positive, got %gx%g", opts.Width, opts.Height)
	}
	if opts.ScaleMax < 0 || math.IsNaN(opts.ScaleMax) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale max must be non-negative")
	}

	ordered, err := m.Reorder(order)
	if err != nil {
		return nil, err
	}

	scaleMax := opts.ScaleMax
	if scaleMax == 0 {
		scaleMax = ordered.MaxOffDiagonal()
	}
	scale, err := NewScale(opts.Scheme, scaleMax)
	if err != nil {
		return nil, err
	}

	n := m.Size()
	return &Grid{
		Order:     append([]int(nil), order...),
		Labels:    ordered.Labels(),
		Values:    ordered.Rows(),
		CellSize:  math.Min(opts.Width, opts.Height) / float64(n),
		Scale:     scale,
		opts:      opts,
		positions: matrix.Positions(order),
	}, nil
}

// FromValues is New for plain slices.
func FromValues(values [][]float64, labels []string, order []int, opts Options) (*Grid, error) {
	m, err := matrix.New(labels, values)
	if err != nil {
		return nil, err
	}
	return New(m, order, opts)
}

// Size returns the number of rows.
func (g *Grid) Size() int { return len(g.Labels) }

// Extent returns the side length of the cell area.
func (g *Grid) Extent() float64 { return g.CellSize * float64(g.Size()) }

// Position returns the grid row of original index i, or -1 if i is out of
// range.
func (g *Grid) Position(i int) int {
	if i < 0 || i >= len(g.positions) {
		return -1
	}
	return g.positions[i]
}

// Color returns the fill of cell (i, j) in grid coordinates.
func (g *Grid) Color(i, j int) string { return g.Scale.Hex(g.Values[i][j]) }

// CellTitle returns the tooltip of cell (i, j) in grid coordinates.
func (g *Grid) CellTitle(i, j int) string {
	v := g.Values[i][j]
	if g.opts.Similarity {
		return fmt.Sprintf("%s vs %s: %.1f%% similarity", g.Labels[i], g.Labels[j], v*100)
	}
	s := fmt.Sprintf("%s vs %s: %.*f", g.Labels[i], g.Labels[j], g.opts.Precision, v)
	if g.opts.Unit != "" {
		s += " " + g.opts.Unit
	}
	return s
}
