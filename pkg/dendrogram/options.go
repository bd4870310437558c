package dendrogram

import (
	"strings"

	"github.com/matzehuels/dendro/pkg/errors"
)

// Orientation selects which axis the leaves are spread along.
type Orientation string

const (
	// Vertical spreads leaves along x; merge distance grows along y.
	Vertical Orientation = "vertical"
	// Horizontal spreads leaves along y; merge distance grows along x.
	Horizontal Orientation = "horizontal"
)

// ParseOrientation converts a name to an Orientation. The empty string
// selects [Vertical].
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "", Vertical:
		return Vertical, nil
	case Horizontal:
		return Horizontal, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOrientation, "unknown orientation %q (vertical or horizontal)", s)
}

// Default dimensions of a dendrogram drawn next to a heatmap.
const (
	DefaultWidth     = 400.0
	DefaultHeight    = 150.0
	DefaultNoun      = "items"
	DefaultPrecision = 3
)

// Options configures [Compute].
type Options struct {
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Orientation Orientation `json:"orientation"`

	// Labels names the leaves by original index. Optional.
	Labels []string `json:"labels,omitempty"`

	// Noun, Unit, Precision and Similarity shape the branch tooltips:
	// "Cluster of 4 players\nDistance: 12.5 yards\nClick to highlight".
	Noun       string `json:"noun,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Precision  int    `json:"precision,omitempty"`
	Similarity bool   `json:"similarity,omitempty"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Orientation == "" {
		o.Orientation = Vertical
	}
	if o.Noun == "" {
		o.Noun = DefaultNoun
	}
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
}

// Validate checks dimensions and orientation.
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dimensions must be positive, got %gx%g", o.Width, o.Height)
	}
	if _, err := ParseOrientation(string(o.Orientation)); err != nil {
		return err
	}
	return nil
}

// extents returns the lengths of the leaf axis and the distance axis.
func (o Options) extents() (pos, dist float64) {
	if o.Orientation == Horizontal {
		return o.Height, o.Width
	}
	return o.Width, o.Height
}

// point maps a (position, distance) pair to canvas coordinates.
func (o Options) point(pos, dist float64) Point {
	if o.Orientation == Horizontal {
		return Point{X: dist, Y: pos}
	}
	return Point{X: pos, Y: dist}
}
