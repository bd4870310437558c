package heatmap

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/dendro/pkg/errors"
)

// Scheme names a sequential color scale running from a near-white low end to
// a saturated high end.
type Scheme string

const (
	Oranges Scheme = "oranges"
	Blues   Scheme = "blues"
	Greens  Scheme = "greens"
	Purples Scheme = "purples"
	Reds    Scheme = "reds"
)

// DefaultScheme is used when none is configured.
const DefaultScheme = Oranges

// Nine-class ColorBrewer sequential palettes.
var schemeStops = map[Scheme][]string{
	Oranges: {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	Blues:   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	Greens:  {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	Purples: {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	Reds:    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
}

// Schemes returns the supported scheme names, sorted.
func Schemes() []string {
	names := make([]string, 0, len(schemeStops))
	for s := range schemeStops {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// ParseScheme converts a name to a Scheme. The empty string selects
// [DefaultScheme].
func ParseScheme(s string) (Scheme, error) {
	name := Scheme(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return DefaultScheme, nil
	}
	if _, ok := schemeStops[name]; !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown color scheme %q (one of %s)", s, strings.Join(Schemes(), ", "))
	}
	return name, nil
}

// Scale maps values in [0, Max] onto a scheme. Values outside the domain are
// clamped.
type Scale struct {
	Max   float64
	stops []colorful.Color
}

// NewScale builds a scale for scheme over [0, max].
func NewScale(scheme Scheme, max float64) (*Scale, error) {
	hexes, ok := schemeStops[scheme]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown color scheme %q", scheme)
	}
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "palette %s", scheme)
		}
		stops[i] = c
	}
	return &Scale{Max: max, stops: stops}, nil
}

// At returns the color of v.
func (s *Scale) At(v float64) colorful.Color {
	t := 0.0
	if s.Max > 0 && !math.IsNaN(v) {
		t = math.Max(0, math.Min(1, v/s.Max))
	}
	seg := t * float64(len(s.stops)-1)
	i := int(math.Floor(seg))
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	frac := seg - float64(i)
	if frac == 0 {
		return s.stops[i]
	}
	return s.stops[i].BlendLab(s.stops[i+1], frac).Clamped()
}

// Hex returns the color of v as #rrggbb.
func (s *Scale) Hex(v float64) string { return s.At(v).Hex() }
