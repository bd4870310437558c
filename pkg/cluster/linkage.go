package cluster

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/dendro/pkg/errors"
)

// Linkage selects how the distance between two clusters is derived from the
// pairwise distances of their members. The zero value is not a valid linkage.
type Linkage int

const (
	// Single uses the minimum member distance (nearest neighbour).
	Single Linkage = iota + 1
	// Complete uses the maximum member distance (farthest neighbour).
	Complete
	// Average uses the arithmetic mean of all member distances (UPGMA).
	Average
)

var linkageNames = map[Linkage]string{
	Single:   "single",
	Complete: "complete",
	Average:  "average",
}

// Linkages lists the supported policies in display order.
func Linkages() []Linkage { return []Linkage{Single, Complete, Average} }

// LinkageNames returns the names accepted by ParseLinkage.
func LinkageNames() []string {
	out := make([]string, 0, len(linkageNames))
	for _, l := range Linkages() {
		out = append(out, l.String())
	}
	return out
}

func (l Linkage) String() string {
	if s, ok := linkageNames[l]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether l is one of the supported policies.
func (l Linkage) Valid() bool {
	_, ok := linkageNames[l]
	return ok
}

// ParseLinkage converts a policy name to a Linkage. The aliases min, max and
// mean are accepted for single, complete and average.
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "min":
		return Single, nil
	case "complete", "max":
		return Complete, nil
	case "average", "mean", "upgma":
		return Average, nil
	case "":
		return 0, errors.New(errors.ErrCodeInvalidLinkage, "linkage is required (one of %s)", strings.Join(LinkageNames(), ", "))
	}
	return 0, errors.New(errors.ErrCodeInvalidLinkage, "unknown linkage %q (one of %s)", s, strings.Join(LinkageNames(), ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (l Linkage) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidLinkage, "invalid linkage %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Linkage) UnmarshalText(b []byte) error {
	v, err := ParseLinkage(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// reduce collapses the pairwise member distances of two clusters to a single
// linkage value. dists is never empty.
func (l Linkage) reduce(dists []float64) float64 {
	switch l {
	case Single:
		return floats.Min(dists)
	case Complete:
		return floats.Max(dists)
	default:
		return stat.Mean(dists, nil)
	}
}
