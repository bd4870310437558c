package dendrogram

import (
	"fmt"
	"math"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// hitPadding widens each clickable area on both sides of the leaf axis.
const hitPadding = 3

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Branch is the drawable form of one internal node: two risers from the
// children up to the merge distance, a bar joining them, and a clickable
// area covering all three.
type Branch struct {
	Node     int     `json:"node"`
	Members  []int   `json:"members"`
	Distance float64 `json:"distance"`

	// Pos is the node's coordinate on the leaf axis, Dist its coordinate on
	// the distance axis.
	Pos  float64 `json:"pos"`
	Dist float64 `json:"dist"`

	LeftRiser  Segment `json:"left_riser"`
	RightRiser Segment `json:"right_riser"`
	Bar        Segment `json:"bar"`
	Hit        Rect    `json:"hit"`
	Title      string  `json:"title"`
}

// Segments returns the three lines of b.
func (b Branch) Segments() [3]Segment {
	return [3]Segment{b.LeftRiser, b.RightRiser, b.Bar}
}

// Leaf is the drawable anchor of one original item.
type Leaf struct {
	Index int     `json:"index"`
	Label string  `json:"label,omitempty"`
	Pos   float64 `json:"pos"`
	At    Point   `json:"at"`
}

// Layout is the geometry of a dendrogram. Branches are stored in merge order,
// so the branch of internal node id is Branches[id-len(Leaves)].
type Layout struct {
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Orientation Orientation `json:"orientation"`
	MaxDistance float64     `json:"max_distance"`
	Leaves      []Leaf      `json:"leaves"`
	Branches    []Branch    `json:"branches"`
}

// Compute lays out t with its leaves in the given order.
//
// Leaf k of the order sits at k/(n-1) of the leaf axis (0 when n is 1).
// Internal nodes sit at the midpoint of their children. Merge distances map
// linearly onto the distance axis with the root distance at its far end; a
// tree whose root distance is 0 collapses onto the leaf axis.
func Compute(t *cluster.Tree, order []int, opts Options) (*Layout, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree is nil")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := t.Leaves()
	if err := matrix.ValidatePermutation(order, n); err != nil {
		return nil, err
	}
	if opts.Labels != nil && len(opts.Labels) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d labels for %d leaves", len(opts.Labels), n)
	}

	posExtent, distExtent := opts.extents()
	maxDist := t.MaxDistance()

	pos := make([]float64, t.Len())
	dist := make([]float64, t.Len())

	l := &Layout{
		Width:       opts.Width,
		Height:      opts.Height,
		Orientation: opts.Orientation,
		MaxDistance: maxDist,
		Leaves:      make([]Leaf, 0, n),
		Branches:    make([]Branch, 0, n-1),
	}

	for k, leaf := range order {
		if n > 1 {
			pos[leaf] = float64(k) / float64(n-1) * posExtent
		}
		lf := Leaf{Index: leaf, Pos: pos[leaf], At: opts.point(pos[leaf], 0)}
		if opts.Labels != nil {
			lf.Label = opts.Labels[leaf]
		}
		l.Leaves = append(l.Leaves, lf)
	}

	// Children always precede their parent in the arena.
	for _, id := range t.Internal() {
		node := t.Node(id)
		lp, rp := pos[node.Left], pos[node.Right]
		ld, rd := dist[node.Left], dist[node.Right]

		pos[id] = (lp + rp) / 2
		if maxDist > 0 {
			dist[id] = node.Distance / maxDist * distExtent
		}
		d := dist[id]
		low := math.Min(ld, rd)

		b := Branch{
			Node:       id,
			Members:    t.Members(id),
			Distance:   node.Distance,
			Pos:        pos[id],
			Dist:       d,
			LeftRiser:  Segment{From: opts.point(lp, ld), To: opts.point(lp, d)},
			RightRiser: Segment{From: opts.point(rp, rd), To: opts.point(rp, d)},
			Bar:        Segment{From: opts.point(lp, d), To: opts.point(rp, d)},
			Title:      opts.title(node),
		}
		span := math.Abs(rp-lp) + 2*hitPadding
		depth := d - low + 1
		if opts.Orientation == Horizontal {
			b.Hit = Rect{X: low, Y: math.Min(lp, rp) - hitPadding, W: depth, H: span}
		} else {
			b.Hit = Rect{X: math.Min(lp, rp) - hitPadding, Y: low, W: span, H: depth}
		}
		l.Branches = append(l.Branches, b)
	}

	return l, nil
}

// title renders the tooltip of an internal node.
func (o Options) title(node cluster.Node) string {
	var metric string
	if o.Similarity {
		metric = fmt.Sprintf("Similarity: %.1f%%", (1-node.Distance)*100)
	} else {
		metric = fmt.Sprintf("Distance: %.*f", o.Precision, node.Distance)
		if o.Unit != "" {
			metric += " " + o.Unit
		}
	}
	return fmt.Sprintf("Cluster of %d %s\n%s\nClick to highlight", node.Size(), o.Noun, metric)
}

// Branch returns the branch drawn for internal node id.
func (l *Layout) Branch(id int) (Branch, bool) {
	i := id - len(l.Leaves)
	if i < 0 || i >= len(l.Branches) {
		return Branch{}, false
	}
	return l.Branches[i], true
}

// Order returns the leaf order the layout was computed with.
func (l *Layout) Order() []int {
	order := make([]int, len(l.Leaves))
	for i, lf := range l.Leaves {
		order[i] = lf.Index
	}
	return order
}

// Root returns the ID of the root node.
func (l *Layout) Root() int {
	if len(l.Branches) == 0 {
		return l.Leaves[0].Index
	}
	return l.Branches[len(l.Branches)-1].Node
}

// HitTest returns the branch whose clickable area contains (x, y). Nested
// areas overlap, so the innermost branch wins: the one with the smallest
// distance coordinate, then the fewest members, then the lowest node ID.
func (l *Layout) HitTest(x, y float64) (Branch, bool) {
	best := -1
	for i, b := range l.Branches {
		if !b.Hit.Contains(x, y) {
			continue
		}
		if best < 0 || inner(b, l.Branches[best]) {
			best = i
		}
	}
	if best < 0 {
		return Branch{}, false
	}
	return l.Branches[best], true
}

func inner(a, b Branch) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	if len(a.Members) != len(b.Members) {
		return len(a.Members) < len(b.Members)
	}
	return a.Node < b.Node
}
