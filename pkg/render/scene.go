package render

import (
	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/heatmap"
)

// Layer names.
const (
	LayerTitle      = "title"
	LayerDendrogram = "dendrogram"
	LayerHeatmap    = "heatmap"
	LayerLegend     = "legend"
)

// Spacing around and between layers.
const (
	Margin      = 20.0
	TitleHeight = 28.0
	LabelSpace  = 90.0
	Gap         = 20.0
	LegendWidth = 12.0
)

// Layer is a group of draw commands translated by (X, Y).
type Layer struct {
	Name     string               `json:"name"`
	X        float64              `json:"x"`
	Y        float64              `json:"y"`
	Commands []dendrogram.Command `json:"commands"`
}

// Scene is a complete frame: the dendrogram, the heatmap it reorders and
// their decorations, positioned on one canvas.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Title  string  `json:"title,omitempty"`
	// Order is the leaf order; Order[p] is the original index drawn at grid
	// position p.
	Order  []int            `json:"order"`
	State  dendrogram.State `json:"state"`
	Layers []Layer          `json:"layers"`
}

// Options configures [Compose].
type Options struct {
	Title string
	// Legend adds a color bar next to the heatmap.
	Legend bool
}

// Compose lays out one frame for state. g may be nil to draw the dendrogram
// alone. The heatmap highlight follows state.Selected.
//
// Vertical dendrograms sit above the heatmap, horizontal ones to its left,
// so the leaf axis runs alongside the grid.
func Compose(l *dendrogram.Layout, state dendrogram.State, g *heatmap.Grid, opts Options) *Scene {
	s := &Scene{Title: opts.Title, Order: l.Order(), State: state}

	top := Margin
	if opts.Title != "" {
		top += TitleHeight
	}

	dx, dy := Margin+LabelSpace, top
	if l.Orientation == dendrogram.Vertical {
		dy += LabelSpace
	}
	s.Layers = append(s.Layers, Layer{
		Name:     LayerDendrogram,
		X:        dx,
		Y:        dy,
		Commands: dendrogram.Render(l, state),
	})
	right, bottom := dx+l.Width, dy+l.Height

	if g != nil {
		hx, hy := dx, dy+l.Height+Gap
		if l.Orientation == dendrogram.Horizontal {
			hx, hy = dx+l.Width+Gap+LabelSpace, dy
		}
		s.Layers = append(s.Layers, Layer{
			Name:     LayerHeatmap,
			X:        hx,
			Y:        hy,
			Commands: g.Render(g.Highlight(state.Selected)),
		})
		right = max(right, hx+g.Extent())
		bottom = max(bottom, hy+g.Extent()+LabelSpace)

		if opts.Legend {
			lx := hx + g.Extent() + Gap
			s.Layers = append(s.Layers, Layer{
				Name:     LayerLegend,
				X:        lx,
				Y:        hy,
				Commands: g.Legend(0, 0, LegendWidth, g.Extent(), 24),
			})
			right = max(right, lx+LegendWidth+60)
		}
	}

	s.Width = right + Margin
	s.Height = bottom + Margin

	if opts.Title != "" {
		s.Layers = append([]Layer{{
			Name: LayerTitle,
			Commands: []dendrogram.Command{{
				Shape: dendrogram.ShapeText,
				Class: "title",
				Node:  cluster.None,
				X:     s.Width / 2,
				Y:     Margin + TitleHeight/2,
				Text:  opts.Title,
				Style: dendrogram.Style{Fill: dendrogram.ColorLabel, FontSize: 16, Bold: true, Anchor: "middle"},
			}},
		}}, s.Layers...)
	}
	return s
}

// Layer returns the layer called name.
func (s *Scene) Layer(name string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Commands returns every command translated into scene coordinates.
func (s *Scene) Commands() []dendrogram.Command {
	var out []dendrogram.Command
	for _, l := range s.Layers {
		for _, c := range l.Commands {
			out = append(out, Translate(c, l.X, l.Y))
		}
	}
	return out
}

// Translate shifts c by (dx, dy).
func Translate(c dendrogram.Command, dx, dy float64) dendrogram.Command {
	switch c.Shape {
	case dendrogram.ShapeLine:
		c.X1, c.Y1, c.X2, c.Y2 = c.X1+dx, c.Y1+dy, c.X2+dx, c.Y2+dy
	default:
		c.X, c.Y = c.X+dx, c.Y+dy
	}
	return c
}
