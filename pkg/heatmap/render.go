package heatmap

import (
	"fmt"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
)

// Render draws the grid with its row and column labels. Cell (i, j) occupies
// [j*CellSize, (j+1)*CellSize) × [i*CellSize, (i+1)*CellSize); column labels
// hang below the grid and row labels sit to its left.
func (g *Grid) Render(h Highlight) []dendrogram.Command {
	n := g.Size()
	cs := g.CellSize
	extent := g.Extent()
	font := min(DefaultFontSize, cs*0.8)

	cmds := make([]dendrogram.Command, 0, n*n+2*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			st := neutralCell
			if i < len(h.Cells) && j < len(h.Cells[i]) {
				st = h.Cells[i][j]
			}
			cmds = append(cmds, dendrogram.Command{
				Shape: dendrogram.ShapeRect,
				Class: fmt.Sprintf("cell cell-row-%d cell-col-%d", i, j),
				Node:  cluster.None,
				X:     float64(j) * cs,
				Y:     float64(i) * cs,
				W:     cs,
				H:     cs,
				Title: g.CellTitle(i, j),
				Style: dendrogram.Style{
					Fill:        g.Color(i, j),
					Stroke:      st.Stroke,
					StrokeWidth: st.StrokeWidth,
					Opacity:     st.Opacity,
				},
			})
		}
	}

	for i, label := range g.Labels {
		ls := neutralLabel
		if i < len(h.Labels) {
			ls = h.Labels[i]
		}
		mid := (float64(i) + 0.5) * cs
		cmds = append(cmds,
			dendrogram.Command{
				Shape: dendrogram.ShapeText,
				Class: fmt.Sprintf("x-label x-label-%d", i),
				Node:  cluster.None,
				X:     mid,
				Y:     extent + 10,
				Text:  label,
				Style: dendrogram.Style{Fill: ls.Fill, Bold: ls.Bold, FontSize: font, Anchor: "start", Rotate: 45},
			},
			dendrogram.Command{
				Shape: dendrogram.ShapeText,
				Class: fmt.Sprintf("y-label y-label-%d", i),
				Node:  cluster.None,
				X:     -10,
				Y:     mid,
				Text:  label,
				Style: dendrogram.Style{Fill: ls.Fill, Bold: ls.Bold, FontSize: font, Anchor: "end", Rotate: -45},
			},
		)
	}
	return cmds
}

// Legend draws a vertical color bar at (x, y) running from the scale
// maximum at the top to zero at the bottom, approximated by steps bands.
func (g *Grid) Legend(x, y, w, h float64, steps int) []dendrogram.Command {
	if steps < 1 {
		steps = 10
	}
	band := h / float64(steps)
	cmds := make([]dendrogram.Command, 0, steps+3)
	for k := 0; k < steps; k++ {
		v := g.Scale.Max * (1 - (float64(k)+0.5)/float64(steps))
		cmds = append(cmds, dendrogram.Command{
			Shape: dendrogram.ShapeRect,
			Class: "legend-band",
			Node:  cluster.None,
			X:     x,
			Y:     y + float64(k)*band,
			W:     w,
			H:     band,
			Style: dendrogram.Style{Fill: g.Scale.Hex(v)},
		})
	}
	cmds = append(cmds,
		dendrogram.Command{
			Shape: dendrogram.ShapeRect,
			Class: "legend-frame",
			Node:  cluster.None,
			X:     x,
			Y:     y,
			W:     w,
			H:     h,
			Style: dendrogram.Style{Fill: "none", Stroke: dendrogram.ColorDimLabel, StrokeWidth: 1},
		},
		dendrogram.Command{
			Shape: dendrogram.ShapeText,
			Class: "legend-tick",
			Node:  cluster.None,
			X:     x + w + 4,
			Y:     y,
			Text:  g.formatTick(g.Scale.Max),
			Style: dendrogram.Style{Fill: dendrogram.ColorLabel, FontSize: 10, Anchor: "start"},
		},
		dendrogram.Command{
			Shape: dendrogram.ShapeText,
			Class: "legend-tick",
			Node:  cluster.None,
			X:     x + w + 4,
			Y:     y + h,
			Text:  g.formatTick(0),
			Style: dendrogram.Style{Fill: dendrogram.ColorLabel, FontSize: 10, Anchor: "start"},
		},
	)
	return cmds
}

func (g *Grid) formatTick(v float64) string {
	if g.opts.Similarity {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.*f", g.opts.Precision, v)
}
