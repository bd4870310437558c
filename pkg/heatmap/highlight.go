package heatmap

import (
	"sort"

	"github.com/matzehuels/dendro/pkg/dendrogram"
)

// Styles applied by Highlight.
const (
	DimOpacity        = 0.2
	AccentStrokeWidth = 2.0
	GridStrokeWidth   = 0.5
)

// CellStyle is the presentation of one heatmap cell.
type CellStyle struct {
	Opacity     float64 `json:"opacity"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
}

// LabelStyle is the presentation of one row or column label.
type LabelStyle struct {
	Fill string `json:"fill"`
	Bold bool   `json:"bold"`
}

// Highlight is the styling of every cell and label for one selection.
type Highlight struct {
	// Positions are the selected grid rows (and columns), ascending. Nil
	// when the selection is cleared.
	Positions []int         `json:"positions"`
	Cells     [][]CellStyle `json:"cells"`
	Labels    []LabelStyle  `json:"labels"`
}

// Active reports whether h emphasises a selection.
func (h Highlight) Active() bool { return h.Positions != nil }

var (
	neutralCell  = CellStyle{Opacity: 1, Stroke: dendrogram.ColorGrid, StrokeWidth: GridStrokeWidth}
	dimmedCell   = CellStyle{Opacity: DimOpacity, Stroke: dendrogram.ColorGrid, StrokeWidth: GridStrokeWidth}
	accentCell   = CellStyle{Opacity: 1, Stroke: dendrogram.ColorAccent, StrokeWidth: AccentStrokeWidth}
	neutralLabel = LabelStyle{Fill: dendrogram.ColorLabel}
	dimmedLabel  = LabelStyle{Fill: dendrogram.ColorDimLabel}
	accentLabel  = LabelStyle{Fill: dendrogram.ColorAccent, Bold: true}
)

// Highlight styles the grid for a selection of original indices.
//
// With a nil selection every cell is drawn at full opacity with a thin white
// stroke. Otherwise the block of selected rows × selected columns is drawn
// at full opacity with an accent stroke, everything else is dimmed, and the
// selected labels are accented. Indices outside the matrix are ignored.
func (g *Grid) Highlight(sel []int) Highlight {
	n := g.Size()
	h := Highlight{
		Cells:  make([][]CellStyle, n),
		Labels: make([]LabelStyle, n),
	}

	if sel == nil {
		for i := range h.Cells {
			h.Cells[i] = make([]CellStyle, n)
			for j := range h.Cells[i] {
				h.Cells[i][j] = neutralCell
			}
			h.Labels[i] = neutralLabel
		}
		return h
	}

	picked := make([]bool, n)
	h.Positions = []int{}
	for _, idx := range sel {
		if p := g.Position(idx); p >= 0 && !picked[p] {
			picked[p] = true
			h.Positions = append(h.Positions, p)
		}
	}
	sort.Ints(h.Positions)

	for i := range h.Cells {
		h.Cells[i] = make([]CellStyle, n)
		for j := range h.Cells[i] {
			if picked[i] && picked[j] {
				h.Cells[i][j] = accentCell
			} else {
				h.Cells[i][j] = dimmedCell
			}
		}
		if picked[i] {
			h.Labels[i] = accentLabel
		} else {
			h.Labels[i] = dimmedLabel
		}
	}
	return h
}
