// Package heatmap draws a distance or similarity matrix as a grid of colored
// cells, reordered by a dendrogram's leaf order, and applies the selection
// highlight produced by a dendrogram widget.
//
//	g, err := heatmap.New(m, res.Order, heatmap.Options{Scheme: heatmap.Blues})
//	w := dendrogram.NewWidget(layout, func(indices []int) {
//	    frame := g.Render(g.Highlight(indices))
//	    // hand frame to a sink
//	})
//
// Highlight maps original indices to grid positions, so callers never deal
// with the permutation themselves.
package heatmap
