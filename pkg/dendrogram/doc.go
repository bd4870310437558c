// Package dendrogram lays out a cluster tree as a dendrogram and implements
// its click-to-select interaction.
//
// # Layout
//
// [Compute] places leaves evenly along one axis in the given leaf order and
// maps merge distances onto the other axis. Every internal node becomes a
// [Branch]: a riser from each child up to the merge distance, a bar joining
// the risers, and a slightly padded clickable rectangle.
//
// # Interaction
//
// A [Widget] routes clicks the way a browser routes pointer events. The
// branch handler runs first and stops propagation; the background handler
// only sees events that no branch claimed:
//
//	w := dendrogram.NewWidget(layout, func(indices []int) {
//	    if indices == nil {
//	        // selection cleared
//	    }
//	})
//	w.Click(x, y)
//	w.Select(nodeID) // keyboard equivalent of clicking a branch
//	w.Clear()        // keyboard equivalent of clicking the background
//
// # Rendering
//
// [Render] is a pure function from a layout and a [State] to a list of
// [Command] values. Sinks in pkg/render translate commands to SVG, PNG or a
// terminal frame; no drawing toolkit is involved here.
package dendrogram
