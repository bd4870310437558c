// Package nodelink draws a cluster tree as a node-link diagram with
// Graphviz: leaves as labelled boxes, merges as ellipses showing their
// distance.
//
//	dot := nodelink.ToDOT(res.Tree, nodelink.Options{Labels: labels})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering runs in process through [github.com/goccy/go-graphviz].
package nodelink
