// Package render composes dendrogram and heatmap draw commands into scenes.
//
// A [Scene] is backend-independent: a list of translated layers of
// [dendrogram.Command] values. Output formats live in subpackages:
//
//   - [sink]: SVG (optionally interactive), PNG and JSON
//   - [nodelink]: the tree as a Graphviz graph (DOT, SVG, PNG)
//
// Typical use:
//
//	l, _ := dendrogram.Compute(res.Tree, res.Order, dendrogram.Options{})
//	g, _ := heatmap.New(m, res.Order, heatmap.Options{})
//	scene := render.Compose(l, dendrogram.NewState(), g, render.Options{Title: "Clubs"})
//	svg := sink.RenderSVG(scene, sink.WithInteraction())
//
// [sink]: github.com/matzehuels/dendro/pkg/render/sink
// [nodelink]: github.com/matzehuels/dendro/pkg/render/nodelink
package render
