// Package registry holds the live dendrogram widgets of a server.
//
// A [Registry] is owned by whoever serves widgets (the HTTP API in
// `dendro serve`) and passed explicitly; there is no package-level state.
// Each widget is addressed by a random UUID and carries its dendrogram
// layout, the heatmap it drives and its current selection:
//
//	reg := registry.New(registry.Options{TTL: time.Hour})
//	w, err := reg.Create(ctx, layout, grid, render.Options{Title: "Clubs"})
//	sel, err := reg.Click(ctx, w.ID, x, y) // scene coordinates
//	scene, err := reg.Scene(w.ID)
//	err = reg.Destroy(ctx, w.ID)
//
// Widgets idle for longer than the TTL are dropped by [Registry.Cleanup].
package registry
