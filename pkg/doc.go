// Package pkg provides the core libraries for Dendro hierarchical
// clustering and dendrogram visualization.
//
// # Overview
//
// Dendro clusters a labelled distance (or similarity) matrix bottom-up and
// draws the merge tree as a dendrogram next to the matrix reordered by the
// tree's leaf order. A click on a branch selects every item below it and
// highlights their block in the heatmap.
//
// The typical data flow:
//
//	CSV / JSON matrix (file, URL or inline)
//	         ↓
//	    [io] + [matrix]      (load and validate)
//	         ↓
//	    [cluster]            (merge tree, leaf order)
//	         ↓
//	    [dendrogram] + [heatmap]  (geometry, colors, hit testing)
//	         ↓
//	    [render] + [render/sink]  (scene, SVG/PNG/JSON)
//
// # Quick Start
//
//	m, _ := matrix.New(labels, distances)
//	res, _ := cluster.Run(m, cluster.Options{Linkage: cluster.Average})
//	l, _ := dendrogram.Compute(res.Tree, res.Order, dendrogram.Options{Labels: labels})
//	grid, _ := heatmap.New(m, res.Order, heatmap.Options{})
//	scene := render.Compose(l, dendrogram.State{}, grid, render.Options{})
//	svg := sink.RenderSVG(scene)
//
// Most callers go through [pipeline] instead, which caches every stage:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(time.Minute), nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Source:  "players.csv",
//	    Linkage: "average",
//	    Formats: []string{"svg", "png"},
//	})
//
// # Main Packages
//
// [matrix] - Labelled square matrices with validation and distance
// conversion for similarity data.
//
// [cluster] - The agglomerative engine (single, complete and average
// linkage), the merge tree and flat cuts by height or cluster count.
//
// [dendrogram] - Branch geometry for vertical and horizontal trees, hit
// testing, tooltips and the click-to-select widget state.
//
// [heatmap] - Reordered matrix cells with sequential color schemes.
//
// [render] - The composed scene; [render/sink] writes it as SVG, PNG or
// JSON and [render/nodelink] draws the tree through Graphviz.
//
// [result] - The serializable clustering result.
//
// ## Infrastructure
//
// [pipeline] - load → cluster → layout → render, shared by the CLI and the
// HTTP API.
//
// [cache] - Stage caches with file, memory, Redis and MongoDB backends.
//
// [io] and [httputil] - Matrix readers and the caching HTTP fetcher for
// remote sources.
//
// [config] - The TOML configuration file. [manifest] - YAML widget decks.
//
// [registry] - Live widgets behind the HTTP API. [api] - The HTTP API.
//
// [observability] - Pipeline, cache and widget hooks with a Prometheus
// implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/cluster/...    # Specific package
//	go test -run Example ./...   # Examples only
//
// [matrix]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/matrix
// [cluster]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/cluster
// [dendrogram]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/dendrogram
// [heatmap]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/heatmap
// [render]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/render/nodelink
// [result]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/result
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/io
// [httputil]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/config
// [manifest]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/manifest
// [registry]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/registry
// [api]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/dendro/pkg/errors
package pkg
