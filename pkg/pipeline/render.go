package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/observability"
	"github.com/matzehuels/dendro/pkg/render"
	"github.com/matzehuels/dendro/pkg/render/nodelink"
	"github.com/matzehuels/dendro/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. Formats are
// encoded concurrently from one composed scene.
func Render(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	n := l.Dendrogram.Order()
	for _, i := range opts.Selected {
		if i < 0 || i >= len(n) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "selected index %d out of range [0, %d)", i, len(n))
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	scene := Scene(l, opts)

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := renderFormat(scene, l, opts, format)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Scene composes the frame every dendrogram format is drawn from.
func Scene(l *Layout, opts Options) *render.Scene {
	state := selectionState(l.Dendrogram, opts.Selected)
	return render.Compose(l.Dendrogram, state, l.Grid, opts.SceneOptions())
}

func renderFormat(scene *render.Scene, l *Layout, opts Options, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Interactive {
			svgOpts = append(svgOpts, sink.WithInteraction())
		}
		return sink.RenderSVG(scene, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(scene)
	case FormatJSON:
		return sink.RenderJSON(scene)
	case FormatDOT:
		return []byte(ToDOT(l, opts)), nil
	case FormatNodelinkSVG:
		return nodelink.RenderSVG(ToDOT(l, opts))
	case FormatNodelinkPNG:
		return nodelink.RenderPNG(ToDOT(l, opts))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}

// ToDOT converts the tree of l to Graphviz source.
func ToDOT(l *Layout, opts Options) string {
	return nodelink.ToDOT(l.Tree, nodelink.Options{
		Labels:      l.Labels,
		Orientation: l.Dendrogram.Orientation,
		Detailed:    true,
		Precision:   opts.Precision,
		Selected:    opts.Selected,
	})
}
