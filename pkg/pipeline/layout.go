package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/observability"
)

// Layout is everything the render stage draws from.
type Layout struct {
	// Dendrogram is the tree geometry.
	Dendrogram *dendrogram.Layout
	// Tree and Labels feed the node-link formats.
	Tree   *cluster.Tree
	Labels []string
	// Grid is the reordered heatmap, nil when there is no matrix.
	Grid *heatmap.Grid
	// Hash identifies the drawable content for artifact cache keys.
	Hash string
}

// ComputeDendrogram lays out the tree of res.
func ComputeDendrogram(ctx context.Context, res *cluster.Result, labels []string, opts Options) (*dendrogram.Layout, error) {
	dopts := opts.DendrogramOptions(labels)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(dopts.Orientation), res.Tree.Leaves())
	start := time.Now()
	l, err := dendrogram.Compute(res.Tree, res.Order, dopts)
	hooks.OnLayoutComplete(ctx, string(dopts.Orientation), time.Since(start), err)
	return l, err
}

// ComputeHeatmap reorders m by the leaf order of res. A nil m yields a nil
// grid.
func ComputeHeatmap(m *matrix.Matrix, res *cluster.Result, opts Options) (*heatmap.Grid, error) {
	if m == nil {
		return nil, nil
	}
	return heatmap.New(m, res.Order, opts.HeatmapOptions())
}

// selectionState returns the frame state for a preset selection. The
// selected node is the branch whose members equal sel, if any.
func selectionState(l *dendrogram.Layout, sel []int) dendrogram.State {
	state := dendrogram.NewState()
	if len(sel) == 0 {
		return state
	}
	state.Selected = append([]int(nil), sel...)
	want := make(map[int]bool, len(sel))
	for _, i := range sel {
		want[i] = true
	}
	for _, b := range l.Branches {
		if len(b.Members) != len(want) {
			continue
		}
		match := true
		for _, i := range b.Members {
			if !want[i] {
				match = false
				break
			}
		}
		if match {
			state.Node = b.Node
			break
		}
	}
	return state
}
