package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dendro/pkg/io"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/observability"
)

// Load resolves the dataset named by opts. A stored result yields its
// labels and no matrix rows.
func Load(ctx context.Context, loader io.Loader, opts Options) (matrix.Dataset, error) {
	switch {
	case opts.Result != nil:
		return matrix.Dataset{Labels: opts.Result.Labels}, nil
	case opts.Dataset != nil:
		return *opts.Dataset, nil
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()
	d, err := loader.Load(ctx, opts.Source)
	hooks.OnLoadComplete(ctx, opts.Source, len(d.Labels), time.Since(start), err)
	return d, err
}
