package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/observability"
)

// symmetryTolerance is the largest |m[i][j] - m[j][i]| accepted without a
// warning.
const symmetryTolerance = 1e-9

// Cluster runs the engine on m. Inputs the engine handles poorly (large or
// asymmetric matrices) are logged as warnings but still clustered.
func Cluster(ctx context.Context, m *matrix.Matrix, opts Options, logger *log.Logger) (*cluster.Result, error) {
	copts := opts.ClusterOptions()
	n := 0
	if m != nil {
		n = m.Size()
	}
	if n > cluster.ScalableLimit {
		logger.Warn("large matrix, clustering is cubic in the item count", "items", n, "limit", cluster.ScalableLimit)
	}
	if m != nil && !m.IsSymmetric(symmetryTolerance) {
		logger.Warn("matrix is not symmetric, results depend on which triangle is read")
	}

	hooks := observability.Pipeline()
	hooks.OnClusterStart(ctx, copts.Linkage.String(), n)
	start := time.Now()
	res, err := cluster.RunContext(ctx, m, copts)
	hooks.OnClusterComplete(ctx, copts.Linkage.String(), n, time.Since(start), err)
	return res, err
}
