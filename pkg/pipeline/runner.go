package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dendro/pkg/cache"
	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/io"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/observability"
	"github.com/matzehuels/dendro/pkg/result"
)

// Cache lifetimes per stage. Entries are keyed by content hash, so they
// never go stale; the TTLs only bound cache growth.
const (
	TTLCluster  = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache key types reported to observability hooks.
const (
	keyTypeCluster  = "cluster"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the batch command and the HTTP server all use it.
//
// The Runner is stateless except for the cache, loader and logger: it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Loader io.Loader
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The loader reads local files only; set Loader.Fetcher to allow URLs.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → cluster → layout → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.Logger.Debug("running pipeline", "options", opts.String())

	res, err := r.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Prepare runs the load, cluster and layout stages without rendering, for
// callers that draw the layout themselves (live widgets, the explorer).
func (r *Runner) Prepare(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.prepare(ctx, opts)
}

func (r *Runner) prepare(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, err := Load(ctx, r.Loader, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Dataset = d
	res.Stats.LoadTime = time.Since(loadStart)
	res.Stats.Items = len(d.Labels)

	// Stage 2: Cluster
	clusterStart := time.Now()
	var m *matrix.Matrix
	var cres *cluster.Result
	if opts.Result != nil {
		if err := opts.Result.Validate(); err != nil {
			return nil, fmt.Errorf("cluster: %w", err)
		}
		if cres, err = opts.Result.Cluster(); err != nil {
			return nil, fmt.Errorf("cluster: %w", err)
		}
		res.Cluster = *opts.Result
		res.CacheInfo.ClusterHit = true
	} else {
		if m, err = d.Build(); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if res.MatrixHash, err = cache.HashJSON(d); err != nil {
			return nil, fmt.Errorf("hash matrix: %w", err)
		}
		var hit bool
		cres, hit, err = r.ClusterWithCacheInfo(ctx, m, res.MatrixHash, opts)
		if err != nil {
			return nil, fmt.Errorf("cluster: %w", err)
		}
		res.Cluster = result.FromCluster(cres, d.Labels, opts.ClusterOptions())
		res.CacheInfo.ClusterHit = hit
	}
	res.Tree = cres.Tree
	res.Stats.Merges = len(cres.Merges)
	res.Stats.ClusterTime = time.Since(clusterStart)

	r.Logger.Info("clustered",
		"items", res.Stats.Items,
		"linkage", opts.Linkage,
		"cached", res.CacheInfo.ClusterHit,
		"duration", res.Stats.ClusterTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, m, cres, res.Cluster.Labels, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = layout
	res.Stats.LayoutTime = time.Since(layoutStart)
	res.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"branches", len(layout.Dendrogram.Branches),
		"orientation", opts.Orientation,
		"duration", res.Stats.LayoutTime)

	return res, nil
}

// ClusterWithCacheInfo clusters m with caching and returns cache hit info.
// matrixHash is the content hash of m's dataset; it is computed when empty.
func (r *Runner) ClusterWithCacheInfo(ctx context.Context, m *matrix.Matrix, matrixHash string, opts Options) (*cluster.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCluster(); err != nil {
		return nil, false, err
	}
	if m == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "matrix is empty")
	}
	if matrixHash == "" {
		h, err := cache.HashJSON(m.Dataset())
		if err != nil {
			return nil, false, err
		}
		matrixHash = h
	}
	cacheKey := r.Keyer.ClusterKey(matrixHash, opts.ClusterKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if stored, err := result.Unmarshal(data); err == nil {
				if cres, err := stored.Cluster(); err == nil {
					observability.Cache().OnCacheHit(ctx, keyTypeCluster)
					return cres, true, nil
				}
			}
			// Undecodable entries fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeCluster)
	}

	cres, err := Cluster(ctx, m, opts, opts.Logger)
	if err != nil {
		return nil, false, err
	}

	if data, err := result.Marshal(result.FromCluster(cres, m.Labels(), opts.ClusterOptions())); err == nil {
		r.store(ctx, keyTypeCluster, cacheKey, data, TTLCluster)
	}
	return cres, false, nil
}

// Cluster is a convenience wrapper that calls ClusterWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Cluster(ctx context.Context, m *matrix.Matrix, opts Options) (*cluster.Result, error) {
	cres, _, err := r.ClusterWithCacheInfo(ctx, m, "", opts)
	return cres, err
}

// LayoutWithCacheInfo computes the dendrogram and heatmap with caching and
// returns cache hit info. Only the dendrogram geometry is cached; the grid
// is rebuilt from m, which may be nil.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *matrix.Matrix, cres *cluster.Result, labels []string, opts Options) (*Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	resultHash, err := cache.HashJSON(struct {
		Labels []string        `json:"labels"`
		Merges []cluster.Merge `json:"merges"`
	}{labels, cres.Merges})
	if err != nil {
		return nil, false, fmt.Errorf("hash result: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(resultHash, opts.LayoutKeyOpts())

	var dl *dendrogram.Layout
	hit := false
	if cached, ok, err := cache.GetJSON[*dendrogram.Layout](ctx, r.Cache, cacheKey); err == nil && ok && cached != nil {
		dl, hit = cached, true
		observability.Cache().OnCacheHit(ctx, keyTypeLayout)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		if dl, err = ComputeDendrogram(ctx, cres, labels, opts); err != nil {
			return nil, false, err
		}
		if data, err := json.Marshal(dl); err == nil {
			r.store(ctx, keyTypeLayout, cacheKey, data, TTLLayout)
		}
	}

	grid, err := ComputeHeatmap(m, cres, opts)
	if err != nil {
		return nil, false, err
	}

	matrixHash := ""
	if m != nil {
		if matrixHash, err = cache.HashJSON(m.Dataset()); err != nil {
			return nil, false, err
		}
	}
	layoutHash, err := cache.HashJSON(struct {
		Layout string `json:"layout"`
		Matrix string `json:"matrix"`
	}{cacheKey, matrixHash})
	if err != nil {
		return nil, false, err
	}

	return &Layout{
		Dendrogram: dl,
		Tree:       cres.Tree,
		Labels:     labels,
		Grid:       grid,
		Hash:       layoutHash,
	}, hit, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, m *matrix.Matrix, cres *cluster.Result, labels []string, opts Options) (*Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, m, cres, labels, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The hit is reported only when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	withGrid := l.Grid != nil

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(l.Hash, opts.ArtifactKeyOpts(format, withGrid))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	rendered, err := Render(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(l.Hash, opts.ArtifactKeyOpts(format, withGrid))
		r.store(ctx, keyTypeArtifact, cacheKey, data, TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key_type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
