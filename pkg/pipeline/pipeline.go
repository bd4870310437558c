// Package pipeline provides the clustering pipeline shared by the dendro
// CLI and HTTP server.
//
// This package implements the complete load → cluster → layout → render
// pipeline. Every entry point goes through it, so a matrix rendered by
// `dendro render`, `dendro batch` and `POST /v1/render` produces the same
// bytes.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read a labelled matrix from a file, a URL or the request body
//  2. Cluster: build the merge tree with the configured linkage
//  3. Layout: compute dendrogram geometry and the reordered heatmap grid
//  4. Render: compose a scene and encode it (SVG, PNG, JSON, DOT)
//
// Cluster results, layouts and artifacts are cached by content hash, so a
// changed matrix invalidates every stage after it.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "clubs.csv",
//	    Linkage: "average",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := res.Artifacts["svg"]
//
// Run individual stages:
//
//	cres, err := runner.Cluster(ctx, m, opts)
//	layout, err := runner.Layout(ctx, cres, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dendro/pkg/cache"
	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/render"
	"github.com/matzehuels/dendro/pkg/result"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and Batch
// =============================================================================

const (
	// DefaultWidth is the default dendrogram width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default dendrogram height in pixels.
	DefaultHeight = 600.0

	// DefaultOrientation is the default dendrogram orientation.
	DefaultOrientation = dendrogram.Vertical

	// DefaultScheme is the default heatmap color scheme.
	DefaultScheme = heatmap.DefaultScheme

	// DefaultNoun names the clustered items in tooltips.
	DefaultNoun = dendrogram.DefaultNoun
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"

	// FormatNodelinkSVG and FormatNodelinkPNG draw the tree as a Graphviz
	// node-link diagram instead of a dendrogram.
	FormatNodelinkSVG = "nodelink.svg"
	FormatNodelinkPNG = "nodelink.png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:         true,
	FormatPNG:         true,
	FormatJSON:        true,
	FormatDOT:         true,
	FormatNodelinkSVG: true,
	FormatNodelinkPNG: true,
}

// FormatNames returns the supported formats in a stable order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the clustering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Source, Dataset and Result is used, in
	// the order Result, Dataset, Source.
	Source  string          `json:"source,omitempty"`
	Dataset *matrix.Dataset `json:"dataset,omitempty"`
	// Result renders a stored clustering run. There is no matrix, so no
	// heatmap is drawn.
	Result *result.Result `json:"result,omitempty"`

	// Cluster options
	Linkage    string `json:"linkage"`
	Similarity bool   `json:"similarity,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`

	// Layout options
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	Noun        string  `json:"noun,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Precision   int     `json:"precision,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scheme      string   `json:"scheme,omitempty"`
	ScaleMax    float64  `json:"scale_max,omitempty"`
	Title       string   `json:"title,omitempty"`
	Legend      bool     `json:"legend,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	// Selected pre-selects original indices, as after a branch click.
	Selected []int `json:"selected,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded matrix. It is empty when rendering a stored
	// result.
	Dataset matrix.Dataset

	// MatrixHash is the content hash of Dataset.
	MatrixHash string

	// Cluster is the serializable clustering run.
	Cluster result.Result

	// Tree is the merge tree of Cluster.
	Tree *cluster.Tree

	// Layout holds the dendrogram geometry and Grid the reordered heatmap
	// (nil without a matrix).
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items       int
	Merges      int
	LoadTime    time.Duration
	ClusterTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ClusterHit bool // Whether the clustering came from cache
	LayoutHit  bool // Whether the dendrogram layout came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLinkage checks that a linkage name is valid.
func ValidateLinkage(linkage string) error {
	_, err := cluster.ParseLinkage(linkage)
	return err
}

// ValidateOrientation checks that an orientation name is valid.
func ValidateOrientation(orientation string) error {
	_, err := dendrogram.ParseOrientation(orientation)
	return err
}

// ValidateScheme checks that a color scheme name is valid.
func ValidateScheme(scheme string) error {
	_, err := heatmap.ParseScheme(scheme)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForCluster(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a matrix source is given.
func (o *Options) ValidateForLoad() error {
	if o.Result == nil && o.Dataset == nil && o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source, dataset or result is required")
	}
	o.setLogger()
	return nil
}

// ValidateForCluster checks the linkage. A stored result supplies its own
// linkage when none is set.
func (o *Options) ValidateForCluster() error {
	if o.Linkage == "" && o.Result != nil {
		o.Linkage = o.Result.Linkage
		o.Similarity = o.Result.Similarity
	}
	o.setLogger()
	return ValidateLinkage(o.Linkage)
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Orientation == "" {
		o.Orientation = string(DefaultOrientation)
	}
	if o.Noun == "" {
		o.Noun = DefaultNoun
	}
	if o.Precision <= 0 {
		o.Precision = dendrogram.DefaultPrecision
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dimensions must be positive, got %gx%g", o.Width, o.Height)
	}
	if err := ValidateOrientation(o.Orientation); err != nil {
		return err
	}
	if err := ValidateScheme(o.schemeOrDefault()); err != nil {
		return err
	}
	if o.ScaleMax < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale max must be non-negative, got %g", o.ScaleMax)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scheme == "" {
		o.Scheme = string(DefaultScheme)
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateScheme(o.Scheme)
}

func (o *Options) schemeOrDefault() string {
	if o.Scheme == "" {
		return string(DefaultScheme)
	}
	return o.Scheme
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ClusterOptions returns the engine options. Call after validation.
func (o *Options) ClusterOptions() cluster.Options {
	l, _ := cluster.ParseLinkage(o.Linkage)
	return cluster.Options{Linkage: l, Similarity: o.Similarity}
}

// DendrogramOptions returns the layout options for a tree with the given
// leaf labels.
func (o *Options) DendrogramOptions(labels []string) dendrogram.Options {
	orient, _ := dendrogram.ParseOrientation(o.Orientation)
	return dendrogram.Options{
		Width:       o.Width,
		Height:      o.Height,
		Orientation: orient,
		Labels:      labels,
		Noun:        o.Noun,
		Unit:        o.Unit,
		Precision:   o.Precision,
		Similarity:  o.Similarity,
	}
}

// HeatmapOptions returns the grid options. The grid spans the leaf axis of
// the dendrogram so that each leaf sits beside its row or column.
func (o *Options) HeatmapOptions() heatmap.Options {
	side := o.Width
	if o.Orientation == string(dendrogram.Horizontal) {
		side = o.Height
	}
	return heatmap.Options{
		Width:      side,
		Height:     side,
		Scheme:     heatmap.Scheme(o.schemeOrDefault()),
		ScaleMax:   o.ScaleMax,
		Similarity: o.Similarity,
		Unit:       o.Unit,
	}
}

// SceneOptions returns the composition options.
func (o *Options) SceneOptions() render.Options {
	return render.Options{Title: o.Title, Legend: o.Legend}
}

// ClusterKeyOpts returns cache key options for clustering.
func (o *Options) ClusterKeyOpts() cache.ClusterKeyOpts {
	return cache.ClusterKeyOpts{
		Linkage:    o.Linkage,
		Similarity: o.Similarity,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		Orientation: o.Orientation,
		Noun:        o.Noun,
		Unit:        o.Unit,
		Precision:   o.Precision,
		Similarity:  o.Similarity,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, heatmap bool) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Scheme:      o.Scheme,
		ScaleMax:    o.ScaleMax,
		Title:       o.Title,
		Heatmap:     heatmap,
		Legend:      o.Legend,
		Interactive: o.Interactive,
		Selected:    o.Selected,
	}
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	src := o.Source
	switch {
	case o.Result != nil:
		src = "<result>"
	case o.Dataset != nil:
		src = fmt.Sprintf("<dataset of %d>", len(o.Dataset.Labels))
	}
	return fmt.Sprintf("%s linkage=%s orientation=%s formats=%v", src, o.Linkage, o.Orientation, o.Formats)
}
