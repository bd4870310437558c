package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

// Flags left at their zero value are filled from the config file, so none
// of them carries a default of its own.

func addClusterFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Linkage, "linkage", "l", "",
		fmt.Sprintf("linkage policy: %s", strings.Join(cluster.LinkageNames(), ", ")))
	cmd.Flags().BoolVar(&opts.Similarity, "similarity", false, "treat values as similarities (larger is closer)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute instead of reading the cache")
}

func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "dendrogram width (default 800)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "dendrogram height (default 600)")
	cmd.Flags().StringVar(&opts.Orientation, "orientation", "", "vertical (default) or horizontal")
	cmd.Flags().StringVar(&opts.Noun, "noun", "", "name of the clustered items in tooltips (default items)")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "unit appended to distances in tooltips")
	cmd.Flags().IntVar(&opts.Precision, "precision", 0, "decimals shown for distances")
}

// addRenderFlags binds the render flags. formats receives the raw --format
// value for parseFormats.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options, formats *string) {
	cmd.Flags().StringVarP(formats, "format", "f", "",
		fmt.Sprintf("output format(s), comma-separated: %s (default svg)", strings.Join(pipeline.FormatNames(), ", ")))
	cmd.Flags().StringVar(&opts.Scheme, "scheme", "",
		fmt.Sprintf("heatmap color scheme: %s", strings.Join(heatmap.Schemes(), ", ")))
	cmd.Flags().Float64Var(&opts.ScaleMax, "scale-max", 0, "value mapped to the darkest color (default data maximum)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "figure title")
	cmd.Flags().BoolVar(&opts.Legend, "legend", false, "draw a color legend next to the heatmap")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "embed click-to-highlight script in SVG output")
	cmd.Flags().IntSliceVar(&opts.Selected, "select", nil, "pre-select the cluster with these original indices")
}
