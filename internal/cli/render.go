package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/pipeline"
)

// renderCommand creates the render command, which runs the full pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render <matrix|result.json|url>",
		Short: "Render a dendrogram with its reordered heatmap",
		Long: `Render a dendrogram with its reordered heatmap.

The input is a matrix (clustered on the fly) or a result written by
'dendro cluster', which is drawn without a heatmap. Each requested format is
written next to the input, or to -o: an exact file for a single format,
a base path for several.

Formats:
  svg           dendrogram and heatmap (--interactive adds click-to-highlight)
  png           the same figure rasterized
  json          the composed scene as draw commands
  dot           the tree in Graphviz DOT
  nodelink.svg  the tree drawn by Graphviz
  nodelink.png  the same, rasterized`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := resolveInput(args[0], &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	addClusterFlags(cmd, &opts)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts, &formatsStr)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")), 0)
	defer spin.Stop()
	if !c.verbose {
		spin.Start()
	}

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	written, err := writeArtifacts(res.Artifacts, opts.Formats, artifactPaths(opts.Formats, output, input))
	if err != nil {
		return err
	}
	spin.Stop()

	printSuccess("Render complete")
	for _, p := range written {
		printFile(p)
	}
	printStats(res.Stats.Items, res.Stats.Merges, res.CacheInfo.ClusterHit && res.CacheInfo.RenderHit)
	return nil
}
