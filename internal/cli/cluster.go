package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/pipeline"
	"github.com/matzehuels/dendro/pkg/result"
)

// clusterCommand creates the cluster command.
func (c *CLI) clusterCommand() *cobra.Command {
	var (
		output string
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "cluster <matrix.csv|matrix.json|url>",
		Short: "Cluster a labelled matrix and write the merge tree",
		Long: `Cluster a labelled matrix and write the merge tree as JSON.

The input is a square distance matrix (or a similarity matrix with
--similarity) as CSV with a header row of labels, or as JSON
{"labels": [...], "matrix": [[...]]}. The output records the leaf order,
the recursive tree and the merge history, and can be rendered later with
'dendro render result.json'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			return c.runCluster(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	addClusterFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runCluster(ctx context.Context, opts pipeline.Options, output string) error {
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	d, cres, hit, err := clusterInput(ctx, runner, opts)
	if err != nil {
		return err
	}
	prog.done("clustered", "items", len(d.Labels), "linkage", opts.Linkage, "cached", hit)

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := result.Write(result.FromCluster(cres, d.Labels, opts.ClusterOptions()), out); err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	printSuccess("Clustering complete")
	printFile(output)
	printStats(len(d.Labels), len(cres.Merges), hit)
	printNewline()
	printNextStep("Render", "dendro render "+output)
	return nil
}
