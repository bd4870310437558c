package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

// cutCommand creates the cut command, which flattens the tree into clusters.
func (c *CLI) cutCommand() *cobra.Command {
	var (
		height float64
		k      int
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "cut <matrix|url>",
		Short: "Split the tree into flat clusters",
		Long: `Split the tree into flat clusters.

--height h keeps every subtree merged at distance h or less together;
--k k undoes the last k-1 merges and yields exactly k clusters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byHeight := cmd.Flags().Changed("height")
			if byHeight == cmd.Flags().Changed("k") {
				return errors.New(errors.ErrCodeInvalidInput, "give exactly one of --height and --k")
			}
			opts.Source = args[0]
			return c.runCut(cmd.Context(), opts, byHeight, height, k)
		},
	}

	cmd.Flags().Float64Var(&height, "height", 0, "cut at this merge distance")
	cmd.Flags().IntVar(&k, "k", 0, "number of clusters")
	addClusterFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runCut(ctx context.Context, opts pipeline.Options, byHeight bool, height float64, k int) error {
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, cres, _, err := clusterInput(ctx, runner, opts)
	if err != nil {
		return err
	}

	var clusters [][]int
	if byHeight {
		clusters = cres.Tree.CutHeight(height)
	} else if clusters, err = cres.Tree.CutK(k); err != nil {
		return err
	}

	fmt.Fprintln(stdout, clusterTable(clusters, d.Labels))
	if byHeight {
		printInfo("%d clusters at height %s", len(clusters), strconv.FormatFloat(height, 'g', -1, 64))
	} else {
		printInfo("%d clusters", len(clusters))
	}
	return nil
}

// clusterTable renders flat clusters as a table of sizes and member labels.
func clusterTable(clusters [][]int, labels []string) string {
	rows := make([][]string, len(clusters))
	for i, members := range clusters {
		names := make([]string, len(members))
		for j, m := range members {
			names[j] = labels[m]
		}
		rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(len(members)), strings.Join(names, ", ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cluster", "Size", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col < 2 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		}).
		Render()
}
