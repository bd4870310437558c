package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dendro/pkg/manifest"
)

// batchCommand creates the batch command, which renders every widget of a
// deck manifest.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <deck.yaml>",
		Short: "Render every widget listed in a deck manifest",
		Long: `Render every widget listed in a deck manifest.

A deck is a YAML file with shared defaults and a list of named widgets,
each with a matrix source (or inline data) and its own options:

  title: Clustering examples
  defaults:
    linkage: average
    formats: [svg, png]
  widgets:
    - name: players
      source: players.csv
      noun: players
    - name: cocktail
      source: cocktail.csv
      linkage: single

Widget NAME is written to <out>/NAME.<format>. Widgets render concurrently;
the first failure cancels the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd.Context(), args[0], outDir, concurrency)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", runtime.NumCPU(), "widgets rendered at once")

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, path, outDir string, concurrency int) error {
	deck, err := manifest.ReadFile(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, os.Stderr, "Rendering widgets", len(deck.Widgets))
	defer spin.Stop()
	if !c.verbose {
		spin.Start()
	}

	written := make([][]string, len(deck.Widgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, w := range deck.Widgets {
		opts := deck.Options(i)
		c.Config.Apply(&opts)
		opts.Logger = c.Logger.With("widget", w.Name)
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return fmt.Errorf("widget %s: %w", w.Name, err)
		}

		g.Go(func() error {
			res, err := runner.Execute(gctx, opts)
			if err != nil {
				return fmt.Errorf("widget %s: %w", w.Name, err)
			}
			paths := make(map[string]string, len(opts.Formats))
			for _, f := range opts.Formats {
				paths[f] = filepath.Join(outDir, w.Name+"."+extension(f))
			}
			files, err := writeArtifacts(res.Artifacts, opts.Formats, paths)
			if err != nil {
				return fmt.Errorf("widget %s: %w", w.Name, err)
			}
			written[i] = files
			spin.Advance()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	spin.Stop()
	prog.done("rendered deck", "widgets", len(deck.Widgets))

	if deck.Title != "" {
		printSuccess("%s: %d widgets", deck.Title, len(deck.Widgets))
	} else {
		printSuccess("Rendered %d widgets", len(deck.Widgets))
	}
	for _, files := range written {
		for _, f := range files {
			printFile(f)
		}
	}
	return nil
}
