// Package cli implements the dendro command-line interface.
//
// Commands cluster labelled matrices, render dendrogram and heatmap
// figures, cut trees into flat clusters, explore a tree in the terminal,
// render widget decks in batch and serve the HTTP API. The CLI is built on
// cobra and logs through charmbracelet/log.
//
// # Configuration
//
// Every command reads $XDG_CONFIG_HOME/dendro/config.toml (or --config)
// before running. Flags override the file; the file overrides built-in
// defaults.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --log-format for structured output. The logger is attached to the command
// context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/buildinfo"
	"github.com/matzehuels/dendro/pkg/cache"
	"github.com/matzehuels/dendro/pkg/config"
	"github.com/matzehuels/dendro/pkg/httputil"
	pkgio "github.com/matzehuels/dendro/pkg/io"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

const appName = "dendro"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config config.Config

	configPath string
	logFormat  string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Dendro clusters matrices and draws interactive dendrograms",
		Long: `Dendro runs agglomerative hierarchical clustering over a labelled distance
or similarity matrix and draws the result as a dendrogram next to the
reordered heatmap. Clicking a branch highlights its cluster in the heatmap.`,
		Version:       buildinfo.Current(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := setLogFormat(c.Logger, c.logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log output format: text, json or logfmt")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dendro/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the pipeline and HTTP caches")

	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cutCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache and a
// fetcher for remote sources.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, loggerFromContext(ctx))
	runner.TTL = time.Duration(c.Config.Cache.TTL)
	runner.Loader = pkgio.Loader{Fetcher: c.newFetcher()}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.Config.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg)
}

// newFetcher returns a fetcher whose responses are kept in the HTTP cache
// directory for the configured http_ttl.
func (c *CLI) newFetcher() *httputil.Fetcher {
	if c.noCache {
		return httputil.NewFetcher(nil)
	}
	dir, err := httpCacheDir()
	if err != nil {
		return httputil.NewFetcher(nil)
	}
	hc, err := httputil.NewCache(dir, time.Duration(c.Config.Cache.HTTPTTL))
	if err != nil {
		c.Logger.Warn("http cache disabled", "error", err)
		return httputil.NewFetcher(nil)
	}
	return httputil.NewFetcher(hc)
}

// =============================================================================
// Paths
// =============================================================================

// httpCacheDir returns the directory for fetched remote matrices
// (~/.cache/dendro/http).
func httpCacheDir() (string, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "http"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice. An
// empty string leaves the choice to the config file.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
