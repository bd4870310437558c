package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/dendro/pkg/cache"
	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/pipeline"
	"github.com/matzehuels/dendro/pkg/result"
)

// resolveInput points opts at input. A local clustering result written by
// `dendro cluster` is rendered as stored; anything else is a matrix source.
func resolveInput(input string, opts *pipeline.Options) error {
	if errors.IsRemoteSource(input) {
		opts.Source = input
		return nil
	}
	data, err := os.ReadFile(input)
	if err != nil || !result.IsResult(data) {
		// Missing files are reported by the load stage.
		opts.Source = input
		return nil
	}
	r, err := result.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("read result %s: %w", input, err)
	}
	opts.Result = &r
	return nil
}

// clusterInput loads opts.Source and clusters it through the runner cache,
// keyed exactly like a full pipeline run.
func clusterInput(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (matrix.Dataset, *cluster.Result, bool, error) {
	if err := opts.ValidateForCluster(); err != nil {
		return matrix.Dataset{}, nil, false, err
	}
	d, err := pipeline.Load(ctx, runner.Loader, opts)
	if err != nil {
		return d, nil, false, err
	}
	m, err := d.Build()
	if err != nil {
		return d, nil, false, fmt.Errorf("%s: %w", opts.Source, err)
	}
	hash, err := cache.HashJSON(d)
	if err != nil {
		return d, nil, false, err
	}
	cres, hit, err := runner.ClusterWithCacheInfo(ctx, m, hash, opts)
	return d, cres, hit, err
}

// nopCloser lets os.Stdout stand in for an output file.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput creates the file at path, or returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// extension returns the file extension for format. Scene JSON gets its own
// suffix so it never replaces a JSON matrix or result of the same name.
func extension(format string) string {
	if format == pipeline.FormatJSON {
		return "scene.json"
	}
	return format
}

// basePath derives the output path without extension. An empty output
// strips the extension from the input name (the last URL path element for
// remote inputs); an output ending in a known format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		name := input
		if errors.IsRemoteSource(input) {
			if u, err := url.Parse(input); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
				name = path.Base(u.Path)
			} else {
				name = appName
			}
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	for _, f := range pipeline.FormatNames() {
		if strings.HasSuffix(output, "."+extension(f)) {
			return strings.TrimSuffix(output, "."+extension(f))
		}
	}
	return output
}

// artifactPaths maps each format to its output file. A single format with
// an explicit output is written to exactly that path.
func artifactPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

// writeArtifacts writes each requested format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, paths map[string]string) ([]string, error) {
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		p := paths[f]
		out, err := openOutput(p)
		if err != nil {
			return written, err
		}
		_, err = out.Write(artifacts[f])
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
