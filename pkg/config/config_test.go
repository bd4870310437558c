package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Layout.Width != pipeline.DefaultWidth || cfg.Cache.Backend != "file" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[cluster]
linkage = "complete"
similarity = true

[layout]
orientation = "horizontal"
noun = "players"

[render]
formats = ["svg", "png"]
scheme = "blues"

[cache]
backend = "memory"
ttl = "2h"

[server]
addr = "127.0.0.1:9000"
widget_ttl = "15m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cluster.Linkage != "complete" || !cfg.Cluster.Similarity {
		t.Errorf("cluster = %+v", cfg.Cluster)
	}
	if cfg.Layout.Orientation != "horizontal" || cfg.Layout.Noun != "players" {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	// Unset keys keep their defaults.
	if cfg.Layout.Width != pipeline.DefaultWidth {
		t.Errorf("width = %v, want default", cfg.Layout.Width)
	}
	if !slices.Equal(cfg.Render.Formats, []string{"svg", "png"}) || cfg.Render.Scheme != "blues" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "memory" || time.Duration(cfg.Cache.TTL) != 2*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || time.Duration(cfg.Server.WidgetTTL) != 15*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[cluster\nlinkage = 1"},
		{"unknown key", "[cluster]\nmethod = \"ward\""},
		{"bad linkage", "[cluster]\nlinkage = \"ward\""},
		{"bad orientation", "[layout]\norientation = \"diagonal\""},
		{"bad scheme", "[render]\nscheme = \"rainbow\""},
		{"bad format", "[render]\nformats = [\"gif\"]"},
		{"bad backend", "[cache]\nbackend = \"s3\""},
		{"bad duration", "[cache]\nttl = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dendro", "config.toml")
	cfg := Default()
	cfg.Cluster.Linkage = "average"

	if err := Write(cfg, path, false); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := Write(cfg, path, false); err == nil {
		t.Error("Write() over an existing file should fail without force")
	}
	if err := Write(cfg, path, true); err != nil {
		t.Errorf("Write(force) error: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if back.Cluster.Linkage != "average" || back.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("round trip = %+v", back)
	}
}

func TestPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)

	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "dendro", "config.toml") {
		t.Errorf("Path() = %q", p)
	}
	c, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if c != filepath.Join(dir, "dendro") {
		t.Errorf("CacheDir() = %q", c)
	}
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Cluster.Linkage = "single"
	cfg.Render.Legend = true

	opts := pipeline.Options{Linkage: "complete", Width: 300}
	cfg.Apply(&opts)

	if opts.Linkage != "complete" {
		t.Errorf("flag linkage overridden: %q", opts.Linkage)
	}
	if opts.Width != 300 || opts.Height != pipeline.DefaultHeight {
		t.Errorf("dimensions = %vx%v", opts.Width, opts.Height)
	}
	if !opts.Legend || opts.Scheme != "oranges" {
		t.Errorf("render options = %+v", opts)
	}
}

func TestCacheOptions(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg := Default()
	co, err := cfg.CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if co.Dir != filepath.Join("/tmp/xdg", "dendro", "pipeline") {
		t.Errorf("Dir = %q", co.Dir)
	}
	if co.Redis.Addr != "localhost:6379" || co.Mongo.Collection != "cache" {
		t.Errorf("backend options = %+v", co)
	}
}
