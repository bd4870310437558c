package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dendro/pkg/cache"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

const appName = "dendro"

// Duration is a time.Duration written as a Go duration string ("90s", "2h").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the whole configuration file.
type Config struct {
	Cluster ClusterConfig `toml:"cluster"`
	Layout  LayoutConfig  `toml:"layout"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// ClusterConfig holds clustering defaults.
type ClusterConfig struct {
	// Linkage has no built-in default; commands fail without one.
	Linkage    string `toml:"linkage,omitempty"`
	Similarity bool   `toml:"similarity"`
}

// LayoutConfig holds dendrogram layout defaults.
type LayoutConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	Orientation string  `toml:"orientation"`
	Noun        string  `toml:"noun"`
	Unit        string  `toml:"unit,omitempty"`
	Precision   int     `toml:"precision"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats     []string `toml:"formats"`
	Scheme      string   `toml:"scheme"`
	ScaleMax    float64  `toml:"scale_max"`
	Legend      bool     `toml:"legend"`
	Interactive bool     `toml:"interactive"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir,omitempty"`
	TTL     Duration `toml:"ttl"`
	// HTTPTTL bounds how long fetched remote matrices are reused.
	HTTPTTL Duration    `toml:"http_ttl"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `dendro serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	WidgetTTL  Duration `toml:"widget_ttl"`
	MaxWidgets int      `toml:"max_widgets"`
	// MaxBody bounds request bodies in bytes.
	MaxBody int64 `toml:"max_body"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Width:       pipeline.DefaultWidth,
			Height:      pipeline.DefaultHeight,
			Orientation: string(pipeline.DefaultOrientation),
			Noun:        pipeline.DefaultNoun,
			Precision:   3,
		},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Scheme:  string(pipeline.DefaultScheme),
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration(7 * 24 * time.Hour),
			HTTPTTL: Duration(24 * time.Hour),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "dendro:"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: appName, Collection: "cache"},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			WidgetTTL:  Duration(time.Hour),
			MaxWidgets: 1000,
			MaxBody:    16 << 20,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default cache directory ($XDG_CACHE_HOME/dendro).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads path over the defaults. An empty path selects [Path]; a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks the values a file may get wrong.
func (c Config) Validate() error {
	if c.Cluster.Linkage != "" {
		if err := pipeline.ValidateLinkage(c.Cluster.Linkage); err != nil {
			return err
		}
	}
	if err := pipeline.ValidateOrientation(c.Layout.Orientation); err != nil {
		return err
	}
	if err := pipeline.ValidateScheme(c.Render.Scheme); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if !slices.Contains(cache.Backends(), c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (one of %v)", c.Cache.Backend, cache.Backends())
	}
	if c.Layout.Width < 0 || c.Layout.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout dimensions must be positive")
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores c at path, creating parent directories. An existing file is
// only replaced when force is set.
func Write(c Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s already exists", path)
		}
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Apply fills the zero fields of opts from c.
func (c Config) Apply(opts *pipeline.Options) {
	if opts.Linkage == "" {
		opts.Linkage = c.Cluster.Linkage
	}
	if !opts.Similarity {
		opts.Similarity = c.Cluster.Similarity
	}
	if opts.Width == 0 {
		opts.Width = c.Layout.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Layout.Height
	}
	if opts.Orientation == "" {
		opts.Orientation = c.Layout.Orientation
	}
	if opts.Noun == "" {
		opts.Noun = c.Layout.Noun
	}
	if opts.Unit == "" {
		opts.Unit = c.Layout.Unit
	}
	if opts.Precision == 0 {
		opts.Precision = c.Layout.Precision
	}
	if len(opts.Formats) == 0 {
		opts.Formats = slices.Clone(c.Render.Formats)
	}
	if opts.Scheme == "" {
		opts.Scheme = c.Render.Scheme
	}
	if opts.ScaleMax == 0 {
		opts.ScaleMax = c.Render.ScaleMax
	}
	if !opts.Legend {
		opts.Legend = c.Render.Legend
	}
	if !opts.Interactive {
		opts.Interactive = c.Render.Interactive
	}
}

// CacheOptions converts the cache section for [cache.Open]. An empty
// directory selects [CacheDir].
func (c Config) CacheOptions() (cache.Config, error) {
	dir := c.Cache.Dir
	if dir == "" && (c.Cache.Backend == cache.BackendFile || c.Cache.Backend == "") {
		d, err := CacheDir()
		if err != nil {
			return cache.Config{}, err
		}
		dir = filepath.Join(d, "pipeline")
	}
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}, nil
}
