// Package config loads escapetime settings from TOML and region presets from
// HCL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

// AppName names the cache directory and default database.
const AppName = "escapetime"

// Config is the top-level configuration file.
type Config struct {
	Fractal FractalConfig `toml:"fractal"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// FractalConfig holds default request parameters.
type FractalConfig struct {
	Mode      string    `toml:"mode"`
	Julia     []float64 `toml:"julia"`
	Preset    string    `toml:"preset"`
	XRange    []float64 `toml:"x_range"`
	YRange    []float64 `toml:"y_range"`
	Points    int       `toml:"points"`
	Threshold int       `toml:"threshold"`
	Criterion string    `toml:"criterion"`
	MaskZero  bool      `toml:"mask_zero"`
	Workers   int       `toml:"workers"`
	Presets   string    `toml:"presets"` // path to an HCL preset file
}

// CacheConfig selects the chart cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	RedisURL        string   `toml:"redis_url"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
	Prefix          string   `toml:"prefix"`
	TTL             Duration `toml:"ttl"`
}

// ServerConfig holds HTTP server settings and request limits.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxPoints      int      `toml:"max_points"`
	MaxThreshold   int      `toml:"max_threshold"`
	MaxCells       int      `toml:"max_cells"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Fractal: FractalConfig{
			Mode:      pipeline.DefaultMode,
			Julia:     append([]float64(nil), pipeline.DefaultJulia...),
			XRange:    append([]float64(nil), pipeline.DefaultXRange...),
			YRange:    append([]float64(nil), pipeline.DefaultYRange...),
			Points:    pipeline.DefaultPoints,
			Threshold: pipeline.DefaultThreshold,
			Criterion: "radius",
		},
		Cache: CacheConfig{
			Backend:         cache.BackendFile,
			RedisURL:        "redis://localhost:6379/0",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "charts",
			TTL:             Duration{cache.TTLChart},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxPoints:      2048,
			MaxThreshold:   100000,
			MaxCells:       2048 * 2048,
			RequestTimeout: Duration{60 * time.Second},
		},
	}
}

// Load reads path over the defaults. Keys that are not part of the schema
// are rejected so that typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fractal defaults and the cache and server sections.
func (c Config) Validate() error {
	opts := c.PipelineOptions()
	opts.SetDefaults()
	if opts.Preset == "" {
		if err := opts.Validate(); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of file, redis, mongo, none; got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Server.MaxPoints < 0 || c.Server.MaxThreshold < 0 || c.Server.MaxCells < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server limits must not be negative")
	}
	if c.Server.RequestTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.request_timeout must not be negative")
	}
	return nil
}

// PipelineOptions returns the fractal section as request options.
func (c Config) PipelineOptions() pipeline.Options {
	f := c.Fractal
	return pipeline.Options{
		Mode:      f.Mode,
		Julia:     append([]float64(nil), f.Julia...),
		Preset:    f.Preset,
		XRange:    append([]float64(nil), f.XRange...),
		YRange:    append([]float64(nil), f.YRange...),
		Points:    f.Points,
		Threshold: f.Threshold,
		Criterion: f.Criterion,
		MaskZero:  f.MaskZero,
		Workers:   f.Workers,
	}
}

// CacheOptions returns the cache section for [cache.Open], filling in the
// default directory for the file backend.
func (c Config) CacheOptions() (cache.Config, error) {
	dir := c.Cache.Dir
	if dir == "" && (c.Cache.Backend == "" || c.Cache.Backend == cache.BackendFile) {
		d, err := DefaultCacheDir()
		if err != nil {
			return cache.Config{}, err
		}
		dir = d
	}
	return cache.Config{
		Backend:         c.Cache.Backend,
		Dir:             dir,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/escapetime or ~/.cache/escapetime.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
