// Package cli implements the escapetime command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/escapetime/pkg/buildinfo"
	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/config"
	"github.com/matzehuels/escapetime/pkg/fractal"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

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

	configPath string
}

// New creates a CLI whose logger writes to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "escapetime",
		Short:        "escapetime computes escape-time charts for Mandelbrot and Julia sets",
		Long:         `escapetime samples a region of the complex plane and records, for every point, how many iterations of z -> z^2 + c it takes to diverge. Charts are exported as JSON for external renderers, cached, and served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(c.computeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadConfig reads --config, or returns the defaults when it is unset.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(c.configPath)
}

// loadPresets returns the built-in presets merged with those from path and
// the config's preset file. Later files override earlier names.
func (c *CLI) loadPresets(cfg config.Config, path string) ([]fractal.Preset, error) {
	presets := fractal.Presets
	for _, p := range []string{cfg.Fractal.Presets, path} {
		if p == "" {
			continue
		}
		extra, err := config.LoadPresets(p)
		if err != nil {
			return nil, err
		}
		presets = config.MergePresets(presets, extra)
	}
	return presets, nil
}

// newRunner creates a pipeline runner using the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	return r, nil
}

func openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return cache.Open(ctx, opts)
}
