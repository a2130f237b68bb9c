package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/fractal"
	chartio "github.com/matzehuels/escapetime/pkg/io"
	"github.com/matzehuels/escapetime/pkg/observability"
)

// Runner executes chart requests with caching.
//
// The Runner holds no per-request state, so one Runner can serve many
// goroutines with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// [cache.DefaultKeyer] and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.TTLChart}
}

// Execute validates opts, builds the grid, and returns the chart from cache
// or by computing it. On a cache hit the row hook is replayed from the cached
// counts so streaming callers see the same rows either way.
//
// Cancellation of ctx aborts the computation; no chart is returned or stored.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.ResolvePreset(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	region, _ := opts.Region()
	res := &Result{Params: opts.Params(), Key: r.Keyer.ChartKey(opts.KeyOpts())}

	// Stage 1: Grid
	gridStart := time.Now()
	g, err := fractal.BuildGrid(region, opts.Points)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	res.Grid = g
	res.Stats.GridTime = time.Since(gridStart)
	res.Stats.Rows, res.Stats.Cols = g.Rows(), g.Cols()

	logger.Debug("built grid", "region", region, "rows", g.Rows(), "cols", g.Cols())

	if !opts.Refresh {
		if chart, ok := r.lookup(ctx, res.Key, g, logger); ok {
			res.Chart = chart
			res.CacheHit = true
			res.Stats.Interior = chart.Interior()
			res.Stats.Escaped = g.Len() - res.Stats.Interior
			if opts.OnRow != nil {
				for i := range chart.Rows() {
					opts.OnRow(i, chart.Row(i))
				}
			}
			logger.Info("chart from cache", "key", res.Key)
			return res, nil
		}
	}

	// Stage 2: Compute
	engineOpts := []fractal.Option{fractal.WithWorkers(opts.Workers)}
	if opts.OnRow != nil {
		engineOpts = append(engineOpts, fractal.WithRowHook(opts.OnRow))
	}
	engine, err := fractal.NewEngine(res.Params, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	res.Params = engine.Params()

	observability.Pipeline().OnComputeStart(ctx, opts.Mode, g.Rows(), g.Cols())
	computeStart := time.Now()
	chart, err := engine.Compute(ctx, g)
	res.Stats.ComputeTime = time.Since(computeStart)
	interior := 0
	if chart != nil {
		interior = chart.Interior()
	}
	observability.Pipeline().OnComputeComplete(ctx, opts.Mode, interior, res.Stats.ComputeTime, err)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	res.Chart = chart
	res.Stats.Interior = interior
	res.Stats.Escaped = g.Len() - interior

	logger.Info("computed chart",
		"mode", opts.Mode,
		"rows", g.Rows(),
		"cols", g.Cols(),
		"interior", interior,
		"duration", res.Stats.ComputeTime)

	r.store(ctx, res, logger)
	return res, nil
}

// lookup returns a cached chart for key if one exists and matches g's shape.
func (r *Runner) lookup(ctx context.Context, key string, g *fractal.Grid, logger *log.Logger) (*fractal.Chart, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	doc, err := chartio.UnmarshalChart(data)
	if err != nil {
		logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}
	chart, err := doc.Chart()
	if err != nil || chart.Rows() != g.Rows() || chart.Cols() != g.Cols() {
		return nil, false
	}
	return chart, true
}

// store writes the result to the cache. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, res *Result, logger *log.Logger) {
	data, err := chartio.MarshalChart(res.Document())
	if err != nil {
		logger.Warn("encode chart for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, res.Key, data, r.TTL); err != nil {
		logger.Warn("cache write failed", "error", err)
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
