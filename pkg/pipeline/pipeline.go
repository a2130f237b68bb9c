// Package pipeline runs escape-time computations end to end.
//
// The pipeline is shared by the CLI and the HTTP server so that both apply
// the same defaults, validation and caching. A run has two stages:
//
//  1. Grid: sample the region into a row-major point grid
//  2. Compute: iterate every point and collect the escape counts
//
// Computed charts are stored in a [cache.Cache] keyed by every input that
// affects the counts, so repeated requests are served without iterating.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{Mode: "julia", Points: 800}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Chart.Rows(), result.Stats.Interior)
package pipeline

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
	chartio "github.com/matzehuels/escapetime/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode is the fractal family computed when none is given.
	DefaultMode = string(fractal.ModeMandelbrot)

	// DefaultPoints is the default horizontal sample count.
	DefaultPoints = 1000

	// DefaultThreshold is the default per-point iteration budget.
	DefaultThreshold = 1000
)

var (
	// DefaultJulia is the julia constant used when julia mode is requested
	// without one.
	DefaultJulia = []float64{-0.79, 0.15}

	// DefaultXRange and DefaultYRange cover the whole Mandelbrot set.
	DefaultXRange = []float64{fractal.FullView.XMin, fractal.FullView.XMax}
	DefaultYRange = []float64{fractal.FullView.YMin, fractal.FullView.YMax}
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options describes one chart request. It is the JSON body of the API.
type Options struct {
	Mode      string    `json:"mode,omitempty"`
	Julia     []float64 `json:"julia,omitempty"`   // [re, im]
	Preset    string    `json:"preset,omitempty"`  // replaces x_range and y_range
	XRange    []float64 `json:"x_range,omitempty"` // [min, max]
	YRange    []float64 `json:"y_range,omitempty"` // [min, max]
	Points    int       `json:"points,omitempty"`
	Threshold int       `json:"threshold,omitempty"`
	Criterion string    `json:"criterion,omitempty"`
	MaskZero  bool      `json:"mask_zero,omitempty"`
	Refresh   bool      `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Workers int              `json:"-"`
	OnRow   fractal.RowFunc  `json:"-"`
	Logger  *log.Logger      `json:"-"`
	Presets []fractal.Preset `json:"-"` // lookup table for Preset; nil means fractal.Presets
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Params   fractal.Params
	Grid     *fractal.Grid
	Chart    *fractal.Chart
	Key      string
	Stats    Stats
	CacheHit bool
}

// Stats contains execution statistics.
type Stats struct {
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	Interior    int           `json:"interior"`
	Escaped     int           `json:"escaped"`
	GridTime    time.Duration `json:"grid_ns"`
	ComputeTime time.Duration `json:"compute_ns"`
}

// Document packages the result for export.
func (r *Result) Document() chartio.Document {
	return chartio.NewDocument(r.Params, r.Grid, r.Chart)
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. Julia is defaulted only in julia mode.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Mode == string(fractal.ModeJulia) && len(o.Julia) == 0 {
		o.Julia = append([]float64(nil), DefaultJulia...)
	}
	if o.Preset == "" {
		if len(o.XRange) == 0 {
			o.XRange = append([]float64(nil), DefaultXRange...)
		}
		if len(o.YRange) == 0 {
			o.YRange = append([]float64(nil), DefaultYRange...)
		}
	}
	if o.Points == 0 {
		o.Points = DefaultPoints
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Criterion == "" {
		o.Criterion = string(fractal.DefaultCriterion)
	}
}

// ResolvePreset replaces the ranges with the named preset's region.
// It is a no-op when Preset is empty.
func (o *Options) ResolvePreset() error {
	if o.Preset == "" {
		return nil
	}
	if err := errors.ValidatePresetName(o.Preset); err != nil {
		return err
	}
	presets := o.Presets
	if presets == nil {
		presets = fractal.Presets
	}
	p, err := fractal.FindPreset(presets, o.Preset)
	if err != nil {
		return err
	}
	o.XRange = []float64{p.Region.XMin, p.Region.XMax}
	o.YRange = []float64{p.Region.YMin, p.Region.YMax}
	return nil
}

// Validate checks every field. It expects SetDefaults and ResolvePreset to
// have run.
func (o *Options) Validate() error {
	if _, err := fractal.ParseMode(o.Mode); err != nil {
		return err
	}
	if _, err := o.Region(); err != nil {
		return err
	}
	if err := errors.ValidatePoints(o.Points); err != nil {
		return err
	}
	if err := errors.ValidateThreshold(o.Threshold); err != nil {
		return err
	}
	if _, err := fractal.ParseCriterion(o.Criterion); err != nil {
		return err
	}
	if o.Mode == string(fractal.ModeJulia) {
		if len(o.Julia) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "julia must be [re, im], got %d values", len(o.Julia))
		}
		for _, v := range o.Julia {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidConfig, "julia must be finite, got %v", o.Julia)
			}
		}
	}
	return nil
}

// Region returns the sampling region described by XRange and YRange.
func (o *Options) Region() (fractal.Region, error) {
	if len(o.XRange) != 2 {
		return fractal.Region{}, errors.New(errors.ErrCodeInvalidConfig, "x_range must be [min, max], got %d values", len(o.XRange))
	}
	if len(o.YRange) != 2 {
		return fractal.Region{}, errors.New(errors.ErrCodeInvalidConfig, "y_range must be [min, max], got %d values", len(o.YRange))
	}
	r := fractal.Region{XMin: o.XRange[0], XMax: o.XRange[1], YMin: o.YRange[0], YMax: o.YRange[1]}
	if err := r.Validate(); err != nil {
		return fractal.Region{}, err
	}
	return r, nil
}

// Params returns the engine parameters. Call after Validate.
func (o *Options) Params() fractal.Params {
	p := fractal.Params{
		Mode:      fractal.Mode(o.Mode),
		Threshold: o.Threshold,
		Criterion: fractal.Criterion(o.Criterion),
		MaskZero:  o.MaskZero,
	}
	if p.Mode == fractal.ModeJulia && len(o.Julia) == 2 {
		p.Julia = complex(o.Julia[0], o.Julia[1])
	}
	return p
}

// KeyOpts returns the cache key options. Call after Validate.
func (o *Options) KeyOpts() cache.ChartKeyOpts {
	p := o.Params()
	return cache.ChartKeyOpts{
		Mode:      o.Mode,
		JuliaRe:   real(p.Julia),
		JuliaIm:   imag(p.Julia),
		XMin:      o.XRange[0],
		XMax:      o.XRange[1],
		YMin:      o.YRange[0],
		YMax:      o.YRange[1],
		Points:    o.Points,
		Threshold: o.Threshold,
		Criterion: o.Criterion,
		MaskZero:  o.MaskZero,
	}
}
