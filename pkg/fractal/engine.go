package fractal

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/escapetime/pkg/errors"
)

// Params is the immutable iteration configuration of an [Engine].
type Params struct {
	Mode      Mode       // iteration parametrization
	Julia     complex128 // constant c in ModeJulia; ignored in ModeMandelbrot
	Threshold int        // maximum number of steps per point
	Criterion Criterion  // divergence test; empty means DefaultCriterion
	MaskZero  bool       // report count 0 as Interior (legacy masking)
}

// RowFunc observes a finished row. counts is a copy owned by the callee.
// It may be called from several goroutines at once and in any row order.
type RowFunc func(row int, counts []EscapeCount)

// Option configures an [Engine].
type Option func(*Engine)

// WithWorkers bounds the number of rows computed concurrently.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRowHook registers fn to be called after each row is computed.
func WithRowHook(fn RowFunc) Option {
	return func(e *Engine) { e.onRow = fn }
}

// Engine computes escape counts for grid points. An Engine holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	params  Params
	workers int
	onRow   RowFunc
}

// NewEngine validates p and returns an engine for it.
//
// An unknown mode fails with [errors.ErrCodeInvalidMode]; a threshold below 1,
// an unknown criterion or a non-finite julia constant fails with
// [errors.ErrCodeInvalidConfig].
func NewEngine(p Params, opts ...Option) (*Engine, error) {
	if err := p.Mode.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateThreshold(p.Threshold); err != nil {
		return nil, err
	}
	if p.Threshold > math.MaxInt32 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "threshold must be <= %d, got %d", math.MaxInt32, p.Threshold)
	}
	crit, err := ParseCriterion(string(p.Criterion))
	if err != nil {
		return nil, err
	}
	p.Criterion = crit
	if p.Mode == ModeMandelbrot {
		p.Julia = 0
	}
	if cmplx.IsNaN(p.Julia) || cmplx.IsInf(p.Julia) {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "julia constant must be finite, got %v", p.Julia)
	}

	e := &Engine{params: p, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Params returns the engine's configuration with defaults applied.
func (e *Engine) Params() Params { return e.params }

// Escape returns the escape count of a single point.
func (e *Engine) Escape(p complex128) EscapeCount {
	z, c := complex(0, 0), p
	if e.params.Mode == ModeJulia {
		z, c = p, e.params.Julia
	}

	var n EscapeCount
	if e.params.Criterion == CriterionNaN {
		n = escapeNaN(z, c, e.params.Threshold)
	} else {
		n = escapeRadius(z, c, e.params.Threshold)
	}
	if n == 0 && e.params.MaskZero {
		return Interior
	}
	return n
}

func escapeRadius(z, c complex128, threshold int) EscapeCount {
	for j := range threshold {
		z = z*z + c
		if re, im := real(z), imag(z); re*re+im*im > 4 {
			return EscapeCount(j)
		}
	}
	return Interior
}

// escapeNaN fires only after the orbit overflowed and a later step produced
// an undefined value such as Inf - Inf.
func escapeNaN(z, c complex128, threshold int) EscapeCount {
	for j := range threshold {
		z = z*z + c
		if math.IsNaN(cmplx.Abs(z)) {
			return EscapeCount(j)
		}
	}
	return Interior
}

// Compute evaluates every point of g and returns the frozen chart.
//
// Rows are distributed over the worker pool; each worker writes only its own
// rows. ctx is checked before every cell. On cancellation Compute returns a
// TIMEOUT or CANCELED error and no chart.
func (e *Engine) Compute(ctx context.Context, g *Grid) (*Chart, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid is nil")
	}

	rows, cols := g.Rows(), g.Cols()
	counts := make([]EscapeCount, rows*cols)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	launched := 0
	for i := range rows {
		if gctx.Err() != nil {
			break
		}
		launched++
		eg.Go(func() error {
			row := counts[i*cols : (i+1)*cols]
			done := gctx.Done()
			for j := range row {
				select {
				case <-done:
					return gctx.Err()
				default:
				}
				row[j] = e.Escape(g.At(i, j))
			}
			if e.onRow != nil {
				e.onRow(i, slices.Clone(row))
			}
			return nil
		})
	}
	err := eg.Wait()
	if err == nil && launched < rows {
		err = ctx.Err()
	}
	if err != nil {
		if cerr := errors.FromContext(err); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}

	return &Chart{rows: rows, cols: cols, counts: counts}, nil
}
