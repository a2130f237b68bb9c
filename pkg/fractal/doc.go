// Package fractal computes escape-time data for Mandelbrot and Julia sets.
//
// # Overview
//
// The package has two stages that run in sequence. [BuildGrid] samples a
// rectangular [Region] of the complex plane into an immutable [Grid], and an
// [Engine] iterates z ← z² + c at every grid point to produce a [Chart] of
// [EscapeCount] values. The chart is the only output: turning counts into
// colors, images or files is left to the consumer.
//
//	g, err := fractal.BuildGrid(fractal.Region{XMin: -2, XMax: 1, YMin: -1.5, YMax: 1.5}, 1000)
//	if err != nil {
//	    return err
//	}
//	e, err := fractal.NewEngine(fractal.Params{Mode: fractal.ModeMandelbrot, Threshold: 1000})
//	if err != nil {
//	    return err
//	}
//	chart, err := e.Compute(ctx, g)
//
// # Grid Orientation
//
// A grid has [Grid.Cols] equal to the requested resolution and
// round(cols · height / width) rows, so the region's aspect ratio is kept.
// Row 0 lies on YMax and rows descend towards YMin; column 0 lies on XMin.
// Both endpoints of each axis are sampled.
//
// # Modes
//
// In [ModeMandelbrot] the iteration starts at z = 0 and the grid point is the
// constant c. In [ModeJulia] the iteration starts at the grid point and c is
// the fixed [Params.Julia] constant.
//
// # Divergence
//
// [CriterionRadius] (the default) stops a point as soon as |z| > 2.
// [CriterionNaN] stops only once |z| evaluates to NaN, which happens after
// the orbit has overflowed to infinity and an undefined operation follows.
// It reproduces legacy output; many divergent points never reach NaN within
// the budget and are reported as [Interior].
//
// A point that never stops within the budget is [Interior], which is distinct
// from an escape count of zero. [Params.MaskZero] folds zero counts into
// Interior for output that must match the legacy masking.
//
// # Concurrency
//
// Every cell depends only on its own coordinate, so [Engine.Compute] splits
// rows across a bounded pool of goroutines that write disjoint slices of the
// output. Cancellation is observed per cell; a cancelled computation returns
// the context error and no chart.
package fractal
