package fractal

import (
	"math"

	"github.com/matzehuels/escapetime/pkg/errors"
)

// Grid is an immutable rows × cols lattice of complex sample points.
// Points are stored row-major; row 0 is the top edge of the region.
type Grid struct {
	region Region
	xs     []float64 // ascending, len == cols
	ys     []float64 // descending, len == rows
	rows   int
	cols   int
}

// MaxCells bounds rows × cols for any grid.
const MaxCells = 1 << 28

// BuildGrid samples region with nPts columns and as many rows as keep the
// region's aspect ratio: rows = round(nPts · height / width).
//
// It returns an [errors.ErrCodeInvalidConfig] error when the region is
// invalid, nPts < 2, the region is so flat that no row remains, or the grid
// would exceed [MaxCells].
func BuildGrid(region Region, nPts int) (*Grid, error) {
	rows, err := GridRows(region, nPts)
	if err != nil {
		return nil, err
	}

	ys := linspace(region.YMin, region.YMax, rows)
	for i, j := 0, len(ys)-1; i < j; i, j = i+1, j-1 {
		ys[i], ys[j] = ys[j], ys[i]
	}

	return &Grid{
		region: region,
		xs:     linspace(region.XMin, region.XMax, nPts),
		ys:     ys,
		rows:   rows,
		cols:   nPts,
	}, nil
}

// GridRows returns the row count BuildGrid would use for region at nPts
// columns, without allocating the grid.
func GridRows(region Region, nPts int) (int, error) {
	if err := region.Validate(); err != nil {
		return 0, err
	}
	if err := errors.ValidatePoints(nPts); err != nil {
		return 0, err
	}

	rows := math.Round(float64(nPts) * region.Height() / region.Width())
	if math.IsNaN(rows) || math.IsInf(rows, 0) || rows*float64(nPts) > MaxCells {
		return 0, errors.New(errors.ErrCodeInvalidConfig,
			"region %s at %d points exceeds %d cells", region, nPts, MaxCells)
	}
	if rows < 1 {
		return 0, errors.New(errors.ErrCodeInvalidConfig,
			"region %s yields no rows at %d points", region, nPts)
	}
	return int(rows), nil
}

// linspace returns n evenly spaced values from a to b inclusive.
// The last value is exactly b; n == 1 yields [a].
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of points, Rows() * Cols().
func (g *Grid) Len() int { return g.rows * g.cols }

// Region returns the sampled region.
func (g *Grid) Region() Region { return g.region }

// At returns the point at row i, column j.
// It panics if i or j is out of range.
func (g *Grid) At(i, j int) complex128 {
	return complex(g.xs[j], g.ys[i])
}

// Xs returns a copy of the column coordinates (real parts), ascending.
func (g *Grid) Xs() []float64 { return append([]float64(nil), g.xs...) }

// Ys returns a copy of the row coordinates (imaginary parts), descending.
func (g *Grid) Ys() []float64 { return append([]float64(nil), g.ys...) }
