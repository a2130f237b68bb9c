package io

import (
	"fmt"
	"strings"

	"github.com/matzehuels/escapetime/pkg/fractal"
)

// Complex is the wire form of a complex constant.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// ToComplex converts c to a complex128.
func (c Complex) ToComplex() complex128 { return complex(c.Re, c.Im) }

// FromComplex converts z to its wire form.
func FromComplex(z complex128) Complex { return Complex{Re: real(z), Im: imag(z)} }

// Region is the wire form of a sampling region.
type Region struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Document is a computed chart plus the parameters that produced it.
type Document struct {
	ID        string                  `json:"id,omitempty"`
	Mode      string                  `json:"mode"`
	Julia     *Complex                `json:"julia,omitempty"`
	Region    Region                  `json:"region"`
	Points    int                     `json:"points"`
	Threshold int                     `json:"threshold"`
	Criterion string                  `json:"criterion"`
	MaskZero  bool                    `json:"mask_zero,omitempty"`
	Rows      int                     `json:"rows"`
	Cols      int                     `json:"cols"`
	Counts    [][]fractal.EscapeCount `json:"counts"`
}

// NewDocument assembles a document from engine parameters, the sampled grid
// and the resulting chart.
func NewDocument(p fractal.Params, g *fractal.Grid, c *fractal.Chart) Document {
	r := g.Region()
	doc := Document{
		Mode:      string(p.Mode),
		Region:    Region{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax},
		Points:    g.Cols(),
		Threshold: p.Threshold,
		Criterion: string(p.Criterion),
		MaskZero:  p.MaskZero,
		Rows:      c.Rows(),
		Cols:      c.Cols(),
		Counts:    make([][]fractal.EscapeCount, c.Rows()),
	}
	if p.Mode == fractal.ModeJulia {
		julia := FromComplex(p.Julia)
		doc.Julia = &julia
	}
	for i := range doc.Counts {
		doc.Counts[i] = c.Row(i)
	}
	return doc
}

// Chart rebuilds the immutable chart from the document's counts.
func (d Document) Chart() (*fractal.Chart, error) {
	if len(d.Counts) != d.Rows {
		return nil, fmt.Errorf("document has %d rows of counts, header says %d", len(d.Counts), d.Rows)
	}
	flat := make([]fractal.EscapeCount, 0, d.Rows*d.Cols)
	for i, row := range d.Counts {
		if len(row) != d.Cols {
			return nil, fmt.Errorf("row %d has %d counts, header says %d", i, len(row), d.Cols)
		}
		flat = append(flat, row...)
	}
	return fractal.NewChart(d.Rows, d.Cols, flat)
}

// FractalRegion returns the document's region in core form.
func (d Document) FractalRegion() fractal.Region {
	return fractal.Region{XMin: d.Region.XMin, XMax: d.Region.XMax, YMin: d.Region.YMin, YMax: d.Region.YMax}
}

// DefaultFilename returns the conventional base name for a chart file:
// "{mode}{c}_{points}pts_{threshold}threshold" with dots replaced by commas,
// where c is "(re+imj)" in julia mode and empty otherwise.
func DefaultFilename(mode string, julia *Complex, points, threshold int) string {
	c := ""
	if mode == string(fractal.ModeJulia) && julia != nil {
		c = fmt.Sprintf("(%g%+gj)", julia.Re, julia.Im)
	}
	name := fmt.Sprintf("%s%s_%dpts_%dthreshold", mode, c, points, threshold)
	return strings.ReplaceAll(name, ".", ",")
}
