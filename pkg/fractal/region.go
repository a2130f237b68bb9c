package fractal

import (
	"fmt"

	"github.com/matzehuels/escapetime/pkg/errors"
)

// Region is a rectangle of the complex plane: real parts in [XMin, XMax],
// imaginary parts in [YMin, YMax].
type Region struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Validate reports a configuration error unless both intervals are finite
// and have positive length.
func (r Region) Validate() error {
	if err := errors.ValidateRange("x", r.XMin, r.XMax); err != nil {
		return err
	}
	return errors.ValidateRange("y", r.YMin, r.YMax)
}

// Width returns the length of the real interval.
func (r Region) Width() float64 { return r.XMax - r.XMin }

// Height returns the length of the imaginary interval.
func (r Region) Height() float64 { return r.YMax - r.YMin }

// String formats the region as "[xmin,xmax]x[ymin,ymax]".
func (r Region) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", r.XMin, r.XMax, r.YMin, r.YMax)
}
