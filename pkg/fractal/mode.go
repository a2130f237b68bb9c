package fractal

import (
	"github.com/matzehuels/escapetime/pkg/errors"
)

// Mode selects how the iteration is parametrized per point.
type Mode string

const (
	// ModeMandelbrot starts at z = 0 and uses the grid point as c.
	ModeMandelbrot Mode = "mandelbrot"
	// ModeJulia starts at the grid point and uses the fixed Julia constant as c.
	ModeJulia Mode = "julia"
)

// ParseMode converts a mode name into a [Mode].
// Unknown names fail with [errors.ErrCodeInvalidMode].
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate rejects anything other than ModeMandelbrot and ModeJulia.
func (m Mode) Validate() error {
	switch m {
	case ModeMandelbrot, ModeJulia:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: mandelbrot, julia)", string(m))
}

// Criterion is the divergence test applied after every step.
type Criterion string

const (
	// CriterionRadius declares divergence once |z| > 2.
	CriterionRadius Criterion = "radius"
	// CriterionNaN declares divergence once |z| is NaN (legacy behavior).
	CriterionNaN Criterion = "nan"
)

// DefaultCriterion is used when Params.Criterion is empty.
const DefaultCriterion = CriterionRadius

// ParseCriterion converts a criterion name into a [Criterion].
// The empty string maps to [DefaultCriterion].
func ParseCriterion(s string) (Criterion, error) {
	if s == "" {
		return DefaultCriterion, nil
	}
	c := Criterion(s)
	switch c {
	case CriterionRadius, CriterionNaN:
		return c, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "invalid criterion: %q (must be one of: radius, nan)", s)
}
