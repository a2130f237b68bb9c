package errors

import (
	"math"
	"regexp"
	"unicode"
)

// ValidateRange validates a real interval [lo, hi] used as one side of a
// sampling region. The interval must be finite and strictly increasing;
// a zero or negative length is a configuration error.
func ValidateRange(axis string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return New(ErrCodeInvalidConfig, "%s range must be finite, got (%g, %g)", axis, lo, hi)
	}
	if hi <= lo {
		return New(ErrCodeInvalidConfig, "%s range must have positive length, got (%g, %g)", axis, lo, hi)
	}
	return nil
}

// ValidatePoints validates the horizontal sample count.
// At least two samples are needed to span an interval.
func ValidatePoints(n int) error {
	if n < 2 {
		return New(ErrCodeInvalidConfig, "points must be >= 2, got %d", n)
	}
	return nil
}

// ValidateThreshold validates the per-point iteration budget.
func ValidateThreshold(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidConfig, "threshold must be >= 1, got %d", n)
	}
	return nil
}

// ValidateLimit rejects values above an operator-configured maximum.
// A max of zero or less disables the check.
func ValidateLimit(name string, value, max int) error {
	if max > 0 && value > max {
		return New(ErrCodeInvalidInput, "%s %d exceeds the limit of %d", name, value, max)
	}
	return nil
}

// presetNameRegex matches preset identifiers (HCL block labels).
var presetNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidatePresetName validates a region preset name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 64 characters
//   - No control characters
//   - Lowercase letters, digits and underscores, starting with a letter
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "preset name cannot be empty")
	}

	const maxNameLength = 64
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "preset name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "preset name contains invalid control characters")
		}
	}

	if !presetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid preset name: %q", name)
	}

	return nil
}
