package errors

import (
	"math"
	"testing"
)

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  float64
		wantErr bool
	}{
		{"valid", -2, 1, false},
		{"valid tiny", -0.7435, -0.7420, false},

		{"zero length", 1, 1, true},
		{"reversed", 1, -2, true},
		{"nan low", math.NaN(), 1, true},
		{"inf high", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("x", tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%g, %g) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateRange error code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidatePoints(t *testing.T) {
	for _, n := range []int{2, 3, 1000} {
		if err := ValidatePoints(n); err != nil {
			t.Errorf("ValidatePoints(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 0, 1} {
		if err := ValidatePoints(n); !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidatePoints(%d) = %v, want INVALID_CONFIGURATION", n, err)
		}
	}
}

func TestValidateThreshold(t *testing.T) {
	if err := ValidateThreshold(1); err != nil {
		t.Errorf("ValidateThreshold(1) = %v, want nil", err)
	}
	if err := ValidateThreshold(0); !Is(err, ErrCodeInvalidConfig) {
		t.Errorf("ValidateThreshold(0) = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestValidateLimit(t *testing.T) {
	if err := ValidateLimit("points", 10, 0); err != nil {
		t.Errorf("disabled limit should pass: %v", err)
	}
	if err := ValidateLimit("points", 10, 10); err != nil {
		t.Errorf("value at limit should pass: %v", err)
	}
	if err := ValidateLimit("points", 11, 10); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("value over limit = %v, want INVALID_INPUT", err)
	}
}

func TestValidatePresetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "full", false},
		{"valid underscore", "seahorse_valley", false},
		{"valid digits", "zoom2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 100)), true},
		{"uppercase", "Seahorse", true},
		{"leading digit", "2zoom", true},
		{"dash", "seahorse-valley", true},
		{"control char", "foo\x01bar", true},
		{"path traversal", "../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePresetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePresetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
