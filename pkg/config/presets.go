package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
)

// hclPresetFile is the top-level structure of a preset file for decoding.
type hclPresetFile struct {
	Regions []*hclRegion `hcl:"region,block"`
}

type hclRegion struct {
	Name        string  `hcl:"name,label"`
	Description string  `hcl:"description,optional"`
	XMin        float64 `hcl:"x_min"`
	XMax        float64 `hcl:"x_max"`
	YMin        float64 `hcl:"y_min"`
	YMax        float64 `hcl:"y_max"`
}

// LoadPresets parses region blocks from an HCL file:
//
//	region "seahorse_valley" {
//	  description = "Seahorse Valley"
//	  x_min = -0.8
//	  x_max = -0.7
//	  y_min = 0.05
//	  y_max = 0.15
//	}
//
// Every region is validated and names must be unique.
func LoadPresets(path string) ([]fractal.Preset, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset file %s not found", path)
		}
		return nil, err
	}
	return ParsePresets(src, path)
}

// ParsePresets parses HCL preset source. filename is used in diagnostics.
func ParsePresets(src []byte, filename string) ([]fractal.Preset, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, diags, "failed to parse HCL file %s", filename)
	}

	var parsed hclPresetFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, diags, "failed to decode HCL file %s", filename)
	}

	seen := make(map[string]bool, len(parsed.Regions))
	presets := make([]fractal.Preset, 0, len(parsed.Regions))
	for _, r := range parsed.Regions {
		if err := errors.ValidatePresetName(r.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if seen[r.Name] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: duplicate region %q", filename, r.Name)
		}
		seen[r.Name] = true

		region := fractal.Region{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax}
		if err := region.Validate(); err != nil {
			return nil, fmt.Errorf("%s: region %q: %w", filename, r.Name, err)
		}
		presets = append(presets, fractal.Preset{Name: r.Name, Description: r.Description, Region: region})
	}
	return presets, nil
}

// MergePresets returns base with extra appended; an extra preset replaces a
// base preset of the same name in place.
func MergePresets(base, extra []fractal.Preset) []fractal.Preset {
	out := append([]fractal.Preset(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}
	for _, p := range extra {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}
