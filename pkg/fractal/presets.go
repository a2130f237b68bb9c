package fractal

import (
	"github.com/matzehuels/escapetime/pkg/errors"
)

// Preset is a named region worth looking at.
type Preset struct {
	Name        string
	Description string
	Region      Region
}

// FullView covers the whole Mandelbrot set.
var FullView = Region{XMin: -2, XMax: 1, YMin: -1.5, YMax: 1.5}

// Classic regions / landmarks in the Mandelbrot set.
var (
	// Seahorse Valley: dense filaments and repeating "seahorse" curls
	SeahorseValley = Region{XMin: -0.8, XMax: -0.7, YMin: 0.05, YMax: 0.15}

	// Elephant Valley: large bulb with trunk-like tendrils
	ElephantValley = Region{XMin: -1.85, XMax: -1.75, YMin: -0.10, YMax: -0.02}

	// Spiral Minibrot: small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{XMin: -0.7435, XMax: -0.7420, YMin: 0.1310, YMax: 0.1325}

	// Triple Spiral: threefold symmetric spiral structure
	TripleSpiral = Region{XMin: -0.7480, XMax: -0.7450, YMin: 0.0950, YMax: 0.0980}

	// Valley of the Dragon: deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{XMin: -0.7400, XMax: -0.7350, YMin: 0.1800, YMax: 0.1850}

	// Minibrot in a Mini-Spiral: self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{XMin: -1.7390, XMax: -1.7375, YMin: -0.0235, YMax: -0.0220}
)

// Presets lists the built-in regions in display order.
var Presets = []Preset{
	{Name: "full", Description: "Whole Mandelbrot set", Region: FullView},
	{Name: "seahorse_valley", Description: "Seahorse Valley", Region: SeahorseValley},
	{Name: "elephant_valley", Description: "Elephant Valley", Region: ElephantValley},
	{Name: "spiral_minibrot", Description: "Spiral Minibrot", Region: SpiralMinibrot},
	{Name: "triple_spiral", Description: "Triple Spiral", Region: TripleSpiral},
	{Name: "valley_of_the_dragon", Description: "Valley of the Dragon", Region: ValleyOfTheDragon},
	{Name: "minibrot_in_mini_spiral", Description: "Minibrot in a Mini-Spiral", Region: MinibrotInMiniSpiral},
}

// FindPreset looks a preset up by name in presets.
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.New(errors.ErrCodePresetNotFound, "unknown preset: %q", name)
}
