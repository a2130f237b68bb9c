package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
	chartio "github.com/matzehuels/escapetime/pkg/io"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

type computeFlags struct {
	mode      string
	julia     string
	preset    string
	pick      bool
	presets   string
	xRange    string
	yRange    string
	points    int
	threshold int
	criterion string
	maskZero  bool
	workers   int
	output    string
	noCache   bool
	refresh   bool
}

// computeCommand creates the "compute" command.
func (c *CLI) computeCommand() *cobra.Command {
	var f computeFlags

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute an escape-time chart and write it as JSON",
		Long: `Compute samples a region of the complex plane and writes the escape count of
every point to a JSON chart document. Flags override values from --config.`,
		Example: `  escapetime compute -n 800 -t 500
  escapetime compute --mode julia --julia -0.4,0.6 -o julia.json
  escapetime compute --preset seahorse_valley
  escapetime compute --pick --presets regions.hcl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompute(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.mode, "mode", "m", "", "fractal family: mandelbrot or julia")
	fl.StringVar(&f.julia, "julia", "", "julia constant as re,im")
	fl.StringVarP(&f.preset, "preset", "p", "", "named region (see 'escapetime presets')")
	fl.BoolVar(&f.pick, "pick", false, "choose a region interactively")
	fl.StringVar(&f.presets, "presets", "", "HCL file with extra region presets")
	fl.StringVar(&f.xRange, "x-range", "", "real axis as min,max")
	fl.StringVar(&f.yRange, "y-range", "", "imaginary axis as min,max")
	fl.IntVarP(&f.points, "points", "n", 0, "samples along the real axis")
	fl.IntVarP(&f.threshold, "threshold", "t", 0, "iteration budget per point")
	fl.StringVar(&f.criterion, "criterion", "", "divergence test: radius or nan")
	fl.BoolVar(&f.maskZero, "mask-zero", false, "report points escaping at step 0 as interior")
	fl.IntVarP(&f.workers, "workers", "w", 0, "rows computed in parallel (0 = all CPUs)")
	fl.StringVarP(&f.output, "output", "o", "", "output file, or - for stdout (default derived from parameters)")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the chart cache")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute even if the chart is cached")
	cmd.MarkFlagsMutuallyExclusive("preset", "pick")

	return cmd
}

func (c *CLI) runCompute(cmd *cobra.Command, f computeFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	presets, err := c.loadPresets(cfg, f.presets)
	if err != nil {
		return err
	}

	opts := cfg.PipelineOptions()
	opts.Presets = presets
	if err := applyComputeFlags(cmd, f, &opts); err != nil {
		return err
	}

	if f.pick {
		p, err := pickPreset(presets)
		if err != nil {
			return err
		}
		if p == nil {
			printInfo("No region selected")
			return nil
		}
		opts.Preset = p.Name
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing...")
	var rowsDone atomic.Int64
	opts.OnRow = func(int, []fractal.EscapeCount) {
		spinner.SetMessage(fmt.Sprintf("Computing... %d rows", rowsDone.Add(1)))
	}
	opts.Logger = logger

	prog := newProgress(logger)
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %dx%d chart", res.Stats.Rows, res.Stats.Cols))

	doc := res.Document()
	path := f.output
	if path == "" {
		path = chartio.DefaultFilename(doc.Mode, doc.Julia, doc.Points, doc.Threshold) + ".json"
	}
	if path == "-" {
		return chartio.WriteJSON(doc, os.Stdout)
	}
	if err := chartio.ExportJSON(doc, path); err != nil {
		return err
	}

	printSuccess("Chart written")
	printFile(path)
	printStats(res.Stats, res.CacheHit)
	return nil
}

// applyComputeFlags copies explicitly set flags over the config defaults.
func applyComputeFlags(cmd *cobra.Command, f computeFlags, opts *pipeline.Options) error {
	set := cmd.Flags().Changed
	if set("mode") {
		opts.Mode = f.mode
	}
	if set("julia") {
		v, err := parsePair("julia", f.julia)
		if err != nil {
			return err
		}
		opts.Julia = v
	}
	if set("x-range") {
		v, err := parsePair("x-range", f.xRange)
		if err != nil {
			return err
		}
		opts.XRange, opts.Preset = v, ""
	}
	if set("y-range") {
		v, err := parsePair("y-range", f.yRange)
		if err != nil {
			return err
		}
		opts.YRange, opts.Preset = v, ""
	}
	if set("preset") {
		opts.Preset = f.preset
	}
	if set("points") {
		opts.Points = f.points
	}
	if set("threshold") {
		opts.Threshold = f.threshold
	}
	if set("criterion") {
		opts.Criterion = f.criterion
	}
	if set("mask-zero") {
		opts.MaskZero = f.maskZero
	}
	if set("workers") {
		opts.Workers = f.workers
	}
	if set("refresh") {
		opts.Refresh = f.refresh
	}
	return nil
}

// parsePair parses "a,b" into two floats.
func parsePair(name, s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--%s must be two comma-separated numbers, got %q", name, s)
	}
	out := make([]float64, 2)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s: %q is not a number", name, p)
		}
		out[i] = v
	}
	return out, nil
}

// pickPreset runs the interactive preset list. A nil preset means the user
// quit without choosing.
func pickPreset(presets []fractal.Preset) (*fractal.Preset, error) {
	final, err := tea.NewProgram(NewPresetListModel(presets)).Run()
	if err != nil {
		return nil, fmt.Errorf("preset picker: %w", err)
	}
	return final.(PresetListModel).Selected, nil
}
