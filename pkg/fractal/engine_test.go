package fractal

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/escapetime/pkg/errors"
)

func mustEngine(t *testing.T, p Params, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(p, opts...)
	if err != nil {
		t.Fatalf("NewEngine(%+v): %v", p, err)
	}
	return e
}

func mustGrid(t *testing.T, r Region, n int) *Grid {
	t.Helper()
	g, err := BuildGrid(r, n)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	return g
}

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		code   errors.Code
	}{
		{"unknown mode", Params{Mode: "burning_ship", Threshold: 10}, errors.ErrCodeInvalidMode},
		{"empty mode", Params{Threshold: 10}, errors.ErrCodeInvalidMode},
		{"zero threshold", Params{Mode: ModeMandelbrot}, errors.ErrCodeInvalidConfig},
		{"negative threshold", Params{Mode: ModeJulia, Threshold: -3}, errors.ErrCodeInvalidConfig},
		{"unknown criterion", Params{Mode: ModeMandelbrot, Threshold: 10, Criterion: "escape"}, errors.ErrCodeInvalidConfig},
		{"nan julia", Params{Mode: ModeJulia, Threshold: 10, Julia: complex(math.NaN(), 0)}, errors.ErrCodeInvalidConfig},
		{"infinite julia", Params{Mode: ModeJulia, Threshold: 10, Julia: complex(0, math.Inf(1))}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.params)
			if !errors.Is(err, tt.code) {
				t.Errorf("NewEngine error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Julia: 1 + 1i, Threshold: 5})
	p := e.Params()
	if p.Criterion != CriterionRadius {
		t.Errorf("Criterion = %q, want %q", p.Criterion, CriterionRadius)
	}
	if p.Julia != 0 {
		t.Errorf("Julia constant should be dropped in mandelbrot mode, got %v", p.Julia)
	}
}

func TestEscapeOriginIsInterior(t *testing.T) {
	for _, crit := range []Criterion{CriterionRadius, CriterionNaN} {
		for _, threshold := range []int{1, 2, 50, 1000} {
			e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: threshold, Criterion: crit})
			if got := e.Escape(0); got != Interior {
				t.Errorf("%s/threshold=%d: Escape(0) = %v, want interior", crit, threshold, got)
			}
		}
	}
}

func TestEscapeRadiusFarPoint(t *testing.T) {
	// |c| > 2 leaves the disc on the very first step; the count is 0, not Interior.
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 50, Criterion: CriterionRadius})
	if got := e.Escape(5); got != 0 {
		t.Errorf("Escape(5) = %v, want 0", got)
	}

	masked := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 50, Criterion: CriterionRadius, MaskZero: true})
	if got := masked.Escape(5); got != Interior {
		t.Errorf("masked Escape(5) = %v, want interior", got)
	}
}

func TestEscapeNaNFarPoint(t *testing.T) {
	// c = 5 overflows to +Inf at step 9, picks up a NaN imaginary part at
	// step 10 (Inf*0) and its magnitude becomes NaN at step 11.
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 50, Criterion: CriterionNaN})
	if got := e.Escape(5); got != 11 {
		t.Errorf("Escape(5) = %v, want 11", got)
	}

	// With only steps 0..10 available the NaN test never fires.
	short := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 11, Criterion: CriterionNaN})
	if got := short.Escape(5); got != Interior {
		t.Errorf("threshold 11: Escape(5) = %v, want interior", got)
	}

	exact := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 12, Criterion: CriterionNaN})
	if got := exact.Escape(5); got != 11 {
		t.Errorf("threshold 12: Escape(5) = %v, want 11", got)
	}
}

func TestEscapeJuliaZeroConstant(t *testing.T) {
	// With c = 0 the orbit is repeated squaring of the start point.
	e := mustEngine(t, Params{Mode: ModeJulia, Julia: 0, Threshold: 50, Criterion: CriterionRadius})

	tests := []struct {
		p    complex128
		want EscapeCount
	}{
		{0, Interior},
		{0.5, Interior},
		{1, Interior},
		{1i, Interior},
		{1.5, 0}, // 2.25² > 4
		{2, 0},
		{3i, 0},
		{1.2, 1}, // 1.44, then 2.07
	}
	for _, tt := range tests {
		if got := e.Escape(tt.p); got != tt.want {
			t.Errorf("Escape(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestJuliaDiffersFromMandelbrot(t *testing.T) {
	g := mustGrid(t, FullView, 16)
	ctx := context.Background()

	m, err := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 50}).Compute(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	j, err := mustEngine(t, Params{Mode: ModeJulia, Julia: 0, Threshold: 50}).Compute(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	if m.Equal(j) {
		t.Error("julia(c=0) chart should differ from the mandelbrot chart on the same grid")
	}
}

func TestComputeScenario(t *testing.T) {
	g := mustGrid(t, Region{XMin: -2, XMax: 1, YMin: -1.5, YMax: 1.5}, 4)
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 50, Criterion: CriterionRadius})

	chart, err := e.Compute(context.Background(), g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	I := Interior
	want := [][]EscapeCount{
		{0, 1, 1, 1}, // y = 1.5
		{0, 4, I, 1}, // y = 0.5
		{0, 4, I, 1}, // y = -0.5
		{0, 1, 1, 1}, // y = -1.5
	}
	for i := range want {
		for j := range want[i] {
			if got := chart.At(i, j); got != want[i][j] {
				t.Errorf("At(%d, %d) [c=%v] = %v, want %v", i, j, g.At(i, j), got, want[i][j])
			}
		}
	}
}

func TestComputeShapeAndRange(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		region Region
		n      int
	}{
		{"mandelbrot radius", Params{Mode: ModeMandelbrot, Threshold: 30}, FullView, 40},
		{"mandelbrot nan", Params{Mode: ModeMandelbrot, Threshold: 30, Criterion: CriterionNaN}, FullView, 40},
		{"julia radius", Params{Mode: ModeJulia, Julia: -0.79 + 0.15i, Threshold: 100}, FullView, 33},
		{"julia masked", Params{Mode: ModeJulia, Julia: -0.79 + 0.15i, Threshold: 100, MaskZero: true}, FullView, 33},
		{"wide region", Params{Mode: ModeMandelbrot, Threshold: 20}, Region{XMin: -2, XMax: 2, YMin: -0.5, YMax: 0.5}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrid(t, tt.region, tt.n)
			chart, err := mustEngine(t, tt.params).Compute(context.Background(), g)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if chart.Rows() != g.Rows() || chart.Cols() != g.Cols() {
				t.Fatalf("chart %dx%d, grid %dx%d", chart.Rows(), chart.Cols(), g.Rows(), g.Cols())
			}
			for _, v := range chart.Counts() {
				if v.IsInterior() {
					continue
				}
				if int(v) < 0 || int(v) >= tt.params.Threshold {
					t.Fatalf("count %d outside [0, %d)", v, tt.params.Threshold)
				}
				if tt.params.MaskZero && v == 0 {
					t.Fatal("masked chart must not contain zero counts")
				}
			}
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	g := mustGrid(t, SeahorseValley, 48)
	p := Params{Mode: ModeMandelbrot, Threshold: 200}

	a, err := mustEngine(t, p, WithWorkers(1)).Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mustEngine(t, p, WithWorkers(8)).Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	c, err := mustEngine(t, p, WithWorkers(8)).Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) || !b.Equal(c) {
		t.Error("identical inputs must produce identical charts regardless of worker count")
	}
}

func TestComputeMatchesEscape(t *testing.T) {
	g := mustGrid(t, FullView, 20)
	e := mustEngine(t, Params{Mode: ModeJulia, Julia: 0.285 + 0.01i, Threshold: 64})
	chart, err := e.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	for i := range g.Rows() {
		for j := range g.Cols() {
			if got, want := chart.At(i, j), e.Escape(g.At(i, j)); got != want {
				t.Fatalf("cell (%d, %d) = %v, Escape = %v", i, j, got, want)
			}
		}
	}
}

func TestComputeRowHook(t *testing.T) {
	g := mustGrid(t, FullView, 12)

	var mu sync.Mutex
	seen := make(map[int][]EscapeCount)
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 40}, WithWorkers(4), WithRowHook(func(row int, counts []EscapeCount) {
		mu.Lock()
		defer mu.Unlock()
		seen[row] = counts
	}))

	chart, err := e.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != g.Rows() {
		t.Fatalf("hook saw %d rows, want %d", len(seen), g.Rows())
	}
	for i, counts := range seen {
		row := chart.Row(i)
		for j := range row {
			if counts[j] != row[j] {
				t.Fatalf("hook row %d differs from chart at column %d", i, j)
			}
		}
	}
}

func TestComputeCanceled(t *testing.T) {
	g := mustGrid(t, FullView, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 1000}, WithRowHook(func(int, []EscapeCount) {
		calls.Add(1)
	}))
	chart, err := e.Compute(ctx, g)
	if chart != nil {
		t.Error("canceled computation must not return a chart")
	}
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("error = %v, want CANCELED", err)
	}
	if calls.Load() != 0 {
		t.Errorf("no row should complete after cancellation, got %d", calls.Load())
	}
}

func TestComputeCanceledMidway(t *testing.T) {
	g := mustGrid(t, FullView, 64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 1000}, WithWorkers(1), WithRowHook(func(row int, _ []EscapeCount) {
		if row == 2 {
			cancel()
		}
	}))
	if _, err := e.Compute(ctx, g); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("error = %v, want CANCELED", err)
	}
}

func TestComputeNilGrid(t *testing.T) {
	e := mustEngine(t, Params{Mode: ModeMandelbrot, Threshold: 10})
	if _, err := e.Compute(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
