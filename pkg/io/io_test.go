package io

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/escapetime/pkg/fractal"
)

func computeDoc(t *testing.T, p fractal.Params) (Document, *fractal.Chart) {
	t.Helper()
	g, err := fractal.BuildGrid(fractal.Region{XMin: -2, XMax: 1, YMin: -1.5, YMax: 1.5}, 4)
	if err != nil {
		t.Fatal(err)
	}
	e, err := fractal.NewEngine(p)
	if err != nil {
		t.Fatal(err)
	}
	c, err := e.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	return NewDocument(e.Params(), g, c), c
}

func TestNewDocument(t *testing.T) {
	doc, chart := computeDoc(t, fractal.Params{Mode: fractal.ModeMandelbrot, Threshold: 50})

	if doc.Mode != "mandelbrot" || doc.Criterion != "radius" {
		t.Errorf("mode/criterion = %q/%q", doc.Mode, doc.Criterion)
	}
	if doc.Julia != nil {
		t.Error("mandelbrot documents carry no julia constant")
	}
	if doc.Rows != 4 || doc.Cols != 4 || doc.Points != 4 || doc.Threshold != 50 {
		t.Errorf("header = %+v", doc)
	}
	if doc.Counts[1][2] != fractal.Interior {
		t.Errorf("Counts[1][2] = %v, want interior", doc.Counts[1][2])
	}

	back, err := doc.Chart()
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(chart) {
		t.Error("Chart() should rebuild the computed chart")
	}
}

func TestWriteReadJSON(t *testing.T) {
	doc, chart := computeDoc(t, fractal.Params{Mode: fractal.ModeJulia, Julia: -0.79 + 0.15i, Threshold: 50})

	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"julia": {`) {
		t.Errorf("julia constant missing from output:\n%s", buf.String())
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Julia == nil || got.Julia.ToComplex() != -0.79+0.15i {
		t.Errorf("julia = %+v", got.Julia)
	}
	back, err := got.Chart()
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(chart) {
		t.Error("chart changed across JSON")
	}
}

func TestInteriorEncodedAsNull(t *testing.T) {
	doc := Document{Mode: "mandelbrot", Rows: 1, Cols: 2, Counts: [][]fractal.EscapeCount{{0, fractal.Interior}}}
	data, err := MarshalChart(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"counts":[[0,null]]`)) {
		t.Errorf("MarshalChart = %s", data)
	}
	back, err := UnmarshalChart(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Counts[0][0] != 0 || back.Counts[0][1] != fractal.Interior {
		t.Errorf("counts = %v", back.Counts)
	}
}

func TestReadJSONInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"rows": `},
		{"row count mismatch", `{"rows": 2, "cols": 1, "counts": [[0]]}`},
		{"col count mismatch", `{"rows": 1, "cols": 2, "counts": [[0]]}`},
		{"negative count", `{"rows": 1, "cols": 1, "counts": [[-2]]}`},
		{"empty", `{"rows": 0, "cols": 0, "counts": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadJSON should fail")
			}
		})
	}
}

func TestExportImportJSON(t *testing.T) {
	doc, _ := computeDoc(t, fractal.Params{Mode: fractal.ModeMandelbrot, Threshold: 20, Criterion: fractal.CriterionNaN})
	path := filepath.Join(t.TempDir(), "chart.json")

	if err := ExportJSON(doc, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.Criterion != "nan" || got.FractalRegion() != doc.FractalRegion() {
		t.Errorf("ImportJSON = %+v", got)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		mode      string
		julia     *Complex
		points    int
		threshold int
		want      string
	}{
		{"mandelbrot", nil, 1000, 1000, "mandelbrot_1000pts_1000threshold"},
		{"mandelbrot", &Complex{Re: 1, Im: 1}, 10, 5, "mandelbrot_10pts_5threshold"},
		{"julia", &Complex{Re: -0.79, Im: 0.15}, 1000, 1000, "julia(-0,79+0,15j)_1000pts_1000threshold"},
		{"julia", &Complex{Re: 0.285, Im: -0.01}, 64, 200, "julia(0,285-0,01j)_64pts_200threshold"},
	}

	for _, tt := range tests {
		if got := DefaultFilename(tt.mode, tt.julia, tt.points, tt.threshold); got != tt.want {
			t.Errorf("DefaultFilename(%s, %v) = %q, want %q", tt.mode, tt.julia, got, tt.want)
		}
	}
}
