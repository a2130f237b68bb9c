package fractal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// EscapeCount is the 0-based step at which a point diverged, or [Interior].
type EscapeCount int32

// Interior marks a point that did not diverge within the iteration budget.
// It is never a valid step index.
const Interior EscapeCount = -1

// IsInterior reports whether e is the Interior marker.
func (e EscapeCount) IsInterior() bool { return e < 0 }

// Value returns the step index and true, or 0 and false for Interior.
func (e EscapeCount) Value() (int, bool) {
	if e.IsInterior() {
		return 0, false
	}
	return int(e), true
}

// String renders Interior as "interior" and counts as decimals.
func (e EscapeCount) String() string {
	if e.IsInterior() {
		return "interior"
	}
	return fmt.Sprintf("%d", int32(e))
}

// MarshalJSON encodes Interior as null and counts as numbers.
func (e EscapeCount) MarshalJSON() ([]byte, error) {
	if e.IsInterior() {
		return []byte("null"), nil
	}
	return json.Marshal(int32(e))
}

// UnmarshalJSON decodes null as Interior and non-negative numbers as counts.
func (e *EscapeCount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Interior
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("escape count must be >= 0 or null, got %d", n)
	}
	*e = EscapeCount(n)
	return nil
}

// Chart is the grid-shaped array of escape counts produced by an [Engine].
// A Chart is immutable: accessors return copies.
type Chart struct {
	rows, cols int
	counts     []EscapeCount // row-major
}

// NewChart builds a chart from row-major counts. It is used when decoding
// charts produced elsewhere; len(counts) must equal rows*cols.
func NewChart(rows, cols int, counts []EscapeCount) (*Chart, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("chart dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(counts) != rows*cols {
		return nil, fmt.Errorf("chart has %d counts, want %d", len(counts), rows*cols)
	}
	return &Chart{rows: rows, cols: cols, counts: slices.Clone(counts)}, nil
}

// Rows returns the number of rows.
func (c *Chart) Rows() int { return c.rows }

// Cols returns the number of columns.
func (c *Chart) Cols() int { return c.cols }

// At returns the count at row i, column j.
func (c *Chart) At(i, j int) EscapeCount {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic(fmt.Sprintf("fractal: chart index (%d, %d) out of range %dx%d", i, j, c.rows, c.cols))
	}
	return c.counts[i*c.cols+j]
}

// Row returns a copy of row i. It panics if i is out of range.
func (c *Chart) Row(i int) []EscapeCount {
	if i < 0 || i >= c.rows {
		panic(fmt.Sprintf("fractal: chart row %d out of range %dx%d", i, c.rows, c.cols))
	}
	return slices.Clone(c.counts[i*c.cols : (i+1)*c.cols])
}

// Counts returns a row-major copy of all counts.
func (c *Chart) Counts() []EscapeCount { return slices.Clone(c.counts) }

// Interior returns the number of Interior cells.
func (c *Chart) Interior() int {
	n := 0
	for _, v := range c.counts {
		if v.IsInterior() {
			n++
		}
	}
	return n
}

// Equal reports whether two charts have the same shape and counts.
func (c *Chart) Equal(other *Chart) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.rows == other.rows && c.cols == other.cols && slices.Equal(c.counts, other.counts)
}
