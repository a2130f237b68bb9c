// Package io provides JSON import and export for escape-time charts.
//
// # Overview
//
// A chart document is the hand-off contract between the fractal core and any
// external renderer. It carries the computed counts together with every
// parameter needed to reproduce or label them. The format is designed for:
//
//   - Rendering by external tools (palette mapping, image encoding)
//   - Caching of computed charts in file, redis or mongo stores
//   - Transport over the HTTP and websocket API
//   - Round-trip preservation: export, re-import and compare identically
//
// # JSON Format
//
//	{
//	  "mode": "julia",
//	  "julia": {"re": -0.79, "im": 0.15},
//	  "region": {"x_min": -2, "x_max": 1, "y_min": -1.5, "y_max": 1.5},
//	  "points": 4,
//	  "threshold": 50,
//	  "criterion": "radius",
//	  "rows": 4,
//	  "cols": 4,
//	  "counts": [[0, 1, 1, 1], [0, 4, null, 1], ...]
//	}
//
// Row 0 of counts is the top edge of the region (y_max). A null count marks
// an interior point that did not diverge within the threshold. The julia
// field is present only in julia mode.
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate that the counts match rows and cols.
//
// # Export
//
// Use [ExportJSON] to write a document to a file, or [WriteJSON] to write to
// any io.Writer. [MarshalChart] and [UnmarshalChart] use the compact form for
// cache storage.
package io
