package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/matzehuels/escapetime/pkg/buildinfo"
	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
	chartio "github.com/matzehuels/escapetime/pkg/io"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

// maxBodyBytes bounds request bodies; options are small.
const maxBodyBytes = 1 << 16

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type presetResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Region      chartio.Region `json:"region"`
}

type chartResponse struct {
	chartio.Document
	CacheHit bool           `json:"cache_hit"`
	Stats    pipeline.Stats `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make([]presetResponse, len(s.cfg.Presets))
	for i, p := range s.cfg.Presets {
		out[i] = presetResponse{
			Name:        p.Name,
			Description: p.Description,
			Region:      chartio.Region{XMin: p.Region.XMin, XMax: p.Region.XMax, YMin: p.Region.YMin, YMax: p.Region.YMax},
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body"))
		return
	}
	if err := s.prepare(&opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()
	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := res.Document()
	doc.ID = uuid.NewString()
	writeJSON(w, http.StatusOK, chartResponse{Document: doc, CacheHit: res.CacheHit, Stats: res.Stats})
}

// prepare applies defaults and presets, validates the request, and enforces
// the server's limits.
func (s *Server) prepare(opts *pipeline.Options) error {
	opts.Presets = s.cfg.Presets
	opts.SetDefaults()
	if err := opts.ResolvePreset(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateLimit("points", opts.Points, s.cfg.MaxPoints); err != nil {
		return err
	}
	if err := errors.ValidateLimit("threshold", opts.Threshold, s.cfg.MaxThreshold); err != nil {
		return err
	}

	region, err := opts.Region()
	if err != nil {
		return err
	}
	rows, err := fractal.GridRows(region, opts.Points)
	if err != nil {
		return err
	}
	return errors.ValidateLimit("cells", rows*opts.Points, s.cfg.MaxCells)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
