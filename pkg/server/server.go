// Package server exposes the chart pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness and build version
//	GET  /v1/presets        named regions
//	POST /v1/charts         compute a chart, respond with the chart document
//	GET  /v1/charts/stream  websocket; rows are sent as they complete
//
// Errors are returned as {"code": "...", "message": "..."} with a status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/escapetime/pkg/fractal"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

// Config holds listener settings and per-request limits. Zero limits are
// unlimited.
type Config struct {
	Addr           string
	MaxPoints      int
	MaxThreshold   int
	MaxCells       int
	RequestTimeout time.Duration
	Presets        []fractal.Preset
}

// Server serves chart requests through a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil preset list serves [fractal.Presets].
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Presets == nil {
		cfg.Presets = fractal.Presets
	}
	s := &Server{runner: runner, cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Post("/charts", s.handleCompute)
		r.Get("/charts/stream", s.handleStream)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestContext applies the configured request timeout.
func (s *Server) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.RequestTimeout)
	}
	return context.WithCancel(parent)
}
