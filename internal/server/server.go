// Package server exposes the simulation pipeline over HTTP.
//
// Routes:
//
//	POST /v1/simulate             simulate {"lines": [...]} and store the run
//	GET  /v1/runs                 recent runs, newest first (?limit=n)
//	GET  /v1/runs/{id}            one stored run
//	GET  /v1/runs/{id}/timeline   timeline of a stored run (?format=svg|dot)
//	GET  /healthz                 liveness
//	GET  /readyz                  readiness (run store reachable)
//	GET  /version                 build information
//	GET  /metrics                 Prometheus metrics, when configured
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} whose HTTP
// status is derived from the pkg/errors code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rwerrors "github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/store"
)

// Default limits.
const (
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the dependencies of a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Runner executes simulations. Required.
	Runner *pipeline.Runner

	// Store records finished runs. Defaults to an in-memory store.
	Store store.Store

	// Limits bounds simulation requests. The zero value selects
	// rwerrors.DefaultLineLimits. Requests without lines are always rejected.
	Limits rwerrors.LineLimits

	// MaxBodyBytes bounds request bodies. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Metrics, when set, is served on /metrics.
	Metrics http.Handler

	// Logger receives request logs. Defaults to a discard logger.
	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
	logger *log.Logger
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore(0)
	}
	if cfg.Limits == (rwerrors.LineLimits{}) {
		cfg.Limits = rwerrors.DefaultLineLimits()
	}
	cfg.Limits.RequireLines = true
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(observeRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/version", s.handleVersion)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(DefaultRequestTimeout))
		r.Post("/simulate", s.handleSimulate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/timeline", s.handleRunTimeline)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, rwerrors.New(rwerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
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

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
