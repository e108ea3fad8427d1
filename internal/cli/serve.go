package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redwire/internal/metrics"
	"github.com/matzehuels/redwire/internal/server"
	"github.com/matzehuels/redwire/pkg/cache"
	"github.com/matzehuels/redwire/pkg/config"
	rwerrors "github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  POST /v1/simulate              simulate {"lines": [...]} and store the run
  GET  /v1/runs                  list recent runs (?limit=n)
  GET  /v1/runs/{id}             get a stored run
  GET  /v1/runs/{id}/timeline    render a stored run (?format=svg|dot)
  GET  /healthz, /readyz         liveness and readiness
  GET  /metrics                  Prometheus metrics
  GET  /version                  build information

Runs are kept in MongoDB when store.mongo_uri (or REDWIRE_MONGO_URI) is
set, otherwise in memory. Reports are cached in the configured backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.settings().Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cmd.ErrOrStderr(), !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+`":8080"`+")")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, status io.Writer, withMetrics bool) error {
	cfg := c.settings()
	logger := loggerFromContext(ctx)

	backend, err := connect(ctx, status, "cache", cfg.Cache.Backend == config.BackendRedis, func() (cache.Cache, error) {
		return newCache(ctx, cfg.Cache, false)
	})
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(backend, cache.NewScopedKeyer(nil, "api"), logger)
	runner.TTL = cfg.Cache.TTL
	defer runner.Close()

	runs, err := connect(ctx, status, "store", cfg.Store.MongoURI != "", func() (store.Store, error) {
		return openStore(ctx, cfg.Store.MongoURI, cfg.Store.Database, cfg.Store.Collection)
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := runs.Close(context.Background()); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	var metricsHandler http.Handler
	if withMetrics {
		m := metrics.New()
		m.Register()
		metricsHandler = m.Handler()
	}

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", storeKind(cfg.Store.MongoURI))

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		Runner: runner,
		Store:  runs,
		Limits: rwerrors.LineLimits{
			MaxLines:      cfg.Server.MaxLines,
			MaxLineLength: cfg.Server.MaxLineLength,
		},
		Metrics: metricsHandler,
		Logger:  logger,
	})
	return srv.ListenAndServe(ctx)
}

// connect runs open behind a spinner when it dials a remote backend.
func connect[T any](ctx context.Context, w io.Writer, what string, remote bool, open func() (T, error)) (T, error) {
	if !remote {
		return open()
	}
	s := newSpinner(ctx, w, "Connecting "+what+"...")
	s.Start()
	v, err := open()
	if err != nil {
		s.StopWithError("Failed to connect %s", what)
		return v, err
	}
	s.StopWithSuccess("Connected %s", what)
	return v, nil
}

// openStore connects to MongoDB when uri is set and falls back to memory.
func openStore(ctx context.Context, uri, database, collection string) (store.Store, error) {
	if uri == "" {
		return store.NewMemoryStore(0), nil
	}
	return store.NewMongoStore(ctx, uri, database, collection)
}

func storeKind(uri string) string {
	if uri == "" {
		return "memory"
	}
	return "mongodb"
}
