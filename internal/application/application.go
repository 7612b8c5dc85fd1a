package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/internal/api"
	"github.com/eugenenazirov/runtime-config/internal/config"
	"github.com/eugenenazirov/runtime-config/internal/docstore"
	"github.com/eugenenazirov/runtime-config/internal/metrics"
	"github.com/eugenenazirov/runtime-config/internal/runtimeconfig"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	store    docstore.Store
	snapshot *runtimeconfig.Snapshot
	metrics  *metrics.Collector
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New opens the document store, resolves the runtime configuration once and
// wires the HTTP stack. Store failures never abort startup; the service then
// serves the environment overlay alone.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := openStore(ctx, cfg.Store, logger)

	snapshot := runtimeconfig.Initialize(ctx, store, cfg.PublicEnvPrefix,
		runtimeconfig.WithLogger(logger),
		runtimeconfig.WithFetchTimeout(cfg.Store.FetchTimeout),
	)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("", nil)
		collector.RecordConfigLoad(snapshot.Source(), string(snapshot.Status()), snapshot.PublicLen(), snapshot.ServerLen())
	}

	handler := api.NewHandler(snapshot, store,
		api.WithHandlerLogger(logger),
		api.WithPingTimeout(cfg.Store.FetchTimeout),
	)
	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if collector != nil {
		routerOpts = append(routerOpts, api.WithMetrics(collector))
	}
	router := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		store:    store,
		snapshot: snapshot,
		metrics:  collector,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   NewServer(cfg, router),
	}, nil
}

// openStore connects within the fetch timeout. An open failure yields an
// Unavailable store carrying the error, so the load status and /health/db
// report the outage.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) docstore.Store {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	store, err := docstore.Open(connectCtx, cfg.Options(), logger)
	if err != nil {
		logger.Warn("document store unavailable, continuing without it",
			zap.String("backend", cfg.Backend),
			zap.Error(err),
		)
		return docstore.Unavailable{Backend: cfg.Backend, Err: err}
	}
	if disabled, ok := store.(docstore.Disabled); ok {
		logger.Info("document store disabled", zap.String("reason", disabled.Reason))
	}
	return store
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Snapshot returns the configuration resolved at startup.
func (a *App) Snapshot() *runtimeconfig.Snapshot {
	return a.snapshot
}

// Close releases the document store connection.
func (a *App) Close(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(ctx); err != nil {
		return fmt.Errorf("close %s store: %w", a.store.Name(), err)
	}
	return nil
}
