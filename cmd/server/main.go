package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/internal/application"
	"github.com/eugenenazirov/runtime-config/internal/config"
	"github.com/eugenenazirov/runtime-config/internal/logging"
)

var signalNotify = signal.Notify

type cliFlags struct {
	configFile     *string
	port           *string
	logLevel       *string
	storeBackend   *string
	storeURI       *string
	noStore        *bool
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() (*kingpin.Application, *cliFlags) {
	app := kingpin.New("runtime-config", "Runtime configuration service - serves the client-public config map with environment overrides")
	flags := &cliFlags{
		configFile:     app.Flag("config", "Path to YAML configuration file").String(),
		port:           app.Flag("port", "HTTP port exposed by the service").String(),
		logLevel:       app.Flag("log-level", "Log level (debug, info, warn, error)").String(),
		storeBackend:   app.Flag("store", "Document store backend (mongo, postgres, sqlite, file, memory, none)").String(),
		storeURI:       app.Flag("store-uri", "Connection URI or path for the document store").String(),
		noStore:        app.Flag("no-store", "Disable the document store and serve environment overrides only").Bool(),
		rateLimitRPS:   app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst: app.Flag("rate-limit-burst", "Burst capacity for rate limiter").Default("-1").Int(),
	}
	return app, flags
}

// overrides keeps only the flags that were actually set.
func (f *cliFlags) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile:   *f.configFile,
		DisableStore: *f.noStore,
	}
	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}
	if *f.storeBackend != "" {
		overrides.StoreBackend = f.storeBackend
	}
	if *f.storeURI != "" {
		overrides.StoreURI = f.storeURI
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}
	return overrides
}

func main() {
	kingpinApp, flags := newCLI()
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(flags.overrides())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), app.Close, cfg.ShutdownGracePeriod, logger)
}

// shutdown blocks until a termination signal, drains the server and then runs
// cleanup within the same grace period.
func shutdown(server *http.Server, cleanup func(context.Context) error, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if cleanup != nil {
		if err := cleanup(ctx); err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		}
	}
}
