// Command seed writes the runtime configuration document into the configured
// document store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/internal/config"
	"github.com/eugenenazirov/runtime-config/internal/docstore"
	"github.com/eugenenazirov/runtime-config/internal/logging"
)

const seedTimeout = 30 * time.Second

// migrator is implemented by stores that need a schema before the first write.
type migrator interface {
	Migrate(ctx context.Context, logger *zap.Logger) error
}

type seedOptions struct {
	documentPath string
	migrate      bool
	store        config.StoreConfig
}

func main() {
	app := kingpin.New("seed", "Writes the runtime config document into the document store")
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	documentPath := app.Flag("document", "YAML or JSON file with server and public partitions").Required().ExistingFile()
	storeBackend := app.Flag("store", "Document store backend (overrides configuration)").String()
	storeURI := app.Flag("store-uri", "Connection URI or path (overrides configuration)").String()
	migrate := app.Flag("migrate", "Apply schema migrations first (SQL backends)").Bool()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{ConfigFile: *configFile}
	if *storeBackend != "" {
		overrides.StoreBackend = storeBackend
	}
	if *storeURI != "" {
		overrides.StoreURI = storeURI
	}

	cfg, err := config.Load(overrides)
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

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	opts := seedOptions{documentPath: *documentPath, migrate: *migrate, store: cfg.Store}
	if err := seed(ctx, opts, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

// seed validates the document file and upserts it as the runtime document.
// Unlike the server, it fails loudly on a disabled or unreachable store.
func seed(ctx context.Context, opts seedOptions, logger *zap.Logger) error {
	raw, err := docstore.ReadDocumentFile(opts.documentPath)
	if err != nil {
		return err
	}
	doc, err := docstore.ParseDocument(raw)
	if err != nil {
		return fmt.Errorf("validate %s: %w", opts.documentPath, err)
	}
	doc.ID = docstore.RuntimeDocumentID

	store, err := docstore.Open(ctx, opts.store.Options(), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("close store", zap.Error(closeErr))
		}
	}()

	if disabled, ok := store.(docstore.Disabled); ok {
		return fmt.Errorf("%w: %s", docstore.ErrStoreDisabled, disabled.Reason)
	}

	writer, ok := store.(docstore.Writer)
	if !ok {
		return fmt.Errorf("%w: %s", docstore.ErrReadOnly, store.Name())
	}

	if m, ok := store.(migrator); ok && opts.migrate {
		if err := m.Migrate(ctx, logger); err != nil {
			return err
		}
		logger.Info("config table ready", zap.String("store", store.Name()))
	}

	if err := writer.Put(ctx, doc.ID, doc.Raw()); err != nil {
		return fmt.Errorf("write runtime document: %w", err)
	}

	logger.Info("runtime config seeded",
		zap.String("store", store.Name()),
		zap.String("collection", docstore.Collection),
		zap.String("id", doc.ID),
		zap.Int("server_keys", len(doc.Server)),
		zap.Int("public_keys", len(doc.Public)),
	)
	return nil
}
