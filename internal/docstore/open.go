package docstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendNone     = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	URI      string
	Database string
	Enabled  bool
}

// KnownBackend reports whether name is accepted by Open.
func KnownBackend(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendMongo, BackendPostgres, BackendSQLite, BackendFile, BackendMemory, BackendNone:
		return true
	default:
		return false
	}
}

// Open returns the configured backend. A disabled store, the "none" backend,
// or a network backend without a URI yields Disabled and a nil error.
// Connection failures are returned to the caller, which decides whether to
// degrade.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))

	if !opts.Enabled {
		return Disabled{Reason: "disabled by configuration"}, nil
	}

	switch backend {
	case BackendNone:
		return Disabled{Reason: "backend set to none"}, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}

	if strings.TrimSpace(opts.URI) == "" {
		return Disabled{Reason: fmt.Sprintf("no uri configured for %s backend", backend)}, nil
	}

	switch backend {
	case BackendMongo:
		store, err := OpenMongo(ctx, opts.URI, opts.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to document store", zap.String("backend", backend), zap.String("database", opts.Database))
		return store, nil
	case BackendPostgres:
		store, err := OpenPostgres(ctx, opts.URI)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to document store", zap.String("backend", backend))
		return store, nil
	case BackendSQLite:
		store, err := OpenSQLite(ctx, opts.URI)
		if err != nil {
			return nil, err
		}
		logger.Info("opened document store", zap.String("backend", backend), zap.String("path", opts.URI))
		return store, nil
	case BackendFile:
		return NewFileStore(opts.URI), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
