package runtimeconfig

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/internal/docstore"
)

const (
	// DefaultEnvPrefix marks environment variables that are safe to ship to clients.
	DefaultEnvPrefix = "EXPO_PUBLIC_"

	defaultFetchTimeout = 5 * time.Second
)

// Option configures Initialize.
type Option func(*resolver)

// WithLogger sets the logger used to report degraded loads.
func WithLogger(logger *zap.Logger) Option {
	return func(r *resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFetchTimeout bounds the one-time document fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(r *resolver) {
		if timeout > 0 {
			r.fetchTimeout = timeout
		}
	}
}

// WithEnviron replaces os.Environ as the environment source, primarily for tests.
// Entries use the "KEY=value" form.
func WithEnviron(environ []string) Option {
	return func(r *resolver) {
		r.environ = func() []string { return environ }
	}
}

var osEnviron = os.Environ

type resolver struct {
	logger       *zap.Logger
	fetchTimeout time.Duration
	environ      func() []string
}

// Initialize builds the process-wide configuration snapshot. It never fails:
// a disabled, unreachable or slow store, a missing document and a malformed
// document all produce empty store partitions. Environment variables starting
// with envPrefix are merged into the public view and win over store values.
func Initialize(ctx context.Context, store docstore.Store, envPrefix string, opts ...Option) *Snapshot {
	r := &resolver{
		logger:       zap.NewNop(),
		fetchTimeout: defaultFetchTimeout,
		environ:      osEnviron,
	}
	for _, opt := range opts {
		opt(r)
	}
	if store == nil {
		store = docstore.Disabled{Reason: "no store provided"}
	}

	doc, status := r.fetch(ctx, store)
	environ := parseEnviron(r.environ())

	public := doc.Public
	overlay := publicOverlay(environ, envPrefix)
	if err := mergo.Merge(&public, overlay, mergo.WithOverride); err != nil {
		// mergo rejects only mismatched argument types.
		r.logger.Warn("merge public overlay", zap.Error(err))
		for k, v := range overlay {
			public[k] = v
		}
	}

	snapshot := &Snapshot{
		server:  doc.Server,
		public:  public,
		environ: environ,
		status:  status,
		source:  store.Name(),
	}

	r.logger.Info("runtime config resolved",
		zap.String("source", snapshot.source),
		zap.String("status", string(status)),
		zap.Int("public_keys", snapshot.PublicLen()),
		zap.Int("env_overrides", len(overlay)),
		zap.Int("server_keys", snapshot.ServerLen()),
	)
	return snapshot
}

func (r *resolver) fetch(ctx context.Context, store docstore.Store) (docstore.Document, Status) {
	empty, _ := docstore.ParseDocument(nil)

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	raw, err := store.Fetch(fetchCtx, docstore.RuntimeDocumentID)
	switch {
	case errors.Is(err, docstore.ErrStoreDisabled):
		r.logger.Info("document store disabled, using empty runtime config", zap.String("store", store.Name()))
		return empty, StatusDisabled
	case errors.Is(err, docstore.ErrNotFound):
		r.logger.Info("runtime config document not found",
			zap.String("collection", docstore.Collection),
			zap.String("id", docstore.RuntimeDocumentID),
		)
		return empty, StatusNotFound
	case errors.Is(err, docstore.ErrMalformedDocument):
		r.logger.Warn("runtime config document is malformed, ignoring it", zap.Error(err))
		return empty, StatusMalformed
	case err != nil:
		r.logger.Warn("document store unavailable, using empty runtime config",
			zap.String("store", store.Name()),
			zap.Error(err),
		)
		return empty, StatusUnavailable
	}

	doc, err := docstore.ParseDocument(raw)
	if err != nil {
		r.logger.Warn("runtime config document has malformed partitions", zap.Error(err))
		return doc, StatusMalformed
	}
	return doc, StatusLoaded
}

// publicOverlay selects the environment entries exposed to clients. Keys keep
// their full variable name. An empty prefix selects nothing.
func publicOverlay(environ map[string]string, prefix string) map[string]any {
	overlay := make(map[string]any)
	if prefix == "" {
		return overlay
	}
	for key, value := range environ {
		if strings.HasPrefix(key, prefix) {
			overlay[key] = value
		}
	}
	return overlay
}

func parseEnviron(entries []string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}
