package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/runtime-config/internal/config"
	"github.com/eugenenazirov/runtime-config/internal/docstore"
	"github.com/eugenenazirov/runtime-config/migrations"
)

const sampleDocument = `
server:
  STRIPE_KEY: sk_test
public:
  FEATURE_X: "on"
  limits:
    max: 3
`

func writeDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedWritesSQLiteDocument(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")
	opts := seedOptions{
		documentPath: writeDocument(t, "runtime.yaml", sampleDocument),
		migrate:      true,
		store:        config.StoreConfig{Backend: docstore.BackendSQLite, URI: dbPath, Enabled: true, FetchTimeout: time.Second},
	}

	ctx := context.Background()
	require.NoError(t, seed(ctx, opts, zaptest.NewLogger(t)))

	store, err := docstore.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	raw, err := store.Fetch(ctx, docstore.RuntimeDocumentID)
	require.NoError(t, err)
	doc, err := docstore.ParseDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, "sk_test", doc.Server["STRIPE_KEY"])
	assert.Equal(t, "on", doc.Public["FEATURE_X"])

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	version, err := migrations.Version(ctx, db, migrations.SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestSeedMigrateTwiceKeepsLatestDocument(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "config.db")
	store := config.StoreConfig{Backend: docstore.BackendSQLite, URI: dbPath, Enabled: true}
	ctx := context.Background()

	first := seedOptions{documentPath: writeDocument(t, "v1.yaml", "public:\n  THEME: light\n"), migrate: true, store: store}
	second := seedOptions{documentPath: writeDocument(t, "v2.yaml", "public:\n  THEME: dark\n"), migrate: true, store: store}
	require.NoError(t, seed(ctx, first, zaptest.NewLogger(t)))
	require.NoError(t, seed(ctx, second, zaptest.NewLogger(t)))

	sqlStore, err := docstore.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlStore.Close(ctx) })

	raw, err := sqlStore.Fetch(ctx, docstore.RuntimeDocumentID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"THEME": "dark"}, raw["public"])
}

func TestSeedWithoutMigrateFailsOnFreshSQLite(t *testing.T) {
	opts := seedOptions{
		documentPath: writeDocument(t, "runtime.yaml", sampleDocument),
		store:        config.StoreConfig{Backend: docstore.BackendSQLite, URI: filepath.Join(t.TempDir(), "config.db"), Enabled: true},
	}

	assert.Error(t, seed(context.Background(), opts, zaptest.NewLogger(t)))
}

func TestSeedWritesFileDocument(t *testing.T) {
	target := filepath.Join(t.TempDir(), "store", "runtime.json")
	opts := seedOptions{
		documentPath: writeDocument(t, "runtime.json", `{"public":{"THEME":"dark"}}`),
		store:        config.StoreConfig{Backend: docstore.BackendFile, URI: target, Enabled: true},
	}

	require.NoError(t, seed(context.Background(), opts, zaptest.NewLogger(t)))

	raw, err := docstore.NewFileStore(target).Fetch(context.Background(), docstore.RuntimeDocumentID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"THEME": "dark"}, raw["public"])
}

func TestSeedRejectsMalformedDocument(t *testing.T) {
	opts := seedOptions{
		documentPath: writeDocument(t, "runtime.yaml", "public: [1, 2]\n"),
		store:        config.StoreConfig{Backend: docstore.BackendMemory, Enabled: true},
	}

	err := seed(context.Background(), opts, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrMalformedDocument))
}

func TestSeedFailsOnDisabledStore(t *testing.T) {
	opts := seedOptions{
		documentPath: writeDocument(t, "runtime.yaml", sampleDocument),
		store:        config.StoreConfig{Backend: docstore.BackendMongo, Enabled: false},
	}

	err := seed(context.Background(), opts, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, docstore.ErrStoreDisabled)
}

func TestSeedFailsOnMissingFile(t *testing.T) {
	opts := seedOptions{
		documentPath: filepath.Join(t.TempDir(), "missing.yaml"),
		store:        config.StoreConfig{Backend: docstore.BackendMemory, Enabled: true},
	}

	assert.Error(t, seed(context.Background(), opts, zaptest.NewLogger(t)))
}
