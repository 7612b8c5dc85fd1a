package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpen_DisabledStore(t *testing.T) {
	store, err := Open(context.Background(), Options{Backend: BackendMongo, URI: "mongodb://localhost", Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.IsType(t, Disabled{}, store)
	_, err = store.Fetch(context.Background(), RuntimeDocumentID)
	assert.ErrorIs(t, err, ErrStoreDisabled)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrStoreDisabled)
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpen_MissingURIDisablesStore(t *testing.T) {
	for _, backend := range []string{BackendMongo, BackendPostgres, BackendSQLite, BackendFile} {
		t.Run(backend, func(t *testing.T) {
			store, err := Open(context.Background(), Options{Backend: backend, Enabled: true}, nil)
			require.NoError(t, err)
			assert.IsType(t, Disabled{}, store)
		})
	}
}

func TestOpen_NoneBackend(t *testing.T) {
	store, err := Open(context.Background(), Options{Backend: "NONE", Enabled: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "disabled", store.Name())
}

func TestOpen_MemoryBackend(t *testing.T) {
	store, err := Open(context.Background(), Options{Backend: BackendMemory, Enabled: true}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpen_FileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	store, err := Open(context.Background(), Options{Backend: BackendFile, URI: path, Enabled: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
}

func TestOpen_SQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.db")
	ctx := context.Background()

	store, err := Open(ctx, Options{Backend: BackendSQLite, URI: path, Enabled: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close(ctx)

	sqlStore, ok := store.(*SQLStore)
	require.True(t, ok)
	require.NoError(t, sqlStore.Migrate(ctx, zaptest.NewLogger(t)))
	require.NoError(t, sqlStore.Put(ctx, RuntimeDocumentID, map[string]any{
		"public": map[string]any{"FEATURE_X": "on"},
	}))

	raw, err := store.Fetch(ctx, RuntimeDocumentID)
	require.NoError(t, err)
	doc, err := ParseDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, "on", doc.Public["FEATURE_X"])
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd", URI: "x", Enabled: true}, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestKnownBackend(t *testing.T) {
	assert.True(t, KnownBackend(" Mongo "))
	assert.True(t, KnownBackend(BackendNone))
	assert.False(t, KnownBackend("redis"))
}
