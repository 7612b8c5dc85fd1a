package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
	"go.uber.org/zap"

	"github.com/eugenenazirov/runtime-config/migrations"
)

// Dialect selects the SQL flavour used by SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = migrations.Postgres
	DialectSQLite   Dialect = migrations.SQLite
)

type sqlQueries struct {
	fetch  string
	upsert string
}

var queriesByDialect = map[Dialect]sqlQueries{
	DialectPostgres: {
		fetch: `SELECT document FROM ` + Collection + ` WHERE id = $1`,
		upsert: `INSERT INTO ` + Collection + ` (id, document) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`,
	},
	DialectSQLite: {
		fetch: `SELECT document FROM ` + Collection + ` WHERE id = ?`,
		upsert: `INSERT INTO ` + Collection + ` (id, document) VALUES (?, ?)
			ON CONFLICT (id) DO UPDATE SET document = excluded.document`,
	},
}

// SQLStore keeps each document as a JSON column in the "config" table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	queries sqlQueries
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	queries, ok := queriesByDialect[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: sql dialect %q", ErrUnknownBackend, dialect)
	}
	return &SQLStore{db: db, dialect: dialect, queries: queries}, nil
}

// OpenPostgres connects to PostgreSQL through the pgx database/sql driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewSQLStore(db, DialectPostgres)
}

// OpenSQLite opens the SQLite database at path, creating its directory when needed.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewSQLStore(db, DialectSQLite)
}

// Name implements Store.
func (s *SQLStore) Name() string { return string(s.dialect) }

// Fetch loads and decodes the document column. A missing table is reported as
// ErrNotFound: the store is reachable but the config was never seeded.
func (s *SQLStore) Fetch(ctx context.Context, id string) (map[string]any, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.queries.fetch, id).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case isUndefinedTable(err):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("query %s document: %w", Collection, err)
	}

	raw, err := decodeJSONDocument(payload)
	if err != nil {
		return nil, err
	}
	raw[idField] = id
	return raw, nil
}

// Put upserts doc under id.
func (s *SQLStore) Put(ctx context.Context, id string, doc map[string]any) error {
	stored := cloneMap(doc)
	stored[idField] = id

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.queries.upsert, id, string(payload)); err != nil {
		return fmt.Errorf("upsert %s document: %w", Collection, err)
	}
	return nil
}

// Migrate applies the goose migrations for the store's dialect.
func (s *SQLStore) Migrate(ctx context.Context, logger *zap.Logger) error {
	if err := migrations.Up(ctx, s.db, string(s.dialect), logger); err != nil {
		return fmt.Errorf("migrate %s table: %w", Collection, err)
	}
	return nil
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLStore) Close(context.Context) error {
	return s.db.Close()
}

func decodeJSONDocument(payload []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrMalformedDocument, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UndefinedTable
	}
	return false
}
