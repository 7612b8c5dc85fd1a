// Package migrations holds the SQL schema for the config table, one goose
// migration directory per dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// Dialect names accepted by Up. They match the docstore SQL dialects.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

var gooseDialects = map[string]string{
	Postgres: "pgx",
	SQLite:   "sqlite3",
}

// goose keeps its base FS, dialect and logger in package state.
var gooseMu sync.Mutex

// ErrUnknownDialect is returned for a dialect without a migration directory.
var ErrUnknownDialect = errors.New("no migrations for dialect")

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect string, logger *zap.Logger) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDialect, dialect)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(zapGooseLogger{logger: logger.Sugar()})

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("migration error setting dialect %s: %w", gooseDialect, err)
	}
	if err := goose.UpContext(ctx, db, dialect); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Version reports the latest applied migration for the current database.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownDialect, dialect)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, fmt.Errorf("migration error setting dialect %s: %w", gooseDialect, err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

// zapGooseLogger forwards goose output to zap. Fatalf does not exit; Up
// returns the error instead.
type zapGooseLogger struct {
	logger *zap.SugaredLogger
}

func (l zapGooseLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l zapGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Errorf(format, v...)
}
