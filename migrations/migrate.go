// Package migrations holds the versioned schema for every supported database
// dialect and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedMigrations embed.FS

// goose keeps dialect and base FS in package globals.
var mu sync.Mutex

var gooseDialects = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "pgx",
}

// Migrate brings db up to the latest schema version for dialect, which is
// "sqlite" or "postgres".
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("migration error: unsupported dialect %q", dialect)
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.UpContext(ctx, db, dialect); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
