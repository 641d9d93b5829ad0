// Package migrations embeds the schema of the local mirror for every
// supported SQL dialect and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Dialect names accepted by [Migrate]. They match the database/sql driver
// names.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "pgx"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedMigrations embed.FS

// Migrate applies all pending migrations of the given dialect to db.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	var (
		gooseDialect goose.Dialect
		dir          string
	)
	switch dialect {
	case DialectSQLite:
		gooseDialect, dir = goose.DialectSQLite3, "sqlite"
	case DialectPostgres:
		gooseDialect, dir = goose.DialectPostgres, "postgres"
	default:
		return fmt.Errorf("migration error: unsupported dialect %q", dialect)
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("migration error opening %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration error creating provider: %w", err)
	}

	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
