package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/migrations"
)

const sqliteDefaultParams = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// NewConnectSQLite opens a file-backed SQLite mirror, creating the file and
// its directory when missing. The pool is limited to one connection so that
// writers never contend for the database lock.
func NewConnectSQLite(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(dsn); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open(migrations.DialectSQLite, sqliteDSN(dsn))
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		_ = conn.Close()
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("dsn", dsn).Msg("connected to database successfully")

	return newDB(conn, migrations.DialectSQLite, log), nil
}

// sqliteDSN appends busy timeout, WAL and foreign key parameters unless the
// DSN already carries its own query string.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	if strings.HasPrefix(dsn, "file:") {
		return dsn + "?" + sqliteDefaultParams
	}
	return "file:" + dsn + "?" + sqliteDefaultParams
}

func createLocalDBFileIfNotExists(dsn string) error {
	if strings.HasPrefix(dsn, "file:") {
		return nil
	}

	if _, err := os.Stat(dsn); os.IsNotExist(err) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err = os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("error creating DB directory: %w", err)
			}
		}
		f, err := os.OpenFile(dsn, os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		_ = f.Close()
	}

	return nil
}
