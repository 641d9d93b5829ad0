package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/migrations"
)

const (
	txRetryAttempts = 3
	txRetryDelay    = 50 * time.Millisecond
)

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is a database handle bound to one SQL dialect. It carries the query
// builder with the dialect's placeholder format and the driver error
// classifier.
type DB struct {
	*sql.DB
	dialect            string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, dialect string, log *logger.Logger) *DB {
	db := &DB{
		DB:      conn,
		dialect: dialect,
		logger:  log,
	}

	switch dialect {
	case migrations.DialectPostgres:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.errorClassificator = NewPostgresErrorClassifier()
	default:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		db.errorClassificator = NewSQLiteErrorClassifier()
	}

	return db
}

// NewConnect opens the mirror database. DSNs starting with postgres:// or
// postgresql:// select PostgreSQL, everything else is a SQLite file.
func NewConnect(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*DB, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return NewConnectPostgres(ctx, cfg.DSN, log)
	}

	return NewConnectSQLite(ctx, cfg.DSN, log)
}

// Dialect returns the database/sql driver name of the connection.
func (db *DB) Dialect() string {
	return db.dialect
}

// Migrate applies the embedded schema of the connection's dialect.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Migrate(ctx, db.DB, db.dialect)
}

// WithTx runs fn inside a transaction and commits on success or rolls back
// on error or panic. Transactions failing with a retryable driver error
// (busy database, serialization failure) are re-run a few times.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	backoff := retry.WithMaxRetries(txRetryAttempts, retry.NewConstant(txRetryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := db.withTx(ctx, fn)
		if err != nil && db.errorClassificator.Classify(err) == Retryable {
			db.logger.Warn().Err(err).Str("func", "DB.WithTx").Msg("retrying transaction")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (db *DB) withTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = storageErr(ErrCommitingTransaction, err)
		}
	}()

	return fn(ctx, tx)
}
