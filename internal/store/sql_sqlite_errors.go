package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteErrorClassifier implements [ErrorClassificator] for SQLite.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier].
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify reports busy and locked databases as [Retryable]; every other
// error, including constraint violations and I/O errors, is [NonRetryable].
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return NonRetryable
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return Retryable
	}

	return NonRetryable
}
