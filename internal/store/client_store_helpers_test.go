package store

import (
	"context"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/migrations"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// newTestStorages opens a migrated SQLite mirror in a temporary directory.
func newTestStorages(t *testing.T, compression string) *ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{
		DSN:         filepath.Join(t.TempDir(), "mirror.db"),
		Compression: compression,
	}

	storages, err := NewClientStorages(testContext(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

// newMockDB wraps a sqlmock connection into a SQLite-flavoured DB.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return newDB(conn, migrations.DialectSQLite, logger.Nop()), mock
}
