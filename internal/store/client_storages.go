package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

// ClientStorages groups the repositories of the local mirror into a single
// value that can be passed around the service layer. All repositories share
// one [DB].
type ClientStorages struct {
	DB           *DB
	Items        ItemRepository
	Cursors      CursorRepository
	Journal      JournalRepository
	PendingEdits PendingEditRepository
	Checkpoints  ExportCheckpointRepository
	Committer    SyncCommitter
}

// NewClientStorages initialises the client storage layer. It performs the
// following steps:
//  1. Opens the database named by cfg.DSN, creating a SQLite file if it does
//     not exist yet.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Wires every repository to the connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newClientStorages(db, cfg.Compression), nil
}

func newClientStorages(db *DB, compression string) *ClientStorages {
	return &ClientStorages{
		DB:           db,
		Items:        NewItemRepository(db, compression),
		Cursors:      NewCursorRepository(db),
		Journal:      NewJournalRepository(db),
		PendingEdits: NewPendingEditRepository(db),
		Checkpoints:  NewExportCheckpointRepository(db),
		Committer:    NewSyncCommitter(db, compression),
	}
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	return s.DB.Close()
}
