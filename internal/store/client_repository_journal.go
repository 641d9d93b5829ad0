package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type journalRepository struct {
	db *DB
	q  DBTX
}

// NewJournalRepository returns the SQL change journal.
func NewJournalRepository(db *DB) JournalRepository {
	return &journalRepository{db: db, q: db.DB}
}

func (r *journalRepository) Append(ctx context.Context, entry models.JournalEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertJournalEntryQuery(r.db.builder, entry)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "journalRepository.Append").
			Str("collection_id", entry.CollectionID).
			Int64("revision", entry.ResultingLocalRevision).
			Msg("failed to append journal entry")
		return storageErr(ErrExecutingQuery, err)
	}

	return nil
}

func (r *journalRepository) ListSince(ctx context.Context, collectionID string, revision int64, limit int) ([]models.JournalEntry, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		limit = defaultListPageSize
	}

	query, args, err := buildSelectJournalSinceQuery(r.db.builder, collectionID, revision, limit)
	if err != nil {
		return nil, storageErr(ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "journalRepository.ListSince").
			Str("collection_id", collectionID).
			Msg("failed to query journal")
		return nil, storageErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0, limit)
	for rows.Next() {
		var (
			entry models.JournalEntry
			kind  string
		)
		scanErr := rows.Scan(
			&entry.CollectionID,
			&entry.UID,
			&kind,
			&entry.ResultingLocalRevision,
			&entry.Timestamp,
		)
		if scanErr != nil {
			return nil, storageErr(ErrScanningRow, scanErr)
		}
		entry.Kind = models.JournalKind(kind)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "journalRepository.ListSince").
			Str("collection_id", collectionID).
			Msg("error occurred during rows iteration")
		return nil, storageErr(ErrExecutingQuery, err)
	}

	return entries, nil
}

// Compact deletes the entries and raises the compaction floor in one
// transaction so that readers never observe a gap without a floor.
func (r *journalRepository) Compact(ctx context.Context, collectionID string, throughRevision int64) (int64, error) {
	log := logger.FromContext(ctx)

	deleteQuery, deleteArgs, err := buildCompactJournalQuery(r.db.builder, collectionID, throughRevision)
	if err != nil {
		return 0, storageErr(ErrBuildingSQLQuery, err)
	}
	floorQuery, floorArgs, err := buildRaiseCompactionFloorQuery(r.db.builder, collectionID, throughRevision)
	if err != nil {
		return 0, storageErr(ErrBuildingSQLQuery, err)
	}

	var removed int64
	err = r.db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		result, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...)
		if err != nil {
			return storageErr(ErrExecutingQuery, err)
		}
		if removed, err = result.RowsAffected(); err != nil {
			return storageErr(ErrExecutingQuery, err)
		}

		if _, err = tx.ExecContext(ctx, floorQuery, floorArgs...); err != nil {
			return storageErr(ErrExecutingQuery, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "journalRepository.Compact").
			Str("collection_id", collectionID).
			Int64("through", throughRevision).
			Msg("failed to compact journal")
		return 0, err
	}

	return removed, nil
}

func (r *journalRepository) CompactedThrough(ctx context.Context, collectionID string) (int64, error) {
	query, args, err := buildSelectCompactionFloorQuery(r.db.builder, collectionID)
	if err != nil {
		return 0, storageErr(ErrBuildingSQLQuery, err)
	}

	var floor int64
	err = r.q.QueryRowContext(ctx, query, args...).Scan(&floor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "journalRepository.CompactedThrough").
			Str("collection_id", collectionID).
			Msg("failed to read compaction floor")
		return 0, storageErr(ErrScanningRow, err)
	}

	return floor, nil
}
