package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type cursorRepository struct {
	db *DB
	q  DBTX
}

// NewCursorRepository returns the SQL cursor tracker.
func NewCursorRepository(db *DB) CursorRepository {
	return &cursorRepository{db: db, q: db.DB}
}

func (r *cursorRepository) Ensure(ctx context.Context, collectionID string) error {
	return ensureCollection(ctx, r.db, r.q, collectionID)
}

func (r *cursorRepository) GetCursor(ctx context.Context, collectionID string) (string, error) {
	collection, err := r.Get(ctx, collectionID)
	if errors.Is(err, ErrCollectionNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return collection.Cursor, nil
}

func (r *cursorRepository) Advance(ctx context.Context, collectionID, cursor string, at time.Time) error {
	query, args, err := buildAdvanceCursorQuery(r.db.builder, collectionID, cursor, at)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	return r.execOnCollection(ctx, "cursorRepository.Advance", collectionID, query, args)
}

func (r *cursorRepository) Get(ctx context.Context, collectionID string) (models.Collection, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectCollectionQuery(r.db.builder, collectionID)
	if err != nil {
		return models.Collection{}, storageErr(ErrBuildingSQLQuery, err)
	}

	collection, err := scanCollection(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collection{}, ErrCollectionNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "cursorRepository.Get").
			Str("collection_id", collectionID).
			Msg("failed to get collection")
		return models.Collection{}, storageErr(ErrScanningRow, err)
	}

	return collection, nil
}

func (r *cursorRepository) List(ctx context.Context) ([]models.Collection, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAllCollectionsQuery(r.db.builder)
	if err != nil {
		return nil, storageErr(ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "cursorRepository.List").Msg("failed to query collections")
		return nil, storageErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		collection, scanErr := scanCollection(rows)
		if scanErr != nil {
			return nil, storageErr(ErrScanningRow, scanErr)
		}
		collections = append(collections, collection)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "cursorRepository.List").Msg("error occurred during rows iteration")
		return nil, storageErr(ErrExecutingQuery, err)
	}

	return collections, nil
}

func (r *cursorRepository) MarkFailed(ctx context.Context, collectionID, reason string, at time.Time) error {
	if err := r.Ensure(ctx, collectionID); err != nil {
		return err
	}

	query, args, err := buildMarkFailedQuery(r.db.builder, collectionID, reason, at)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	return r.execOnCollection(ctx, "cursorRepository.MarkFailed", collectionID, query, args)
}

func (r *cursorRepository) Reset(ctx context.Context, collectionID string) error {
	query, args, err := buildResetCollectionQuery(r.db.builder, collectionID)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	return r.execOnCollection(ctx, "cursorRepository.Reset", collectionID, query, args)
}

// execOnCollection runs an UPDATE of a single collection row and reports
// ErrCollectionNotFound when nothing matched.
func (r *cursorRepository) execOnCollection(ctx context.Context, fn, collectionID, query string, args []any) error {
	log := logger.FromContext(ctx)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("collection_id", collectionID).Msg("failed to update collection")
		return storageErr(ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr(ErrExecutingQuery, err)
	}
	if affected == 0 {
		log.Warn().Str("func", fn).Str("collection_id", collectionID).Msg("no rows affected: collection not found")
		return ErrCollectionNotFound
	}

	return nil
}

func ensureCollection(ctx context.Context, db *DB, q DBTX, collectionID string) error {
	query, args, err := buildEnsureCollectionQuery(db.builder, collectionID)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ensureCollection").
			Str("collection_id", collectionID).
			Msg("failed to register collection")
		return storageErr(ErrExecutingQuery, err)
	}

	return nil
}

func scanCollection(row rowScanner) (models.Collection, error) {
	var (
		collection   models.Collection
		state        string
		failedAt     sql.NullTime
		lastSyncedAt sql.NullTime
	)

	err := row.Scan(
		&collection.ID,
		&collection.Cursor,
		&collection.Revision,
		&state,
		&collection.FailureReason,
		&failedAt,
		&lastSyncedAt,
		&collection.CompactedThrough,
	)
	if err != nil {
		return models.Collection{}, err
	}

	collection.State = models.SyncState(state)
	if failedAt.Valid {
		t := failedAt.Time
		collection.FailedAt = &t
	}
	if lastSyncedAt.Valid {
		t := lastSyncedAt.Time
		collection.LastSyncedAt = &t
	}

	return collection, nil
}
