package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type pendingEditRepository struct {
	db *DB
	q  DBTX
}

// NewPendingEditRepository returns the SQL store of local edits.
func NewPendingEditRepository(db *DB) PendingEditRepository {
	return &pendingEditRepository{db: db, q: db.DB}
}

func (r *pendingEditRepository) Stage(ctx context.Context, edit models.PendingEdit) error {
	log := logger.FromContext(ctx)

	if err := ensureCollection(ctx, r.db, r.q, edit.CollectionID); err != nil {
		return err
	}

	query, args, err := buildStagePendingEditQuery(r.db.builder, edit)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "pendingEditRepository.Stage").
			Str("collection_id", edit.CollectionID).
			Str("uid", edit.UID).
			Msg("failed to stage pending edit")
		return storageErr(ErrExecutingQuery, err)
	}

	return nil
}

func (r *pendingEditRepository) Get(ctx context.Context, collectionID, uid string) (models.PendingEdit, error) {
	query, args, err := buildSelectPendingEditQuery(r.db.builder, collectionID, uid)
	if err != nil {
		return models.PendingEdit{}, storageErr(ErrBuildingSQLQuery, err)
	}

	edit, err := scanPendingEdit(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PendingEdit{}, ErrPendingEditNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingEditRepository.Get").
			Str("collection_id", collectionID).
			Str("uid", uid).
			Msg("failed to get pending edit")
		return models.PendingEdit{}, storageErr(ErrScanningRow, err)
	}

	return edit, nil
}

func (r *pendingEditRepository) List(ctx context.Context, collectionID string) ([]models.PendingEdit, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectPendingEditsQuery(r.db.builder, collectionID)
	if err != nil {
		return nil, storageErr(ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingEditRepository.List").
			Str("collection_id", collectionID).
			Msg("failed to query pending edits")
		return nil, storageErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var edits []models.PendingEdit
	for rows.Next() {
		edit, scanErr := scanPendingEdit(rows)
		if scanErr != nil {
			return nil, storageErr(ErrScanningRow, scanErr)
		}
		edits = append(edits, edit)
	}

	if err = rows.Err(); err != nil {
		return nil, storageErr(ErrExecutingQuery, err)
	}

	return edits, nil
}

func (r *pendingEditRepository) Count(ctx context.Context, collectionID string) (int, error) {
	query, args, err := buildCountPendingEditsQuery(r.db.builder, collectionID)
	if err != nil {
		return 0, storageErr(ErrBuildingSQLQuery, err)
	}

	var count int
	if err = r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageErr(ErrScanningRow, err)
	}

	return count, nil
}

func (r *pendingEditRepository) Settle(ctx context.Context, collectionID, uid, editID string, replacement *models.PendingEdit) (bool, error) {
	log := logger.FromContext(ctx)

	var (
		query string
		args  []any
		err   error
	)
	if replacement != nil {
		query, args, err = buildReplacePendingEditQuery(r.db.builder, editID, *replacement)
	} else {
		query, args, err = buildDeletePendingEditQuery(r.db.builder, collectionID, uid, editID)
	}
	if err != nil {
		return false, storageErr(ErrBuildingSQLQuery, err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingEditRepository.Settle").
			Str("collection_id", collectionID).
			Str("uid", uid).
			Msg("failed to settle pending edit")
		return false, storageErr(ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr(ErrExecutingQuery, err)
	}

	return affected > 0, nil
}

func scanPendingEdit(row rowScanner) (models.PendingEdit, error) {
	var (
		edit  models.PendingEdit
		stamp string
	)

	err := row.Scan(
		&edit.CollectionID,
		&edit.UID,
		&edit.ID,
		&stamp,
		&edit.NewPayload,
		&edit.Delete,
		&edit.CreatedAt,
	)
	if err != nil {
		return models.PendingEdit{}, err
	}
	edit.BaseRemoteStamp = models.Stamp(stamp)

	return edit, nil
}
