package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type exportCheckpointRepository struct {
	db *DB
	q  DBTX
}

// NewExportCheckpointRepository returns the SQL store of exporter positions.
func NewExportCheckpointRepository(db *DB) ExportCheckpointRepository {
	return &exportCheckpointRepository{db: db, q: db.DB}
}

// Get returns the checkpoint, or a zero-revision checkpoint when the
// exporter has not read the collection yet.
func (r *exportCheckpointRepository) Get(ctx context.Context, exporter, collectionID string) (models.ExportCheckpoint, error) {
	query, args, err := buildSelectCheckpointQuery(r.db.builder, exporter, collectionID)
	if err != nil {
		return models.ExportCheckpoint{}, storageErr(ErrBuildingSQLQuery, err)
	}

	var checkpoint models.ExportCheckpoint
	err = r.q.QueryRowContext(ctx, query, args...).Scan(
		&checkpoint.Exporter,
		&checkpoint.CollectionID,
		&checkpoint.Revision,
		&checkpoint.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ExportCheckpoint{Exporter: exporter, CollectionID: collectionID}, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "exportCheckpointRepository.Get").
			Str("exporter", exporter).
			Str("collection_id", collectionID).
			Msg("failed to get export checkpoint")
		return models.ExportCheckpoint{}, storageErr(ErrScanningRow, err)
	}

	return checkpoint, nil
}

func (r *exportCheckpointRepository) Save(ctx context.Context, checkpoint models.ExportCheckpoint) error {
	if err := ensureCollection(ctx, r.db, r.q, checkpoint.CollectionID); err != nil {
		return err
	}

	query, args, err := buildSaveCheckpointQuery(r.db.builder, checkpoint)
	if err != nil {
		return storageErr(ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "exportCheckpointRepository.Save").
			Str("exporter", checkpoint.Exporter).
			Str("collection_id", checkpoint.CollectionID).
			Msg("failed to save export checkpoint")
		return storageErr(ErrExecutingQuery, err)
	}

	return nil
}

func (r *exportCheckpointRepository) MinRevision(ctx context.Context, collectionID string) (int64, bool, error) {
	query, args, err := buildMinCheckpointQuery(r.db.builder, collectionID)
	if err != nil {
		return 0, false, storageErr(ErrBuildingSQLQuery, err)
	}

	var revision sql.NullInt64
	if err = r.q.QueryRowContext(ctx, query, args...).Scan(&revision); err != nil {
		return 0, false, storageErr(ErrScanningRow, err)
	}

	return revision.Int64, revision.Valid, nil
}
