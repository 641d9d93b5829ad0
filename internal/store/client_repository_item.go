package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const defaultListPageSize = 100

type rowScanner interface {
	Scan(dest ...any) error
}

type itemRepository struct {
	db    *DB
	q     DBTX
	codec payloadCodec
}

// NewItemRepository returns the SQL item store. compression selects the
// payload codec of new writes ("none" or "snappy").
func NewItemRepository(db *DB, compression string) ItemRepository {
	return newItemRepository(db, db.DB, compression)
}

func newItemRepository(db *DB, q DBTX, compression string) *itemRepository {
	return &itemRepository{
		db:    db,
		q:     q,
		codec: newPayloadCodec(compression),
	}
}

func (r *itemRepository) Get(ctx context.Context, collectionID, uid string) (models.Item, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectItemQuery(r.db.builder, collectionID, uid)
	if err != nil {
		return models.Item{}, storageErr(ErrBuildingSQLQuery, err)
	}

	item, err := scanItem(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "itemRepository.Get").
			Str("collection_id", collectionID).
			Str("uid", uid).
			Msg("failed to get item")
		return models.Item{}, storageErr(ErrScanningRow, err)
	}

	return item, nil
}

// Upsert runs revision allocation and the write in one transaction unless
// the repository is already bound to one.
func (r *itemRepository) Upsert(ctx context.Context, item models.Item) (int64, error) {
	if _, inTx := r.q.(*sql.Tx); inTx {
		stored, err := r.upsert(ctx, item)
		return stored.LocalRevision, err
	}

	var revision int64
	err := r.db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		stored, err := newItemRepository(r.db, tx, r.codec.name).upsert(ctx, item)
		revision = stored.LocalRevision
		return err
	})
	if err != nil {
		return 0, err
	}

	return revision, nil
}

func (r *itemRepository) upsert(ctx context.Context, item models.Item) (models.Item, error) {
	log := logger.FromContext(ctx)

	revision, err := nextRevision(ctx, r.db, r.q, item.CollectionID)
	if err != nil {
		return models.Item{}, err
	}

	item.LocalRevision = revision
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	if item.Deleted {
		item.Payload = nil
		item.Digest = ""
	} else {
		item.Digest = utils.Digest(item.Payload)
	}

	payload, codec := r.codec.encode(item.Payload)
	query, args, err := buildUpsertItemQuery(r.db.builder, item, payload, codec)
	if err != nil {
		return models.Item{}, storageErr(ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "itemRepository.upsert").
			Str("collection_id", item.CollectionID).
			Str("uid", item.UID).
			Msg("failed to execute upsert for item")
		return models.Item{}, storageErr(ErrExecutingQuery, err)
	}

	return item, nil
}

func (r *itemRepository) ListSince(ctx context.Context, collectionID string, revision int64, pageSize int) iter.Seq2[models.Item, error] {
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}

	return func(yield func(models.Item, error) bool) {
		next := revision
		for {
			page, err := r.listPage(ctx, collectionID, next, pageSize)
			if err != nil {
				yield(models.Item{}, err)
				return
			}

			for _, item := range page {
				if !yield(item, nil) {
					return
				}
				next = item.LocalRevision
			}

			if len(page) < pageSize {
				return
			}
		}
	}
}

// listPage reads one page fully and closes the rows before returning so
// that callers may touch the database while iterating.
func (r *itemRepository) listPage(ctx context.Context, collectionID string, revision int64, limit int) ([]models.Item, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectItemsSinceQuery(r.db.builder, collectionID, revision, limit)
	if err != nil {
		return nil, storageErr(ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "itemRepository.listPage").
			Str("collection_id", collectionID).
			Int64("since", revision).
			Msg("failed to query items")
		return nil, storageErr(ErrExecutingQuery, err)
	}
	defer rows.Close()

	items := make([]models.Item, 0, limit)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, storageErr(ErrScanningRow, scanErr)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "itemRepository.listPage").
			Str("collection_id", collectionID).
			Msg("error occurred during rows iteration")
		return nil, storageErr(ErrExecutingQuery, err)
	}

	return items, nil
}

func scanItem(row rowScanner) (models.Item, error) {
	var (
		item    models.Item
		payload []byte
		codec   string
		stamp   string
	)

	err := row.Scan(
		&item.CollectionID,
		&item.UID,
		&payload,
		&codec,
		&stamp,
		&item.Deleted,
		&item.LocalRevision,
		&item.Digest,
		&item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, err
	}

	decoded, err := decodePayload(payload, codec)
	if err != nil {
		return models.Item{}, fmt.Errorf("item %s/%s: %w", item.CollectionID, item.UID, err)
	}
	item.Payload = decoded
	item.RemoteStamp = models.Stamp(stamp)

	return item, nil
}

// nextRevision bumps the collection's revision counter, registering the
// collection first when needed.
func nextRevision(ctx context.Context, db *DB, q DBTX, collectionID string) (int64, error) {
	if err := ensureCollection(ctx, db, q, collectionID); err != nil {
		return 0, err
	}

	query, args, err := buildNextRevisionQuery(db.builder, collectionID)
	if err != nil {
		return 0, storageErr(ErrBuildingSQLQuery, err)
	}

	var revision int64
	if err = q.QueryRowContext(ctx, query, args...).Scan(&revision); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "nextRevision").
			Str("collection_id", collectionID).
			Msg("failed to allocate local revision")
		return 0, storageErr(ErrExecutingQuery, err)
	}

	return revision, nil
}
