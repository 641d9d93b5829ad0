package store

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type committer struct {
	db          *DB
	compression string
}

// NewSyncCommitter returns a [SyncCommitter] writing every batch in a single
// database transaction.
func NewSyncCommitter(db *DB, compression string) SyncCommitter {
	return &committer{db: db, compression: compression}
}

// Commit applies item writes, appends their journal entries, settles pending
// edits and advances the cursor. Either all of it becomes visible or none.
// A write whose stamp is not newer than the stored one is skipped and gets
// no journal entry. A settlement whose edit was replaced meanwhile is left
// untouched.
func (c *committer) Commit(ctx context.Context, batch CommitBatch) (CommitResult, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "committer.Commit").
		Str("collection_id", batch.CollectionID).
		Logger()

	syncedAt := batch.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	var result CommitResult
	err := c.db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		// WithTx may re-run this function, start from scratch each time.
		result = CommitResult{}

		items := newItemRepository(c.db, tx, c.compression)
		journal := &journalRepository{db: c.db, q: tx}
		edits := &pendingEditRepository{db: c.db, q: tx}
		cursors := &cursorRepository{db: c.db, q: tx}

		if err := cursors.Ensure(ctx, batch.CollectionID); err != nil {
			return err
		}

		for _, write := range batch.Writes {
			item := write.Item
			item.CollectionID = batch.CollectionID

			stored, err := items.Get(ctx, batch.CollectionID, item.UID)
			switch {
			case errors.Is(err, ErrItemNotFound):
			case err != nil:
				return err
			case !item.RemoteStamp.NewerThan(stored.RemoteStamp):
				result.Skipped++
				continue
			}

			item.UpdatedAt = syncedAt
			written, err := items.upsert(ctx, item)
			if err != nil {
				return err
			}

			entry := models.JournalEntry{
				CollectionID:           batch.CollectionID,
				UID:                    item.UID,
				Kind:                   write.Kind,
				ResultingLocalRevision: written.LocalRevision,
				Timestamp:              syncedAt,
			}
			if err = journal.Append(ctx, entry); err != nil {
				return err
			}
			result.Entries = append(result.Entries, entry)
		}

		for _, settlement := range batch.Settlements {
			settled, err := edits.Settle(ctx, batch.CollectionID, settlement.UID, settlement.EditID, settlement.Replacement)
			if err != nil {
				return err
			}
			if settled {
				result.Settled++
			}
		}

		return cursors.Advance(ctx, batch.CollectionID, batch.Cursor, syncedAt)
	})
	if err != nil {
		log.Err(err).Msg("sync batch was rolled back")
		return CommitResult{}, err
	}

	log.Debug().
		Int("written", len(result.Entries)).
		Int("skipped", result.Skipped).
		Int("settled", result.Settled).
		Str("cursor", batch.Cursor).
		Msg("sync batch committed")

	return result, nil
}
