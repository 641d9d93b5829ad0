package store

import (
	"context"
	"iter"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// ItemRepository is the local store of mirrored items. It owns Item state
// and assigns local revisions.
type ItemRepository interface {
	// Get returns the item, including tombstones, or ErrItemNotFound.
	Get(ctx context.Context, collectionID, uid string) (models.Item, error)
	// Upsert writes the item with a fresh local revision and returns it.
	// Tombstones clear the payload.
	Upsert(ctx context.Context, item models.Item) (int64, error)
	// ListSince yields items with a local revision greater than revision in
	// ascending revision order, reading pageSize rows at a time.
	ListSince(ctx context.Context, collectionID string, revision int64, pageSize int) iter.Seq2[models.Item, error]
}

// CursorRepository tracks the pull position and persisted sync state of
// every collection.
type CursorRepository interface {
	// Ensure registers the collection if it is unknown.
	Ensure(ctx context.Context, collectionID string) error
	// GetCursor returns the cursor of the last committed batch, or an empty
	// string for a collection that has never been synced.
	GetCursor(ctx context.Context, collectionID string) (string, error)
	// Advance stores a new cursor and sync time and clears any failure.
	Advance(ctx context.Context, collectionID, cursor string, at time.Time) error
	Get(ctx context.Context, collectionID string) (models.Collection, error)
	List(ctx context.Context) ([]models.Collection, error)
	// MarkFailed moves the collection to Failed with a reason.
	MarkFailed(ctx context.Context, collectionID, reason string, at time.Time) error
	// Reset clears the Failed state. The cursor is kept.
	Reset(ctx context.Context, collectionID string) error
}

// JournalRepository is the append-only change feed consumed by exporters.
type JournalRepository interface {
	Append(ctx context.Context, entry models.JournalEntry) error
	// ListSince returns up to limit entries with a resulting revision greater
	// than revision, ordered by revision.
	ListSince(ctx context.Context, collectionID string, revision int64, limit int) ([]models.JournalEntry, error)
	// Compact removes entries up to and including throughRevision, raises
	// the compaction floor of the collection and returns how many entries
	// were removed.
	Compact(ctx context.Context, collectionID string, throughRevision int64) (int64, error)
	// CompactedThrough returns the compaction floor of the collection, or 0
	// when nothing was ever compacted.
	CompactedThrough(ctx context.Context, collectionID string) (int64, error)
}

// PendingEditRepository holds local mutations awaiting reconciliation.
type PendingEditRepository interface {
	// Stage stores the edit, replacing any previous edit of the same uid.
	Stage(ctx context.Context, edit models.PendingEdit) error
	Get(ctx context.Context, collectionID, uid string) (models.PendingEdit, error)
	List(ctx context.Context, collectionID string) ([]models.PendingEdit, error)
	Count(ctx context.Context, collectionID string) (int, error)
	// Settle removes the edit, or swaps in replacement when not nil, only if
	// the stored edit still has editID. It reports whether a row changed.
	Settle(ctx context.Context, collectionID, uid, editID string, replacement *models.PendingEdit) (bool, error)
}

// ExportCheckpointRepository stores how far each exporter has read the
// journal of each collection.
type ExportCheckpointRepository interface {
	Get(ctx context.Context, exporter, collectionID string) (models.ExportCheckpoint, error)
	Save(ctx context.Context, checkpoint models.ExportCheckpoint) error
	// MinRevision returns the lowest checkpoint of the collection across all
	// exporters. ok is false when no exporter has a checkpoint.
	MinRevision(ctx context.Context, collectionID string) (revision int64, ok bool, err error)
}

// SyncCommitter writes the outcome of a sync batch as one atomic unit.
type SyncCommitter interface {
	Commit(ctx context.Context, batch CommitBatch) (CommitResult, error)
}

// ItemWrite is one item write of a commit batch together with the journal
// kind it is recorded under.
type ItemWrite struct {
	Item models.Item
	Kind models.JournalKind
}

// EditSettlement removes or replaces a pending edit that was part of the
// reconciled snapshot.
type EditSettlement struct {
	UID    string
	EditID string
	// Replacement re-queues a merged payload instead of removing the edit.
	Replacement *models.PendingEdit
}

// CommitBatch is everything a sync run writes after reconciliation.
type CommitBatch struct {
	CollectionID string
	// Cursor is the new pull position stored after the writes.
	Cursor      string
	SyncedAt    time.Time
	Writes      []ItemWrite
	Settlements []EditSettlement
}

// CommitResult reports what a commit actually changed.
type CommitResult struct {
	Entries []models.JournalEntry
	// Skipped counts writes whose stamp was not newer than the stored one.
	Skipped int
	// Settled counts pending edits removed or replaced.
	Settled int
}
