package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// ConflictResolver decides what happens when a delivered remote item meets a
// pending local edit of the same uid. Implementations must be pure: the same
// inputs always give the same outcome.
type ConflictResolver interface {
	Resolve(pending models.PendingEdit, incoming models.RemoteItem) models.Outcome
}

// SyncCoordinator drives the per-collection state machine
// Idle → Fetching → Reconciling → Committing → Idle.
type SyncCoordinator interface {
	// Sync runs one full cycle for the collection. It returns
	// [ErrSyncInProgress] if a run of the same collection is active and
	// [ErrCollectionFailed] if the collection is in Failed state.
	Sync(ctx context.Context, collectionID string) (SyncReport, error)

	// SyncAll runs every configured collection that is not Failed, several at
	// a time. A failing collection does not stop the others; all errors are
	// joined.
	SyncAll(ctx context.Context) error

	// Status reports every known or configured collection.
	Status(ctx context.Context) ([]models.CollectionStatus, error)

	// Reset clears the Failed state so the collection takes part in
	// automatic runs again. The cursor is kept.
	Reset(ctx context.Context, collectionID string) error
}

// EditService stages local mutations for the next sync run.
type EditService interface {
	// Stage records an edit of one item, replacing any earlier pending edit of
	// the same uid. An edit that would not change the mirrored item is
	// dropped and ok is false.
	Stage(ctx context.Context, collectionID string, req models.EditRequest) (edit models.PendingEdit, ok bool, err error)

	// Pending lists the edits waiting for reconciliation.
	Pending(ctx context.Context, collectionID string) ([]models.PendingEdit, error)
}

// FeedService exposes the committed mirror to exporters.
type FeedService interface {
	Items(ctx context.Context, collectionID string, since int64, limit int) (models.ItemsResponse, error)
	Item(ctx context.Context, collectionID, uid string) (models.Item, error)
	Journal(ctx context.Context, collectionID string, since int64, limit int) (models.JournalResponse, error)
}

// ExportService copies committed changes into an external sink.
type ExportService interface {
	// ExportAll runs one export pass over every known collection.
	ExportAll(ctx context.Context) error
	// Export copies the journal of one collection past its checkpoint into
	// the sink, advances the checkpoint and compacts the journal.
	Export(ctx context.Context, collectionID string) (ExportReport, error)
}

// AppInfoService reports build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// ClientSyncJob defines the contract for a background worker that
// periodically runs a task such as SyncAll or ExportAll.
type ClientSyncJob interface {
	// Start launches the background goroutine. It runs every interval,
	// defaulting to 1 minute if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}

// SyncReport summarises one sync run.
type SyncReport struct {
	CollectionID string `json:"collection_id"`
	RunID        string `json:"run_id"`
	Cursor       string `json:"cursor"`
	Fetched      int    `json:"fetched"`
	Pushed       int    `json:"pushed"`
	Applied      int    `json:"applied"`
	Skipped      int    `json:"skipped"`
	Settled      int    `json:"settled"`
}

// ExportReport summarises one export pass of a collection.
type ExportReport struct {
	CollectionID string `json:"collection_id"`
	Exported     int    `json:"exported"`
	Revision     int64  `json:"revision"`
	Compacted    int64  `json:"compacted"`
}
