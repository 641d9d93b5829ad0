package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/MKhiriev/go-mirror-keeper/internal/export"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const exportPageSize = 200

type exportService struct {
	items       store.ItemRepository
	journal     store.JournalRepository
	cursors     store.CursorRepository
	checkpoints store.ExportCheckpointRepository

	sink     export.Sink
	pageSize int

	logger *logger.Logger
}

// NewExportService returns a service that replays committed journal entries
// into sink.
func NewExportService(storages *store.ClientStorages, sink export.Sink, log *logger.Logger) ExportService {
	return &exportService{
		items:       storages.Items,
		journal:     storages.Journal,
		cursors:     storages.Cursors,
		checkpoints: storages.Checkpoints,
		sink:        sink,
		pageSize:    exportPageSize,
		logger:      log,
	}
}

// ExportAll exports every known collection. A failing collection does not
// stop the others.
func (s *exportService) ExportAll(ctx context.Context) error {
	collections, err := s.cursors.List(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	var errs []error
	for _, collection := range collections {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err = s.Export(ctx, collection.ID); err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", collection.ID, err))
		}
	}

	return errors.Join(errs...)
}

// Export pushes the current state of every item named by journal entries
// past the sink checkpoint. The checkpoint is saved after each page, so an
// interrupted pass resumes where it stopped.
func (s *exportService) Export(ctx context.Context, collectionID string) (ExportReport, error) {
	log := s.logger.With().
		Str("collection_id", collectionID).
		Str("sink", s.sink.Name()).
		Logger()

	report := ExportReport{CollectionID: collectionID}

	checkpoint, err := s.checkpoints.Get(ctx, s.sink.Name(), collectionID)
	if err != nil {
		return report, fmt.Errorf("get checkpoint: %w", err)
	}
	report.Revision = checkpoint.Revision

	for {
		entries, err := s.journal.ListSince(ctx, collectionID, checkpoint.Revision, s.pageSize)
		if err != nil {
			return report, fmt.Errorf("list journal: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		exported, err := s.exportPage(ctx, collectionID, entries)
		report.Exported += exported
		if err != nil {
			return report, err
		}

		checkpoint.Revision = entries[len(entries)-1].ResultingLocalRevision
		checkpoint.UpdatedAt = time.Now().UTC()
		if err = s.checkpoints.Save(ctx, checkpoint); err != nil {
			return report, fmt.Errorf("save checkpoint: %w", err)
		}
		report.Revision = checkpoint.Revision

		if len(entries) < s.pageSize {
			break
		}
	}

	through, ok, err := s.checkpoints.MinRevision(ctx, collectionID)
	if err != nil {
		return report, fmt.Errorf("min checkpoint: %w", err)
	}
	if ok && through > 0 {
		report.Compacted, err = s.journal.Compact(ctx, collectionID, through)
		if err != nil {
			return report, fmt.Errorf("compact journal: %w", err)
		}
	}

	if report.Exported > 0 || report.Compacted > 0 {
		log.Info().
			Int("exported", report.Exported).
			Int64("revision", report.Revision).
			Int64("compacted", report.Compacted).
			Msg("collection exported")
	}

	return report, nil
}

// exportPage writes each uid of the page once, using the item state at the
// time of the export.
func (s *exportService) exportPage(ctx context.Context, collectionID string, entries []models.JournalEntry) (int, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	exported := 0

	for _, entry := range entries {
		if !seen.Add(entry.UID) {
			continue
		}

		item, err := s.items.Get(ctx, collectionID, entry.UID)
		switch {
		case errors.Is(err, store.ErrItemNotFound):
			continue
		case err != nil:
			return exported, fmt.Errorf("get item %s: %w", entry.UID, err)
		}

		if item.Deleted {
			err = s.sink.Delete(ctx, collectionID, item.UID)
		} else {
			err = s.sink.Put(ctx, item)
		}
		if err != nil {
			return exported, fmt.Errorf("export item %s: %w", item.UID, err)
		}
		exported++
	}

	return exported, nil
}
