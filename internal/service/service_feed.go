package service

import (
	"context"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	defaultFeedLimit = 100
	maxFeedLimit     = 1000
)

type feedService struct {
	items   store.ItemRepository
	journal store.JournalRepository

	logger *logger.Logger
}

// NewFeedService returns the read side of the mirror used by exporters.
func NewFeedService(storages *store.ClientStorages, log *logger.Logger) FeedService {
	return &feedService{
		items:   storages.Items,
		journal: storages.Journal,
		logger:  log,
	}
}

// Items returns up to limit items changed after revision since. Next is the
// revision to continue from and equals since when nothing was returned.
func (s *feedService) Items(ctx context.Context, collectionID string, since int64, limit int) (models.ItemsResponse, error) {
	limit = clampLimit(limit)

	resp := models.ItemsResponse{Items: make([]models.Item, 0), Next: since}
	for item, err := range s.items.ListSince(ctx, collectionID, since, limit) {
		if err != nil {
			return models.ItemsResponse{}, err
		}

		resp.Items = append(resp.Items, item)
		resp.Next = item.LocalRevision
		if len(resp.Items) == limit {
			break
		}
	}
	resp.Length = len(resp.Items)

	return resp, nil
}

func (s *feedService) Item(ctx context.Context, collectionID, uid string) (models.Item, error) {
	return s.items.Get(ctx, collectionID, uid)
}

// Journal returns up to limit entries after revision since. A since below
// the compaction floor yields a *JournalCompactedError instead of a page
// with a silent gap. The floor is read after the page because compaction
// deletes entries and raises the floor in one transaction.
func (s *feedService) Journal(ctx context.Context, collectionID string, since int64, limit int) (models.JournalResponse, error) {
	entries, err := s.journal.ListSince(ctx, collectionID, since, clampLimit(limit))
	if err != nil {
		return models.JournalResponse{}, err
	}

	floor, err := s.journal.CompactedThrough(ctx, collectionID)
	if err != nil {
		return models.JournalResponse{}, err
	}
	if since < floor {
		return models.JournalResponse{}, &JournalCompactedError{CompactedThrough: floor}
	}

	resp := models.JournalResponse{Entries: entries, Next: since, Length: len(entries)}
	if resp.Entries == nil {
		resp.Entries = make([]models.JournalEntry, 0)
	}
	if len(entries) > 0 {
		resp.Next = entries[len(entries)-1].ResultingLocalRevision
	}

	return resp, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultFeedLimit
	case limit > maxFeedLimit:
		return maxFeedLimit
	default:
		return limit
	}
}
