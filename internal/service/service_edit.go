package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/internal/validators"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type editService struct {
	items     store.ItemRepository
	edits     store.PendingEditRepository
	validator validators.Validator
	ids       *utils.UUIDGenerator

	logger *logger.Logger
}

// NewEditService returns the service staging local edits.
func NewEditService(storages *store.ClientStorages, log *logger.Logger) EditService {
	return &editService{
		items:     storages.Items,
		edits:     storages.PendingEdits,
		validator: validators.NewSyncValidator(),
		ids:       utils.NewUUIDGenerator(),
		logger:    log,
	}
}

// Stage implements [EditService]. An empty base stamp means the edit was made
// against the currently mirrored version of the item.
func (s *editService) Stage(ctx context.Context, collectionID string, req models.EditRequest) (models.PendingEdit, bool, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, req); err != nil {
		return models.PendingEdit{}, false, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	edit := models.PendingEdit{
		ID:              s.ids.Generate(),
		CollectionID:    collectionID,
		UID:             req.UID,
		BaseRemoteStamp: req.BaseRemoteStamp,
		Delete:          req.Delete,
		CreatedAt:       time.Now(),
	}
	if !req.Delete {
		edit.NewPayload = req.Payload
	}
	if err := s.validator.Validate(ctx, edit); err != nil {
		return models.PendingEdit{}, false, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	current, err := s.items.Get(ctx, collectionID, req.UID)
	switch {
	case errors.Is(err, store.ErrItemNotFound):
	case err != nil:
		return models.PendingEdit{}, false, err
	default:
		if edit.BaseRemoteStamp.IsZero() {
			edit.BaseRemoteStamp = current.RemoteStamp
		}
		if isNoOpEdit(edit, current) {
			if err = s.discardPending(ctx, collectionID, req.UID); err != nil {
				return models.PendingEdit{}, false, err
			}
			log.Debug().Str("collection_id", collectionID).Str("uid", req.UID).Msg("edit matches mirrored item, dropped")
			return edit, false, nil
		}
	}

	if err = s.edits.Stage(ctx, edit); err != nil {
		return models.PendingEdit{}, false, err
	}

	log.Info().
		Str("collection_id", collectionID).
		Str("uid", edit.UID).
		Str("edit_id", edit.ID).
		Bool("delete", edit.Delete).
		Msg("edit staged")

	return edit, true, nil
}

// discardPending removes an earlier edit that the new no-op edit reverts.
func (s *editService) discardPending(ctx context.Context, collectionID, uid string) error {
	previous, err := s.edits.Get(ctx, collectionID, uid)
	if errors.Is(err, store.ErrPendingEditNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.edits.Settle(ctx, collectionID, uid, previous.ID, nil)
	return err
}

func (s *editService) Pending(ctx context.Context, collectionID string) ([]models.PendingEdit, error) {
	return s.edits.List(ctx, collectionID)
}

// isNoOpEdit reports whether applying edit would leave item unchanged.
func isNoOpEdit(edit models.PendingEdit, item models.Item) bool {
	if edit.BaseRemoteStamp != item.RemoteStamp {
		return false
	}
	if edit.Delete {
		return item.Deleted
	}
	return !item.Deleted && utils.Digest(edit.NewPayload) == item.Digest
}
