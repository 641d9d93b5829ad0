package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// Field name constants used to restrict validation to a subset of checks.
const (
	// FieldUID targets the item identifier.
	FieldUID = "uid"
	// FieldStamp targets the remote stamp of a delivered item.
	FieldStamp = "stamp"
	// FieldItems targets every item of a delta page.
	FieldItems = "items"
	// FieldNextCursor enforces a continuation cursor on pages with more data.
	FieldNextCursor = "next_cursor"
	// FieldPayload targets the payload/delete combination of an edit.
	FieldPayload = "payload"
	// FieldCollectionID targets the owning collection of an edit.
	FieldCollectionID = "collection_id"
	// FieldEditID targets the identifier of a pending edit.
	FieldEditID = "edit_id"
)

// SyncValidator checks data crossing the boundary of the sync engine:
// delta pages delivered by the remote service and edits staged locally.
type SyncValidator struct{}

// NewSyncValidator returns a [Validator] for delta pages, remote items, edit
// requests and pending edits.
func NewSyncValidator() Validator {
	return &SyncValidator{}
}

func (v *SyncValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.DeltaPage:
		return v.validateDeltaPage(ctx, value, fields...)
	case *models.DeltaPage:
		return v.validateDeltaPage(ctx, *value, fields...)

	case models.RemoteItem:
		return v.validateRemoteItem(ctx, value, fields...)
	case *models.RemoteItem:
		return v.validateRemoteItem(ctx, *value, fields...)

	case models.EditRequest:
		return v.validateEditRequest(ctx, value, fields...)
	case *models.EditRequest:
		return v.validateEditRequest(ctx, *value, fields...)

	case models.PendingEdit:
		return v.validatePendingEdit(ctx, value, fields...)
	case *models.PendingEdit:
		return v.validatePendingEdit(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncValidator) validateDeltaPage(ctx context.Context, page models.DeltaPage, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldItems, FieldNextCursor}
	}

	for _, f := range fields {
		switch f {
		case FieldItems:
			for i, item := range page.Items {
				if err := v.validateRemoteItem(ctx, item); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
			}
		case FieldNextCursor:
			if page.HasMore && page.NextCursor == "" {
				return ErrMissingNextCursor
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validateRemoteItem(ctx context.Context, item models.RemoteItem, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUID, FieldStamp}
	}

	for _, f := range fields {
		switch f {
		case FieldUID:
			if !validUID(item.UID) {
				return ErrInvalidUID
			}
		case FieldStamp:
			if item.RemoteStamp.IsZero() {
				return ErrInvalidStamp
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validateEditRequest(ctx context.Context, req models.EditRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUID, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldUID:
			if !validUID(req.UID) {
				return ErrInvalidUID
			}
		case FieldPayload:
			if err := validatePayload(req.Payload, req.Delete); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validatePendingEdit(ctx context.Context, edit models.PendingEdit, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEditID, FieldCollectionID, FieldUID, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldEditID:
			if edit.ID == "" {
				return ErrInvalidEditID
			}
		case FieldCollectionID:
			if strings.TrimSpace(edit.CollectionID) == "" {
				return ErrInvalidCollectionID
			}
		case FieldUID:
			if !validUID(edit.UID) {
				return ErrInvalidUID
			}
		case FieldPayload:
			if err := validatePayload(edit.NewPayload, edit.Delete); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validUID(uid string) bool {
	return strings.TrimSpace(uid) != "" && !strings.ContainsAny(uid, "/\x00")
}

func validatePayload(payload []byte, deleted bool) error {
	if deleted && len(payload) > 0 {
		return ErrPayloadOnDelete
	}
	if !deleted && payload == nil {
		return ErrEmptyEditPayload
	}
	return nil
}
