package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidCollectionID = errors.New("invalid collection id")
	ErrInvalidUID          = errors.New("invalid item uid")
	ErrInvalidStamp        = errors.New("invalid remote stamp")
	ErrMissingNextCursor   = errors.New("page has more items but no next cursor")
	ErrEmptyEditPayload    = errors.New("edit must carry a payload or delete the item")
	ErrPayloadOnDelete     = errors.New("delete edit must not carry a payload")
	ErrInvalidEditID       = errors.New("invalid edit id")
)
