package models

import "time"

// PendingEdit is a local mutation not yet reconciled with the remote service.
// At most one pending edit exists per uid; staging a new one replaces it.
type PendingEdit struct {
	// ID identifies this particular edit. It changes on every replacement and
	// is used to remove an edit only if it was not replaced meanwhile.
	ID string `json:"id"`

	CollectionID string `json:"collection_id"`
	UID          string `json:"uid"`

	// BaseRemoteStamp is the remote stamp the edit was made against.
	BaseRemoteStamp Stamp `json:"base_remote_stamp"`

	// NewPayload is the edited content. Ignored when Delete is set.
	NewPayload []byte `json:"new_payload,omitempty"`

	// Delete requests a tombstone instead of a content change.
	Delete bool `json:"delete"`

	CreatedAt time.Time `json:"created_at"`
}
