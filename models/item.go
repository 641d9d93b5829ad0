// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Item is the mirrored state of a single synchronized entity.
// It is the primary persistence model of the local mirror.
type Item struct {
	// CollectionID is the collection the item belongs to.
	CollectionID string `json:"collection_id"`

	// UID is the opaque identifier assigned by the remote service on first
	// creation. It never changes afterwards.
	UID string `json:"uid"`

	// Payload holds the decrypted item bytes. Interpretation belongs to
	// exporters. Empty for tombstones.
	Payload []byte `json:"payload,omitempty"`

	// RemoteStamp is the version marker issued by the remote service for the
	// last write accepted by it.
	RemoteStamp Stamp `json:"remote_stamp"`

	// Deleted marks a tombstone. The record is retained so that deletions
	// propagate to exporters.
	Deleted bool `json:"deleted"`

	// LocalRevision is assigned by the local store on every write and is
	// strictly increasing within a collection.
	LocalRevision int64 `json:"local_revision"`

	// Digest is the hex BLAKE2b-256 digest of Payload.
	Digest string `json:"digest,omitempty"`

	// UpdatedAt is the time of the last local write.
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteItem is one entry of a delta page as delivered by the remote service.
type RemoteItem struct {
	UID         string `json:"uid"`
	Payload     []byte `json:"payload,omitempty"`
	RemoteStamp Stamp  `json:"stamp"`
	Deleted     bool   `json:"deleted"`
}

// ToItem converts the remote representation into a local item of the given
// collection. LocalRevision and Digest are filled in by the store.
func (r RemoteItem) ToItem(collectionID string) Item {
	item := Item{
		CollectionID: collectionID,
		UID:          r.UID,
		RemoteStamp:  r.RemoteStamp,
		Deleted:      r.Deleted,
	}
	if !r.Deleted {
		item.Payload = r.Payload
	}
	return item
}
