// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncState is a stage of the per-collection sync state machine.
type SyncState string

const (
	// StateIdle means the collection awaits the next trigger.
	StateIdle SyncState = "idle"
	// StateFetching means delta pages are being pulled from the remote.
	StateFetching SyncState = "fetching"
	// StateReconciling means fetched items are being matched against
	// pending local edits.
	StateReconciling SyncState = "reconciling"
	// StateCommitting means accepted outcomes are being written.
	StateCommitting SyncState = "committing"
	// StateFailed means the collection hit an unrecoverable error and is
	// excluded from automatic runs until reset.
	StateFailed SyncState = "failed"
)

// Collection is a named grouping of items sharing one cursor.
type Collection struct {
	// ID is the collection identifier used by the remote service.
	ID string `json:"collection_id"`

	// Cursor is the opaque pull-position token of the last committed batch.
	// Empty means the collection has never been synced.
	Cursor string `json:"cursor"`

	// Revision is the highest local revision assigned in this collection.
	Revision int64 `json:"revision"`

	// CompactedThrough is the highest journal revision removed by
	// compaction. Journal reads starting below it have a gap.
	CompactedThrough int64 `json:"compacted_through"`

	// State is the persisted state: Idle or Failed.
	State SyncState `json:"state"`

	// FailureReason explains why the collection entered Failed.
	FailureReason string `json:"failure_reason,omitempty"`

	// FailedAt is the moment the collection entered Failed.
	FailedAt *time.Time `json:"failed_at,omitempty"`

	// LastSyncedAt is the time of the last successful commit.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// CollectionStatus is the user-visible report of a collection.
type CollectionStatus struct {
	Collection

	// RunState is the live state of an in-flight run, or the persisted state
	// when no run is active.
	RunState SyncState `json:"run_state"`

	// PendingEdits is the number of local edits not yet reconciled.
	PendingEdits int `json:"pending_edits"`
}

// IsFailed reports whether the collection is excluded from automatic runs.
func (c Collection) IsFailed() bool {
	return c.State == StateFailed
}
