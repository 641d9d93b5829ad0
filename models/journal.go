package models

import "time"

// JournalKind tells how a journal entry came to be.
type JournalKind string

const (
	// JournalRemoteApplied records a remote delta applied to the mirror.
	JournalRemoteApplied JournalKind = "remote_applied"
	// JournalLocalApplied records a local edit accepted by the remote.
	JournalLocalApplied JournalKind = "local_applied"
	// JournalConflictResolved records an outcome chosen by the conflict resolver.
	JournalConflictResolved JournalKind = "conflict_resolved"
)

// JournalEntry is an immutable record of one applied outcome.
// Entries are ordered by ResultingLocalRevision.
type JournalEntry struct {
	CollectionID           string      `json:"collection_id"`
	UID                    string      `json:"uid"`
	Kind                   JournalKind `json:"kind"`
	ResultingLocalRevision int64       `json:"resulting_local_revision"`
	Timestamp              time.Time   `json:"timestamp"`
}
