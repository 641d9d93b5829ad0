package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncInProgress is returned when a run of the same collection is
	// already active.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrCollectionFailed is returned for a collection in Failed state. It
	// must be reset before it syncs again.
	ErrCollectionFailed = errors.New("collection is in failed state")
	// ErrCursorNotAdvanced is a protocol violation: the remote reported more
	// data without moving the cursor.
	ErrCursorNotAdvanced = errors.New("remote reported more data without advancing the cursor")
	// ErrRepeatedStaleBase is returned when a push is rejected as stale twice
	// in a row.
	ErrRepeatedStaleBase = errors.New("push rejected as stale after refresh")

	// ErrJournalCompacted is returned for journal reads starting below the
	// compaction floor. The reader resyncs from the items feed.
	ErrJournalCompacted = errors.New("journal was compacted past the requested revision")

	ErrUnknownConflictPolicy = errors.New("unknown conflict policy")
	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrVersionIsNotSpecified = errors.New("version is not specified")
)

// JournalCompactedError carries the compaction floor of a collection. It
// matches ErrJournalCompacted.
type JournalCompactedError struct {
	CompactedThrough int64
}

func (e *JournalCompactedError) Error() string {
	return fmt.Sprintf("%s: resume from revision %d", ErrJournalCompacted, e.CompactedThrough)
}

func (e *JournalCompactedError) Is(target error) bool {
	return target == ErrJournalCompacted
}
