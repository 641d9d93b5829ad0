package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrItemNotFound is returned when no item with the requested uid exists
	// in the collection. Tombstoned items are still found.
	ErrItemNotFound = errors.New("item was not found")

	// ErrCollectionNotFound is returned when a collection has never been
	// registered in the mirror.
	ErrCollectionNotFound = errors.New("collection was not found")

	// ErrPendingEditNotFound is returned when no pending edit exists for the
	// requested uid.
	ErrPendingEditNotFound = errors.New("pending edit was not found")

	// ErrStorageIO wraps every failure of the underlying database. A sync run
	// hitting it stops without a partial commit.
	ErrStorageIO = errors.New("storage io error")
)

// Low-level database operation errors. These are wrapped by repository
// methods when a SQL-level operation fails before any domain logic can be
// applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning a result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrDecodingPayload is returned when a stored payload cannot be decoded
	// with its recorded codec.
	ErrDecodingPayload = errors.New("failed to decode payload")
)

// storageErr marks err as a storage failure while keeping the original
// cause matchable.
func storageErr(op error, err error) error {
	return fmt.Errorf("%w: %w: %w", ErrStorageIO, op, err)
}
