package service

import (
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

// syncRun carries the state of one sync cycle of one collection through the
// stages. Nothing about a run outlives it.
type syncRun struct {
	id           string
	collectionID string
	state        models.SyncState

	// cursor is the position the run started from, nextCursor the position
	// reached after the last fetched page.
	cursor     string
	nextCursor string

	// items holds the fetched remote items, one per uid, in delivery order.
	items []models.RemoteItem
	index map[string]int

	writes      []store.ItemWrite
	settlements []store.EditSettlement
	pushed      int
}

func newSyncRun(id, collectionID, cursor string) *syncRun {
	return &syncRun{
		id:           id,
		collectionID: collectionID,
		state:        models.StateIdle,
		cursor:       cursor,
		nextCursor:   cursor,
		index:        make(map[string]int),
	}
}

// collect adds a fetched item. A uid delivered twice keeps the version with
// the newest stamp.
func (r *syncRun) collect(item models.RemoteItem) {
	if i, ok := r.index[item.UID]; ok {
		if item.RemoteStamp.NewerThan(r.items[i].RemoteStamp) {
			r.items[i] = item
		}
		return
	}

	r.index[item.UID] = len(r.items)
	r.items = append(r.items, item)
}

func (r *syncRun) apply(item models.RemoteItem, kind models.JournalKind) {
	r.writes = append(r.writes, store.ItemWrite{
		Item: item.ToItem(r.collectionID),
		Kind: kind,
	})
}

func (r *syncRun) settle(edit models.PendingEdit, replacement *models.PendingEdit) {
	r.settlements = append(r.settlements, store.EditSettlement{
		UID:         edit.UID,
		EditID:      edit.ID,
		Replacement: replacement,
	})
}

func (r *syncRun) report() SyncReport {
	return SyncReport{
		CollectionID: r.collectionID,
		RunID:        r.id,
		Cursor:       r.nextCursor,
		Fetched:      len(r.items),
		Pushed:       r.pushed,
	}
}
