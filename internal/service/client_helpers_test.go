package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/mock"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{DSN: filepath.Join(t.TempDir(), "mirror.db")}
	storages, err := store.NewClientStorages(testContext(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

func testSyncConfig(collections ...string) config.ClientSync {
	return config.ClientSync{
		Collections:     collections,
		PageSize:        10,
		Concurrency:     2,
		RetryMinBackoff: time.Millisecond,
		RetryMaxBackoff: 5 * time.Millisecond,
		RetryAttempts:   2,
	}
}

type coordinatorFixture struct {
	coordinator *syncCoordinator
	storages    *store.ClientStorages
	remote      *mock.MockRemoteAdapter
	edits       EditService
}

func newCoordinatorFixture(t *testing.T, policy string, collections ...string) *coordinatorFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteAdapter(ctrl)
	storages := newTestStorages(t)

	resolver, err := NewConflictResolver(policy, nil)
	require.NoError(t, err)

	coordinator := NewSyncCoordinator(storages, remote, resolver, testSyncConfig(collections...), logger.Nop())

	return &coordinatorFixture{
		coordinator: coordinator.(*syncCoordinator),
		storages:    storages,
		remote:      remote,
		edits:       NewEditService(storages, logger.Nop()),
	}
}

// expectDelta makes the remote answer one delta page for cursor.
func (f *coordinatorFixture) expectDelta(collectionID, cursor string, page models.DeltaPage) *gomock.Call {
	return f.remote.EXPECT().
		FetchDelta(gomock.Any(), collectionID, cursor, 10).
		Return(page, nil)
}

// seed runs a first sync delivering items and ending at cursor.
func (f *coordinatorFixture) seed(t *testing.T, collectionID, cursor string, items ...models.RemoteItem) {
	t.Helper()

	f.expectDelta(collectionID, "", models.DeltaPage{Items: items, NextCursor: cursor})
	_, err := f.coordinator.Sync(testContext(), collectionID)
	require.NoError(t, err)
}

func (f *coordinatorFixture) item(t *testing.T, collectionID, uid string) models.Item {
	t.Helper()

	item, err := f.storages.Items.Get(testContext(), collectionID, uid)
	require.NoError(t, err)
	return item
}

func (f *coordinatorFixture) collection(t *testing.T, collectionID string) models.Collection {
	t.Helper()

	collection, err := f.storages.Cursors.Get(testContext(), collectionID)
	require.NoError(t, err)
	return collection
}

func (f *coordinatorFixture) journal(t *testing.T, collectionID string) []models.JournalEntry {
	t.Helper()

	entries, err := f.storages.Journal.ListSince(testContext(), collectionID, 0, 100)
	require.NoError(t, err)
	return entries
}

func (f *coordinatorFixture) pending(t *testing.T, collectionID string) []models.PendingEdit {
	t.Helper()

	edits, err := f.storages.PendingEdits.List(testContext(), collectionID)
	require.NoError(t, err)
	return edits
}

func (f *coordinatorFixture) stage(t *testing.T, collectionID string, req models.EditRequest) models.PendingEdit {
	t.Helper()

	edit, ok, err := f.edits.Stage(testContext(), collectionID, req)
	require.NoError(t, err)
	require.True(t, ok)
	return edit
}

func remoteItem(uid, stamp, payload string) models.RemoteItem {
	return models.RemoteItem{UID: uid, RemoteStamp: models.Stamp(stamp), Payload: []byte(payload)}
}
