package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-mirror-keeper/internal/export"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

// recordingSink remembers every call and fails on demand.
type recordingSink struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	failOn  string
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Put(_ context.Context, item models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.UID == s.failOn {
		return assert.AnError
	}
	s.puts = append(s.puts, item.UID)
	return nil
}

func (s *recordingSink) Delete(_ context.Context, _, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, uid)
	return nil
}

func TestExportService_FileSink(t *testing.T) {
	storages := newTestStorages(t)
	dir := t.TempDir()
	sink, err := export.NewFileSink(dir)
	require.NoError(t, err)

	svc := NewExportService(storages, sink, logger.Nop())
	ctx := testContext()
	seedItems(t, storages, "C", 3)

	report, err := svc.Export(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Exported)
	assert.Equal(t, int64(3), report.Revision)
	assert.Equal(t, int64(3), report.Compacted)

	data, err := os.ReadFile(filepath.Join(dir, "C", "item-02"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload 2"), data)

	checkpoint, err := storages.Checkpoints.Get(ctx, export.SinkFile, "C")
	require.NoError(t, err)
	assert.Equal(t, int64(3), checkpoint.Revision)

	// a tombstone removes the exported file
	_, err = storages.Committer.Commit(ctx, store.CommitBatch{
		CollectionID: "C",
		Cursor:       "t2",
		Writes: []store.ItemWrite{{
			Item: models.Item{CollectionID: "C", UID: "item-02", RemoteStamp: "2", Deleted: true},
			Kind: models.JournalRemoteApplied,
		}},
	})
	require.NoError(t, err)

	report, err = svc.Export(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Exported)
	assert.Equal(t, int64(4), report.Revision)

	_, err = os.Stat(filepath.Join(dir, "C", "item-02"))
	assert.True(t, os.IsNotExist(err))

	// nothing new, nothing exported
	report, err = svc.Export(ctx, "C")
	require.NoError(t, err)
	assert.Zero(t, report.Exported)
}

func TestExportService_PagesAndDeduplicates(t *testing.T) {
	storages := newTestStorages(t)
	sink := &recordingSink{}
	svc := NewExportService(storages, sink, logger.Nop()).(*exportService)
	svc.pageSize = 2
	ctx := testContext()

	seedItems(t, storages, "C", 3)
	_, err := storages.Committer.Commit(ctx, store.CommitBatch{
		CollectionID: "C",
		Cursor:       "t2",
		Writes: []store.ItemWrite{{
			Item: models.Item{CollectionID: "C", UID: "item-02", RemoteStamp: "2", Payload: []byte("v2")},
			Kind: models.JournalRemoteApplied,
		}},
	})
	require.NoError(t, err)

	report, err := svc.Export(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.Revision)
	assert.Equal(t, []string{"item-00", "item-01", "item-02"}, sink.puts)
}

func TestExportService_FailureKeepsCheckpoint(t *testing.T) {
	storages := newTestStorages(t)
	sink := &recordingSink{failOn: "item-01"}
	svc := NewExportService(storages, sink, logger.Nop()).(*exportService)
	svc.pageSize = 1
	ctx := testContext()
	seedItems(t, storages, "C", 3)

	_, err := svc.Export(ctx, "C")
	require.Error(t, err)

	checkpoint, err := storages.Checkpoints.Get(ctx, "recording", "C")
	require.NoError(t, err)
	assert.Equal(t, int64(1), checkpoint.Revision, "only the page before the failure counts")

	entries, err := storages.Journal.ListSince(ctx, "C", 0, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no compaction after a failed pass")

	sink.failOn = ""
	report, err := svc.Export(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Revision)
	assert.Equal(t, []string{"item-00", "item-01", "item-02"}, sink.puts)
}

func TestExportService_ExportAll(t *testing.T) {
	storages := newTestStorages(t)
	sink := &recordingSink{}
	svc := NewExportService(storages, sink, logger.Nop())

	seedItems(t, storages, "A", 1)
	seedItems(t, storages, "B", 2)

	require.NoError(t, svc.ExportAll(testContext()))
	assert.Len(t, sink.puts, 3)
}
