package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/mock"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	testSignKey = "feed-sign-key"
	testIssuer  = "mirror-keeper"
	testHashKey = "hash-key"
)

type feedFixture struct {
	handler  *Handler
	router   http.Handler
	storages *store.ClientStorages
	remote   *mock.MockRemoteAdapter
	token    string
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	nop := zerolog.Nop()
	ctx := nop.WithContext(context.Background())

	storages, err := store.NewClientStorages(ctx, config.ClientStorage{
		DSN: filepath.Join(t.TempDir(), "mirror.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	remote := mock.NewMockRemoteAdapter(gomock.NewController(t))

	cfg := &config.ClientConfig{
		App: config.ClientApp{HashKey: testHashKey, Version: "1.2.3"},
		Sync: config.ClientSync{
			PageSize:        10,
			Concurrency:     1,
			RetryMinBackoff: time.Millisecond,
			ConflictPolicy:  service.PolicyLastWriterWins,
		},
		Server: config.ClientServer{TokenSignKey: testSignKey, TokenIssuer: testIssuer},
	}

	services, err := service.NewClientServices(ctx, storages, remote, cfg, models.AppBuildInfo{}, logger.Nop())
	require.NoError(t, err)

	h := NewHandler(services, cfg, logger.Nop())
	h.streamPoll = 10 * time.Millisecond

	token, err := utils.GenerateJWTToken(testIssuer, "exporter-1", time.Hour, testSignKey)
	require.NoError(t, err)

	return &feedFixture{
		handler:  h,
		router:   h.Init(),
		storages: storages,
		remote:   remote,
		token:    token.SignedString,
	}
}

func (f *feedFixture) do(t *testing.T, method, target string, body []byte, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+f.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *feedFixture) seed(t *testing.T, collectionID string, items ...models.Item) {
	t.Helper()

	writes := make([]store.ItemWrite, 0, len(items))
	for _, item := range items {
		item.CollectionID = collectionID
		writes = append(writes, store.ItemWrite{Item: item, Kind: models.JournalRemoteApplied})
	}

	nop := zerolog.Nop()
	_, err := f.storages.Committer.Commit(nop.WithContext(context.Background()), store.CommitBatch{
		CollectionID: collectionID,
		Cursor:       "t1",
		Writes:       writes,
	})
	require.NoError(t, err)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestVersion_NoAuthRequired(t *testing.T) {
	f := newFeedFixture(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1.2.3", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
}

func TestAuth(t *testing.T) {
	f := newFeedFixture(t)

	expired, err := utils.GenerateJWTToken(testIssuer, "exporter-1", -time.Minute, testSignKey)
	require.NoError(t, err)
	foreign, err := utils.GenerateJWTToken("someone-else", "exporter-1", time.Hour, testSignKey)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "no scheme", header: f.token, want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired.SignedString, want: http.StatusUnauthorized},
		{name: "wrong issuer", header: "Bearer " + foreign.SignedString, want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + f.token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestStatus(t *testing.T) {
	f := newFeedFixture(t)
	f.seed(t, "notes", models.Item{UID: "a", Payload: []byte("x"), RemoteStamp: "1"})

	rr := f.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[models.StatusResponse](t, rr)
	require.Equal(t, 1, resp.Length)
	assert.Equal(t, "notes", resp.Collections[0].ID)
	assert.Equal(t, "t1", resp.Collections[0].Cursor)
	assert.Equal(t, models.StateIdle, resp.Collections[0].RunState)
}

func TestItems(t *testing.T) {
	f := newFeedFixture(t)
	f.seed(t, "notes",
		models.Item{UID: "a", Payload: []byte("x"), RemoteStamp: "1"},
		models.Item{UID: "b", Payload: []byte("y"), RemoteStamp: "1"},
		models.Item{UID: "c", RemoteStamp: "1", Deleted: true},
	)

	rr := f.do(t, http.MethodGet, "/api/collections/notes/items?since=0&limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[models.ItemsResponse](t, rr)
	require.Equal(t, 2, page.Length)
	assert.Equal(t, int64(2), page.Next)

	rr = f.do(t, http.MethodGet, "/api/collections/notes/items?since=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[models.ItemsResponse](t, rr)
	require.Equal(t, 1, page.Length)
	assert.True(t, page.Items[0].Deleted)

	rr = f.do(t, http.MethodGet, "/api/collections/notes/items/b", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	item := decode[models.Item](t, rr)
	assert.Equal(t, []byte("y"), item.Payload)
	assert.Equal(t, utils.Digest([]byte("y")), item.Digest)

	rr = f.do(t, http.MethodGet, "/api/collections/notes/items/zzz", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	for _, target := range []string{
		"/api/collections/notes/items?since=-1",
		"/api/collections/notes/items?since=abc",
		"/api/collections/notes/items?limit=x",
	} {
		rr = f.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestJournal(t *testing.T) {
	f := newFeedFixture(t)
	f.seed(t, "notes",
		models.Item{UID: "a", Payload: []byte("x"), RemoteStamp: "1"},
		models.Item{UID: "b", Payload: []byte("y"), RemoteStamp: "1"},
	)

	rr := f.do(t, http.MethodGet, "/api/collections/notes/journal?since=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	page := decode[models.JournalResponse](t, rr)
	require.Equal(t, 1, page.Length)
	assert.Equal(t, "b", page.Entries[0].UID)
	assert.Equal(t, int64(2), page.Next)
}

func TestJournal_BelowCompactionFloorIsGone(t *testing.T) {
	f := newFeedFixture(t)
	f.seed(t, "notes",
		models.Item{UID: "a", Payload: []byte("x"), RemoteStamp: "1"},
		models.Item{UID: "b", Payload: []byte("y"), RemoteStamp: "1"},
	)

	nop := zerolog.Nop()
	_, err := f.storages.Journal.Compact(nop.WithContext(context.Background()), "notes", 2)
	require.NoError(t, err)

	rr := f.do(t, http.MethodGet, "/api/collections/notes/journal?since=0", nil)
	require.Equal(t, http.StatusGone, rr.Code)

	gone := decode[models.JournalCompactedResponse](t, rr)
	assert.Equal(t, int64(2), gone.CompactedThrough)
	assert.NotEmpty(t, gone.Error)

	rr = f.do(t, http.MethodGet, "/api/collections/notes/journal?since=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, decode[models.JournalResponse](t, rr).Length)
}

func TestStageEdit(t *testing.T) {
	f := newFeedFixture(t)
	f.seed(t, "notes", models.Item{UID: "a", Payload: []byte("x"), RemoteStamp: "1"})

	body, err := json.Marshal(models.EditRequest{UID: "a", Payload: []byte("y")})
	require.NoError(t, err)

	rr := f.do(t, http.MethodPost, "/api/collections/notes/edits", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	edit := decode[models.PendingEdit](t, rr)
	assert.Equal(t, models.Stamp("1"), edit.BaseRemoteStamp)

	rr = f.do(t, http.MethodGet, "/api/collections/notes/edits", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	edits := decode[[]models.PendingEdit](t, rr)
	require.Len(t, edits, 1)
	assert.Equal(t, edit.ID, edits[0].ID)

	// reverting to the mirrored payload is a no-op
	body, err = json.Marshal(models.EditRequest{UID: "a", Payload: []byte("x")})
	require.NoError(t, err)
	rr = f.do(t, http.MethodPost, "/api/collections/notes/edits", body)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/collections/notes/edits", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body, err = json.Marshal(models.EditRequest{UID: "a"})
	require.NoError(t, err)
	rr = f.do(t, http.MethodPost, "/api/collections/notes/edits", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStageEdit_BodyHash(t *testing.T) {
	f := newFeedFixture(t)

	body, err := json.Marshal(models.EditRequest{UID: "a", Payload: []byte("y")})
	require.NoError(t, err)

	rr := f.do(t, http.MethodPost, "/api/collections/notes/edits", body, hashHeader, utils.HashString("tampered", testHashKey))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), ErrIntegrityCheckFailed.Error())

	rr = f.do(t, http.MethodPost, "/api/collections/notes/edits", body, hashHeader, utils.HashString(string(body), testHashKey))
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestTriggerSyncAndReset(t *testing.T) {
	f := newFeedFixture(t)

	f.remote.EXPECT().
		FetchDelta(gomock.Any(), "notes", "", 10).
		Return(models.DeltaPage{
			Items:      []models.RemoteItem{{UID: "a", RemoteStamp: "1", Payload: []byte("x")}},
			NextCursor: "t1",
		}, nil)

	rr := f.do(t, http.MethodPost, "/api/collections/notes/sync", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode[service.SyncReport](t, rr)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, "t1", report.Cursor)

	f.remote.EXPECT().
		FetchDelta(gomock.Any(), "notes", "t1", 10).
		Return(models.DeltaPage{}, adapter.ErrUnauthorized)

	rr = f.do(t, http.MethodPost, "/api/collections/notes/sync", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/collections/notes/sync", nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "failed collections need a reset")

	rr = f.do(t, http.MethodPost, "/api/collections/notes/reset", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/collections/unknown/reset", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnsupportedMethodIsNotFound(t *testing.T) {
	f := newFeedFixture(t)

	rr := f.do(t, http.MethodDelete, "/api/collections/notes/items/a", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodPut, "/api/status", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGzipResponse(t *testing.T) {
	f := newFeedFixture(t)

	rr := f.do(t, http.MethodGet, "/api/status", nil, "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
}

func TestTraceIDIsReused(t *testing.T) {
	f := newFeedFixture(t)

	rr := f.do(t, http.MethodGet, "/api/status", nil, traceIDHeader, "trace-42")
	assert.Equal(t, "trace-42", rr.Header().Get(traceIDHeader))
}
