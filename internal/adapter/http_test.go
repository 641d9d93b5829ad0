// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const testHashKey = "testhashkey"

// newTestAdapter returns an adapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string) *httpRemoteAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, Token: "secret-token", RequestTimeout: 2 * time.Second}
	appCfg := config.ClientApp{HashKey: testHashKey}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpRemoteAdapter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ── constructor ─────────────────────────────────────────────────────────────

func TestNewHTTPRemoteAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPRemoteAdapter(config.ClientAdapter{HTTPAddress: "  "}, config.ClientApp{}, logger.Nop())
	assert.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "localhost:8080", want: "http://localhost:8080"},
		{raw: "https://bridge.local/", want: "https://bridge.local"},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ── FetchDelta ──────────────────────────────────────────────────────────────

func TestFetchDelta_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/collections/vault/delta", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("cursor"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		writeJSON(t, w, http.StatusOK, models.DeltaPage{
			Items: []models.RemoteItem{
				{UID: "a", Payload: []byte("x"), RemoteStamp: "1"},
				{UID: "b", RemoteStamp: "2", Deleted: true},
			},
			NextCursor: "c2",
			HasMore:    true,
		})
	}))
	defer srv.Close()

	page, err := newTestAdapter(t, srv.URL).FetchDelta(context.Background(), "vault", "c1", 50)

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, []byte("x"), page.Items[0].Payload)
	assert.True(t, page.Items[1].Deleted)
	assert.Equal(t, "c2", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestFetchDelta_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrUnauthorized},
		{name: "server error is transient", status: http.StatusBadGateway, wantErr: ErrTransientNetwork},
		{name: "throttled is transient", status: http.StatusTooManyRequests, wantErr: ErrTransientNetwork},
		{name: "bad request is protocol", status: http.StatusBadRequest, wantErr: ErrProtocol},
		{name: "garbage body is protocol", status: http.StatusOK, body: "{not json", wantErr: ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL).FetchDelta(context.Background(), "vault", "", 10)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchDelta_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestAdapter(t, url).FetchDelta(context.Background(), "vault", "", 10)
	assert.ErrorIs(t, err, ErrTransientNetwork)
}

func TestFetchDelta_CanceledIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAdapter(t, srv.URL).FetchDelta(ctx, "vault", "", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransientNetwork)
}

// ── Push ────────────────────────────────────────────────────────────────────

func TestPush_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/collections/vault/items/a", r.URL.Path)
		assert.Equal(t, "1", r.Header.Get("If-Match"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.True(t, utils.VerifyHashString(body, r.Header.Get("HashSHA256"), testHashKey))

		var req models.PushRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, []byte("local"), req.Payload)
		assert.Equal(t, models.Stamp("1"), req.BaseRemoteStamp)

		writeJSON(t, w, http.StatusOK, models.PushResponse{UID: "a", RemoteStamp: "2"})
	}))
	defer srv.Close()

	stamp, err := newTestAdapter(t, srv.URL).Push(context.Background(), "vault", models.PushRequest{
		UID:             "a",
		Payload:         []byte("local"),
		BaseRemoteStamp: "1",
	})

	require.NoError(t, err)
	assert.Equal(t, models.Stamp("2"), stamp)
}

func TestPush_StaleBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL).Push(context.Background(), "vault", models.PushRequest{UID: "a", BaseRemoteStamp: "1"})
	assert.ErrorIs(t, err, ErrStaleBase)
}

func TestPush_MissingStamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.PushResponse{UID: "a"})
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL).Push(context.Background(), "vault", models.PushRequest{UID: "a"})
	assert.ErrorIs(t, err, ErrProtocol)
}

// ── FetchItem ───────────────────────────────────────────────────────────────

func TestFetchItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/collections/vault/items/a":
			writeJSON(t, w, http.StatusOK, models.RemoteItem{UID: "a", Payload: []byte("p"), RemoteStamp: "7"})
		case "/api/collections/vault/items/wrong":
			writeJSON(t, w, http.StatusOK, models.RemoteItem{UID: "other"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)

	item, err := a.FetchItem(context.Background(), "vault", "a")
	require.NoError(t, err)
	assert.Equal(t, models.Stamp("7"), item.RemoteStamp)
	assert.Equal(t, []byte("p"), item.Payload)

	_, err = a.FetchItem(context.Background(), "vault", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = a.FetchItem(context.Background(), "vault", "wrong")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestPush_HashHeaderOmittedWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("HashSHA256"))
		writeJSON(t, w, http.StatusOK, models.PushResponse{UID: "a", RemoteStamp: "5"})
	}))
	defer srv.Close()

	a, err := NewHTTPRemoteAdapter(config.ClientAdapter{HTTPAddress: srv.URL}, config.ClientApp{}, logger.Nop())
	require.NoError(t, err)

	stamp, err := a.Push(context.Background(), "vault", models.PushRequest{UID: "a", Delete: true})
	require.NoError(t, err)
	assert.Equal(t, "5", stamp.String())
}
