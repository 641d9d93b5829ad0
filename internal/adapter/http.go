package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	deltaPath = "/api/collections/{collection}/delta"
	itemPath  = "/api/collections/{collection}/items/{uid}"

	headerHash    = "HashSHA256"
	headerIfMatch = "If-Match"
)

type httpRemoteAdapter struct {
	client  *utils.HTTPClient
	hashKey string

	logger *logger.Logger
}

// NewHTTPRemoteAdapter constructs an HTTP/JSON implementation of
// [RemoteAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the bearer token and request timeout,
// and initialises the shared HMAC hasher pool used to sign pushes.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewRemoteHTTPClient(baseURL, adapterCfg.Token, adapterCfg.RequestTimeout)
	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	return &httpRemoteAdapter{client: client, hashKey: appCfg.HashKey, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchDelta implements [RemoteAdapter]. It GETs
// GET /api/collections/{id}/delta?cursor=&limit= and decodes a
// [models.DeltaPage].
func (h *httpRemoteAdapter) FetchDelta(ctx context.Context, collectionID, cursor string, limit int) (models.DeltaPage, error) {
	var page models.DeltaPage

	params := map[string]string{"cursor": cursor}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("collection", collectionID).
		SetQueryParams(params).
		Get(deltaPath)
	if err != nil {
		return models.DeltaPage{}, mapTransportError(ctx, "fetch delta request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DeltaPage{}, err
	}

	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return models.DeltaPage{}, fmt.Errorf("%w: decode delta page: %w", ErrProtocol, err)
	}

	h.logger.Debug().
		Str("func", "httpRemoteAdapter.FetchDelta").
		Str("collection_id", collectionID).
		Int("items", len(page.Items)).
		Bool("has_more", page.HasMore).
		Msg("delta page fetched")

	return page, nil
}

// Push implements [RemoteAdapter]. It PUTs the edit to
// PUT /api/collections/{id}/items/{uid} with the base stamp in If-Match and
// an HMAC of the body in the HashSHA256 header. HTTP 412 maps to
// [ErrStaleBase].
func (h *httpRemoteAdapter) Push(ctx context.Context, collectionID string, req models.PushRequest) (models.Stamp, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode push request: %w", err)
	}

	request := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"collection": collectionID, "uid": req.UID}).
		SetHeader("Content-Type", "application/json").
		SetHeader(headerIfMatch, string(req.BaseRemoteStamp)).
		SetBody(body)
	if h.hashKey != "" {
		request.SetHeader(headerHash, hex.EncodeToString(utils.Hash(body)))
	}

	resp, err := request.Put(itemPath)
	if err != nil {
		return "", mapTransportError(ctx, "push request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var pushed models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pushed); err != nil {
		return "", fmt.Errorf("%w: decode push response: %w", ErrProtocol, err)
	}
	if pushed.RemoteStamp.IsZero() {
		return "", fmt.Errorf("%w: push of %s returned no stamp", ErrProtocol, req.UID)
	}

	return pushed.RemoteStamp, nil
}

// FetchItem implements [RemoteAdapter]. It GETs
// GET /api/collections/{id}/items/{uid}.
func (h *httpRemoteAdapter) FetchItem(ctx context.Context, collectionID, uid string) (models.RemoteItem, error) {
	var item models.RemoteItem

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"collection": collectionID, "uid": uid}).
		Get(itemPath)
	if err != nil {
		return models.RemoteItem{}, mapTransportError(ctx, "fetch item request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteItem{}, err
	}

	if err = json.Unmarshal(resp.Body(), &item); err != nil {
		return models.RemoteItem{}, fmt.Errorf("%w: decode item: %w", ErrProtocol, err)
	}
	if item.UID != uid {
		return models.RemoteItem{}, fmt.Errorf("%w: asked for item %s, got %s", ErrProtocol, uid, item.UID)
	}

	return item, nil
}
