// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the remote encrypted-collection service.
//
// The primary abstraction is [RemoteAdapter], which decouples the sync
// coordinator from the underlying protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPRemoteAdapter]) that talks to a bridge in front of
// the remote service.
//
// Error values defined in errors.go are mapped from HTTP status codes and
// transport failures by mapHTTPError so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrStaleBase] for 412,
// [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines communication with the remote collection service.
// Implementations are responsible for serialisation, authentication and
// mapping transport-level errors to the sentinel values of this package.
type RemoteAdapter interface {
	// FetchDelta returns the changes of the collection after cursor, at most
	// limit items. An empty cursor requests the collection from the start.
	FetchDelta(ctx context.Context, collectionID, cursor string, limit int) (models.DeltaPage, error)

	// Push performs a conditional write of one item. The write succeeds only
	// if the remote stamp of the item still equals req.BaseRemoteStamp, in
	// which case the new stamp is returned. Otherwise [ErrStaleBase] is
	// returned.
	Push(ctx context.Context, collectionID string, req models.PushRequest) (models.Stamp, error)

	// FetchItem returns the current remote state of one item.
	FetchItem(ctx context.Context, collectionID, uid string) (models.RemoteItem, error)
}
