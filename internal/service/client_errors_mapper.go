// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
)

// Failure reasons persisted with a Failed collection.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonStorage      = "storage"
)

// classifyRunError decides whether a failed run moves the collection to
// Failed. Revoked credentials and storage failures do; transient network
// errors, protocol violations and cancellation leave it retryable.
func classifyRunError(err error) (reason string, fatal bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, adapter.ErrUnauthorized):
		return ReasonUnauthorized + ": " + err.Error(), true
	case errors.Is(err, store.ErrStorageIO):
		return ReasonStorage + ": " + err.Error(), true
	default:
		return err.Error(), false
	}
}
