package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
)

// errorStatus is checked in order; the first match wins.
var errorStatus = []struct {
	target error
	status int
}{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{ErrInvalidQueryParam, http.StatusBadRequest},
	{service.ErrSyncInProgress, http.StatusConflict},
	{service.ErrCollectionFailed, http.StatusConflict},
	{service.ErrJournalCompacted, http.StatusGone},

	{store.ErrItemNotFound, http.StatusNotFound},
	{store.ErrCollectionNotFound, http.StatusNotFound},
	{store.ErrPendingEditNotFound, http.StatusNotFound},

	{adapter.ErrUnauthorized, http.StatusBadGateway},
	{adapter.ErrProtocol, http.StatusBadGateway},
	{service.ErrRepeatedStaleBase, http.StatusBadGateway},
	{adapter.ErrTransientNetwork, http.StatusServiceUnavailable},

	{store.ErrStorageIO, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
