package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.services.Coordinator.Status(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "*Handler.status", err)
		return
	}

	_, _ = utils.WriteJSON(w, models.StatusResponse{Collections: statuses, Length: len(statuses)}, http.StatusOK)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	since, limit, err := pageParams(r)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.listItems", err)
		return
	}

	resp, err := h.services.FeedService.Items(r.Context(), chi.URLParam(r, "collectionID"), since, limit)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.listItems", err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.services.FeedService.Item(r.Context(), chi.URLParam(r, "collectionID"), chi.URLParam(r, "uid"))
	if err != nil {
		h.writeServiceError(w, r, "*Handler.getItem", err)
		return
	}

	_, _ = utils.WriteJSON(w, item, http.StatusOK)
}

func (h *Handler) listJournal(w http.ResponseWriter, r *http.Request) {
	since, limit, err := pageParams(r)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.listJournal", err)
		return
	}

	resp, err := h.services.FeedService.Journal(r.Context(), chi.URLParam(r, "collectionID"), since, limit)
	if err != nil {
		h.writeJournalError(w, r, "*Handler.listJournal", err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// pageParams reads the optional since and limit query parameters.
func pageParams(r *http.Request) (since int64, limit int, err error) {
	query := r.URL.Query()

	if v := query.Get("since"); v != "" {
		since, err = strconv.ParseInt(v, 10, 64)
		if err != nil || since < 0 {
			return 0, 0, ErrInvalidQueryParam
		}
	}
	if v := query.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, ErrInvalidQueryParam
		}
	}

	return since, limit, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Send()

	utils.WriteError(w, err.Error(), status)
}

// writeJournalError answers a compacted journal read with 410 and the floor
// to resume from. Other errors go through writeServiceError.
func (h *Handler) writeJournalError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	var compacted *service.JournalCompactedError
	if !errors.As(err, &compacted) {
		h.writeServiceError(w, r, fn, err)
		return
	}

	logger.FromRequest(r).Warn().Err(err).Str("func", fn).Int("status", http.StatusGone).Send()
	_, _ = utils.WriteJSON(w, models.JournalCompactedResponse{
		Error:            err.Error(),
		CompactedThrough: compacted.CompactedThrough,
	}, http.StatusGone)
}
