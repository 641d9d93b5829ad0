package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
)

// triggerSync runs one sync cycle of the collection and returns its report.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	operator, _ := utils.GetOperatorFromContext(r.Context())

	logger.FromRequest(r).Info().
		Str("collection_id", collectionID).
		Str("operator", operator).
		Msg("manual sync requested")

	report, err := h.services.Coordinator.Sync(r.Context(), collectionID)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.triggerSync", err)
		return
	}

	_, _ = utils.WriteJSON(w, report, http.StatusOK)
}

// resetCollection clears the Failed state of a collection.
func (h *Handler) resetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	operator, _ := utils.GetOperatorFromContext(r.Context())

	if err := h.services.Coordinator.Reset(r.Context(), collectionID); err != nil {
		h.writeServiceError(w, r, "*Handler.resetCollection", err)
		return
	}

	logger.FromRequest(r).Info().
		Str("collection_id", collectionID).
		Str("operator", operator).
		Msg("collection reset by operator")

	w.WriteHeader(http.StatusNoContent)
}
