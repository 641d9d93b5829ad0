package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

// stageEdit queues a local edit for the next sync run. It answers 201 with
// the staged edit, or 204 when the edit would not change the item.
func (h *Handler) stageEdit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.stageEdit").Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	edit, ok, err := h.services.EditService.Stage(r.Context(), chi.URLParam(r, "collectionID"), req)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.stageEdit", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	_, _ = utils.WriteJSON(w, edit, http.StatusCreated)
}

func (h *Handler) listEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.services.EditService.Pending(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		h.writeServiceError(w, r, "*Handler.listEdits", err)
		return
	}
	if edits == nil {
		edits = make([]models.PendingEdit, 0)
	}

	_, _ = utils.WriteJSON(w, edits, http.StatusOK)
}
