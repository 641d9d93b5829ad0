package http

import (
	"net/http"
)

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	version := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(version))
}
