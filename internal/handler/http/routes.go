package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Get("/api/version", h.getVersion)

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/status", h.status)

		r.Route("/api/collections/{collectionID}", func(r chi.Router) {
			r.Get("/items", h.listItems)
			r.Get("/items/{uid}", h.getItem)
			r.Get("/journal", h.listJournal)
			r.Get("/journal/stream", h.streamJournal)

			r.With(h.checkBodyHash).Post("/edits", h.stageEdit)
			r.Get("/edits", h.listEdits)

			r.Post("/sync", h.triggerSync)
			r.Post("/reset", h.resetCollection)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
