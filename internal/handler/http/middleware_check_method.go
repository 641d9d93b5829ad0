// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
)

// CheckHTTPMethod returns a handler meant for [chi.Mux.MethodNotAllowed].
//
// Instead of chi's default 405 Method Not Allowed it answers 404 Not Found,
// so callers using an unsupported method learn nothing about the route. A
// request whose method does match a route (parameterised routes included) is
// served by the router as usual.
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if !router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			utils.WriteError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		router.ServeHTTP(w, r)
	}
}
