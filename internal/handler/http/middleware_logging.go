package http

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

// withLogging writes one access log line per request. Server errors are
// logged at warn level.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		level := zerolog.InfoLevel
		if lw.status >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}

		log.WithLevel(level).
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}
