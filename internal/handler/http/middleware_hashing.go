package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
)

const hashHeader = "HashSHA256"

// checkBodyHash verifies the HMAC-SHA256 of the request body sent in the
// HashSHA256 header. Requests without the header pass unchecked, as do all
// requests when no hash key is configured.
func (h *Handler) checkBodyHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature := r.Header.Get(hashHeader)
		if h.hashKey == "" || signature == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.checkBodyHash").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !utils.VerifyHashString(body, signature, h.hashKey) {
			log.Error().Str("func", "*Handler.checkBodyHash").
				Str("hash from request", signature).
				Msg("hashes are not equal")
			utils.WriteError(w, ErrIntegrityCheckFailed.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
