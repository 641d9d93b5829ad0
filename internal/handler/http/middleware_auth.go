package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
)

// auth enforces JWT-based authentication.
//
// The bearer token must be an HS256 token signed with the configured key and
// issued by the configured issuer. Its subject names the operator and is
// stored in the request context under [utils.OperatorCtxKey]. Requests
// without a valid token get 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			utils.WriteError(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.tokenSignKey, h.tokenIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.OperatorCtxKey, token.Operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
