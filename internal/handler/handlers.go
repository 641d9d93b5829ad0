package handler

import (
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/handler/http"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the feed API handler when a listen address is
// configured.
func NewHandlers(services *service.ClientServices, cfg *config.ClientConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, cfg, logger)}, nil
}
