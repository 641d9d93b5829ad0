package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	shutdownTimeout          = 15 * time.Second
)

type httpServer struct {
	server *http.Server
	logger *logger.Logger
}

// newHTTPServer sets no write timeout: journal streams are long-lived.
func newHTTPServer(handler http.Handler, cfg config.ClientServer, logger *logger.Logger) *httpServer {
	readHeaderTimeout := cfg.RequestTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}

	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}
}

func (h *httpServer) RunServer() {
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error().Err(err).Msg("HTTP server ListenAndServe")
	}
}

func (h *httpServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error().Err(err).Msg("HTTP server Shutdown")
	}
}
