package server

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/handler"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/workers"
)

type server struct {
	httpServer *httpServer
	workers    *workers.Workers
	logger     *logger.Logger

	shutdownOnce sync.Once
}

// NewServer wires the feed API (when handlers is not nil) and the background
// workers into one daemon.
func NewServer(handlers *handler.Handlers, jobs *workers.Workers, cfg config.ClientServer, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{workers: jobs, logger: logger}

	if handlers != nil && handlers.HTTP != nil && cfg.HTTPAddress != "" {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)
	}

	if servers.httpServer == nil && jobs.Len() == 0 {
		return nil, errNothingToRun
	}

	return servers, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := s.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("error running server")
	}
}

func (s *server) Run(ctx context.Context) error {
	s.workers.Start(ctx)

	if s.httpServer != nil {
		s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")
		go s.httpServer.RunServer()
	}

	<-ctx.Done()

	s.Shutdown()
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}

func (s *server) Shutdown() {
	s.shutdownOnce.Do(func() {
		// stop accepting requests first so that no manual sync starts while
		// the jobs wind down
		if s.httpServer != nil {
			s.httpServer.Shutdown()
		}
		s.workers.Stop()
	})
}
