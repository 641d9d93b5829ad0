package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/handler"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/server"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/internal/workers"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(build)

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("go-mirror-client").Fatal().Err(err).Msg("error getting configs")
	}

	log, logCloser := logger.NewClientLogger("go-mirror-client", logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()

	ctx := context.Background()

	remoteAdapter, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote adapter")
	}

	localStorage, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer localStorage.Close()

	log.Info().
		Str("version", build.BuildVersion()).
		Str("commit", build.BuildCommit()).
		Msg("starting mirror client")

	services, err := service.NewClientServices(ctx, localStorage, remoteAdapter, cfg, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create client services")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil && !handler.IsNoHandlers(err) {
		log.Fatal().Err(err).Msg("create handlers")
	}

	jobs := workers.NewWorkers(log).
		Add("sync", services.SyncJob, cfg.Sync.Interval).
		Add("export", services.ExportJob, cfg.Export.Interval)

	srv, err := server.NewServer(handlers, jobs, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}

	srv.RunServer()
}

func printBuildInfo(build models.AppBuildInfo) {
	for _, field := range build.Fields() {
		fmt.Printf("Build %s: %s\n", strings.ToLower(field.Label), field.Value)
	}
}
