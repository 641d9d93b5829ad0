package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/export"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

// ClientServices groups the services of the mirror daemon. ExportService and
// ExportJob are nil when no export sink is configured.
type ClientServices struct {
	Coordinator    SyncCoordinator
	EditService    EditService
	FeedService    FeedService
	ExportService  ExportService
	AppInfoService AppInfoService

	SyncJob   ClientSyncJob
	ExportJob ClientSyncJob
}

func NewClientServices(ctx context.Context, storages *store.ClientStorages, remote adapter.RemoteAdapter, cfg *config.ClientConfig, build models.AppBuildInfo, log *logger.Logger) (*ClientServices, error) {
	resolver, err := NewConflictResolver(cfg.Sync.ConflictPolicy, nil)
	if err != nil {
		return nil, err
	}

	appInfo, err := NewAppInfoService(cfg.App, build, log)
	if err != nil {
		return nil, err
	}

	coordinator := NewSyncCoordinator(storages, remote, resolver, cfg.Sync, log)
	services := &ClientServices{
		Coordinator:    coordinator,
		EditService:    NewEditService(storages, log),
		FeedService:    NewFeedService(storages, log),
		AppInfoService: appInfo,
		SyncJob:        NewSyncAllJob(coordinator, log),
	}

	sink, err := export.NewSink(ctx, cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("create export sink: %w", err)
	}
	if sink != nil {
		services.ExportService = NewExportService(storages, sink, log)
		services.ExportJob = NewExportJob(services.ExportService, log)
	}

	return services, nil
}
