package service

import (
	"context"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

// NewAppInfoService reports cfg.Version when set and the linked build version
// otherwise.
func NewAppInfoService(cfg config.ClientApp, build models.AppBuildInfo, logger *logger.Logger) (AppInfoService, error) {
	version := cfg.Version
	if version == "" {
		version = build.BuildVersion()
	}
	if version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: version,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
