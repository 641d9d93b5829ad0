package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
	// Version is reported by the feed API.
	Version string
}

// ClientAdapter holds network settings used by the remote adapter.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the remote bridge.
	HTTPAddress string
	// Token is the bearer token presented to the remote service.
	Token string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientStorage contains local mirror storage settings.
type ClientStorage struct {
	// DSN is the SQLite/PostgreSQL connection string.
	DSN string
	// Compression is the payload codec for new writes.
	Compression string
}

// ClientSync contains the sync coordinator settings. It is read-only to the
// core.
type ClientSync struct {
	Collections     []string
	PageSize        int
	Concurrency     int
	RetryMinBackoff time.Duration
	RetryMaxBackoff time.Duration
	RetryAttempts   uint64
	ConflictPolicy  string
	Interval        time.Duration
}

// ClientServer contains the feed API settings.
type ClientServer struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	TokenSignKey   string
	TokenIssuer    string
}

// ClientExport contains the export worker settings.
type ClientExport struct {
	Sink     string
	Dir      string
	Interval time.Duration
	S3       S3
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    ClientSync
	Server  ClientServer
	Export  ClientExport
	Log     Log
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)

	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			Token:          cfg.Adapter.Token,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN:         cfg.Storage.DB.DSN,
			Compression: cfg.Storage.Compression,
		},
		Sync: ClientSync{
			Collections:     cfg.Sync.Collections,
			PageSize:        cfg.Sync.PageSize,
			Concurrency:     cfg.Sync.Concurrency,
			RetryMinBackoff: cfg.Sync.RetryMinBackoff,
			RetryMaxBackoff: cfg.Sync.RetryMaxBackoff,
			RetryAttempts:   cfg.Sync.RetryAttempts,
			ConflictPolicy:  cfg.Sync.ConflictPolicy,
			Interval:        cfg.Sync.Interval,
		},
		Server: ClientServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
			TokenSignKey:   cfg.Server.TokenSignKey,
			TokenIssuer:    cfg.Server.TokenIssuer,
		},
		Export: ClientExport{
			Sink:     cfg.Export.Sink,
			Dir:      cfg.Export.Dir,
			Interval: cfg.Export.Interval,
			S3:       cfg.Export.S3,
		},
		Log: cfg.Log,
	}
}
