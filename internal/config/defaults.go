package config

import "time"

// Default values applied to every field left empty by other sources.
const (
	DefaultPageSize        = 100
	DefaultConcurrency     = 4
	DefaultRetryMinBackoff = 200 * time.Millisecond
	DefaultRetryMaxBackoff = 10 * time.Second
	DefaultRetryAttempts   = 5
	DefaultConflictPolicy  = "last_writer_wins"
	DefaultSyncInterval    = time.Minute
	DefaultRequestTimeout  = 30 * time.Second
	DefaultCompression     = "none"
	DefaultExportInterval  = time.Minute
	DefaultLogLevel        = "info"
	DefaultTokenIssuer     = "go-mirror-keeper"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Storage: Storage{
			Compression: DefaultCompression,
		},
		Sync: Sync{
			PageSize:        DefaultPageSize,
			Concurrency:     DefaultConcurrency,
			RetryMinBackoff: DefaultRetryMinBackoff,
			RetryMaxBackoff: DefaultRetryMaxBackoff,
			RetryAttempts:   DefaultRetryAttempts,
			ConflictPolicy:  DefaultConflictPolicy,
			Interval:        DefaultSyncInterval,
		},
		Server: Server{
			RequestTimeout: DefaultRequestTimeout,
			TokenIssuer:    DefaultTokenIssuer,
		},
		Export: Export{
			Interval: DefaultExportInterval,
		},
		Log: Log{
			Level:      DefaultLogLevel,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
