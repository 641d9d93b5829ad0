// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-mirror-keeper application. It aggregates all sub-configurations and is
// populated by merging values from command-line flags, environment
// variables, an optional JSON/YAML file and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the integrity hash key
	// and the application version.
	App App `envPrefix:"APP_"`

	// Adapter holds the remote collection service endpoint settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds configuration of the local mirror database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the sync coordinator settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the feed API listener and token settings.
	Server Server `envPrefix:"SERVER_"`

	// Export holds the export worker settings.
	Export Export `envPrefix:"EXPORT_"`

	// Log holds log sink settings.
	Log Log `envPrefix:"LOG_"`

	// FilePath is the optional path to a JSON or YAML configuration file.
	// The format is chosen by the file extension.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	FilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used for request integrity checking
	// (the HashSHA256 header on pushes).
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Adapter holds the remote collection service settings.
type Adapter struct {
	// HTTPAddress is the base URL of the remote bridge
	// (e.g. "http://localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Token is the bearer token presented to the remote service.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout is the maximum duration of a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration of the local mirror storage.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`

	// Compression is the payload codec used for new writes: "none" or
	// "snappy".
	// Env: STORAGE_COMPRESSION
	Compression string `env:"COMPRESSION"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is either a SQLite file path/URI or a PostgreSQL connection string
	// starting with "postgres://".
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds the sync coordinator settings.
type Sync struct {
	// Collections lists the collection identifiers mirrored by the client.
	// Env: SYNC_COLLECTIONS (comma separated)
	Collections []string `env:"COLLECTIONS" envSeparator:","`

	// PageSize is the maximum number of items requested per delta page.
	// Env: SYNC_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`

	// Concurrency bounds how many collections are synced at once.
	// Env: SYNC_CONCURRENCY
	Concurrency int `env:"CONCURRENCY"`

	// RetryMinBackoff and RetryMaxBackoff bound the exponential backoff
	// between retries of transient network failures.
	// Env: SYNC_RETRY_MIN_BACKOFF, SYNC_RETRY_MAX_BACKOFF
	RetryMinBackoff time.Duration `env:"RETRY_MIN_BACKOFF"`
	RetryMaxBackoff time.Duration `env:"RETRY_MAX_BACKOFF"`

	// RetryAttempts is the maximum number of retries per network call.
	// Env: SYNC_RETRY_ATTEMPTS
	RetryAttempts uint64 `env:"RETRY_ATTEMPTS"`

	// ConflictPolicy selects the conflict resolver: "last_writer_wins",
	// "remote_wins" or "local_wins".
	// Env: SYNC_CONFLICT_POLICY
	ConflictPolicy string `env:"CONFLICT_POLICY"`

	// Interval is the period of the background sync job.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Server holds network, timeout and token settings of the feed API.
type Server struct {
	// HTTPAddress is the TCP address the feed API listens on, in
	// "host:port" format. Empty disables the feed API.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// TokenSignKey is the secret key used to verify JWT tokens.
	// Env: SERVER_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of presented tokens.
	// Env: SERVER_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// Export holds the export worker settings.
type Export struct {
	// Sink selects the export target: "" (disabled), "file" or "s3".
	// Env: EXPORT_SINK
	Sink string `env:"SINK"`

	// Dir is the root directory of the file sink.
	// Env: EXPORT_DIR
	Dir string `env:"DIR"`

	// Interval is the period of the export job.
	// Env: EXPORT_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// S3 holds the object storage sink settings.
	S3 S3 `envPrefix:"S3_"`
}

// S3 holds object storage sink settings.
type S3 struct {
	Bucket   string `env:"BUCKET"`
	Prefix   string `env:"PREFIX"`
	Region   string `env:"REGION"`
	Endpoint string `env:"ENDPOINT"`
	// UsePathStyle enables path-style addressing for S3-compatible stores.
	UsePathStyle bool `env:"USE_PATH_STYLE"`
	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the default AWS credential chain is used.
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

// Log holds log sink settings.
type Log struct {
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// File is the path of the rotating log file. Empty logs to stdout.
	// Env: LOG_FILE
	File string `env:"FILE"`

	MaxSizeMB  int `env:"MAX_SIZE_MB"`
	MaxBackups int `env:"MAX_BACKUPS"`
	MaxAgeDays int `env:"MAX_AGE_DAYS"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Command-line flags
//  2. Environment variables
//  3. JSON/YAML file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags().
		withEnv().
		withFile().
		withDefaults().
		build()
}
