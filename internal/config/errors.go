package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid remote adapter settings
	// (for example, missing address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing hash key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSyncConfigs indicates invalid sync coordinator settings.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidServerConfigs indicates a feed API enabled without a token key
	// or issuer.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidExportConfigs indicates an incomplete export sink.
	ErrInvalidExportConfigs = errors.New("invalid export configuration")
)
