// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] is usable by
// every binary. Binary-specific requirements live in [ClientConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.PageSize < 0 || cfg.Sync.Concurrency < 0 {
		return fmt.Errorf("%w: negative page size or concurrency", ErrInvalidSyncConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Storage.Compression {
	case "", "none", "snappy":
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidStorageConfigs, cfg.Storage.Compression)
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if len(cfg.Sync.Collections) == 0 || cfg.Sync.PageSize <= 0 || cfg.Sync.Interval == 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Sync.RetryMinBackoff <= 0 || cfg.Sync.RetryMaxBackoff < cfg.Sync.RetryMinBackoff {
		return fmt.Errorf("%w: invalid retry backoff bounds", ErrInvalidSyncConfigs)
	}

	switch cfg.Sync.ConflictPolicy {
	case "last_writer_wins", "remote_wins", "local_wins":
	default:
		return fmt.Errorf("%w: unknown conflict policy %q", ErrInvalidSyncConfigs, cfg.Sync.ConflictPolicy)
	}

	if cfg.App.HashKey == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress != "" && (cfg.Server.TokenSignKey == "" || cfg.Server.TokenIssuer == "") {
		return ErrInvalidServerConfigs
	}

	switch cfg.Export.Sink {
	case "":
	case "file":
		if cfg.Export.Dir == "" {
			return fmt.Errorf("%w: file sink requires a directory", ErrInvalidExportConfigs)
		}
	case "s3":
		if cfg.Export.S3.Bucket == "" {
			return fmt.Errorf("%w: s3 sink requires a bucket", ErrInvalidExportConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown sink %q", ErrInvalidExportConfigs, cfg.Export.Sink)
	}

	return nil
}
