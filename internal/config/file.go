package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig is the on-disk layout of the configuration file.
// The same structure is used for JSON and YAML.
type StructuredFileConfig struct {
	App struct {
		HashKey string `json:"hash_key" yaml:"hash_key"`
		Version string `json:"version" yaml:"version"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		Token          string   `json:"token" yaml:"token"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`

	Storage struct {
		DSN         string `json:"dsn" yaml:"dsn"`
		Compression string `json:"compression" yaml:"compression"`
	} `json:"storage,omitempty" yaml:"storage,omitempty"`

	Sync struct {
		Collections     []string `json:"collections" yaml:"collections"`
		PageSize        int      `json:"page_size" yaml:"page_size"`
		Concurrency     int      `json:"concurrency" yaml:"concurrency"`
		RetryMinBackoff Duration `json:"retry_min_backoff" yaml:"retry_min_backoff"`
		RetryMaxBackoff Duration `json:"retry_max_backoff" yaml:"retry_max_backoff"`
		RetryAttempts   uint64   `json:"retry_attempts" yaml:"retry_attempts"`
		ConflictPolicy  string   `json:"conflict_policy" yaml:"conflict_policy"`
		Interval        Duration `json:"interval" yaml:"interval"`
	} `json:"sync,omitempty" yaml:"sync,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address" yaml:"http_address"`
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		TokenSignKey   string   `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer" yaml:"token_issuer"`
	} `json:"server,omitempty" yaml:"server,omitempty"`

	Export struct {
		Sink     string   `json:"sink" yaml:"sink"`
		Dir      string   `json:"dir" yaml:"dir"`
		Interval Duration `json:"interval" yaml:"interval"`
		S3       struct {
			Bucket       string `json:"bucket" yaml:"bucket"`
			Prefix       string `json:"prefix" yaml:"prefix"`
			Region       string `json:"region" yaml:"region"`
			Endpoint     string `json:"endpoint" yaml:"endpoint"`
			UsePathStyle bool   `json:"use_path_style" yaml:"use_path_style"`
		} `json:"s3,omitempty" yaml:"s3,omitempty"`
	} `json:"export,omitempty" yaml:"export,omitempty"`

	Log struct {
		Level      string `json:"level" yaml:"level"`
		File       string `json:"file" yaml:"file"`
		MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
		MaxBackups int    `json:"max_backups" yaml:"max_backups"`
		MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	} `json:"log,omitempty" yaml:"log,omitempty"`
}

// parseFile reads a configuration file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return fileCfg.toStructured(), nil
}

func (f *StructuredFileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			HashKey: f.App.HashKey,
			Version: f.App.Version,
		},
		Adapter: Adapter{
			HTTPAddress:    f.Adapter.HTTPAddress,
			Token:          f.Adapter.Token,
			RequestTimeout: time.Duration(f.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DB:          DB{DSN: f.Storage.DSN},
			Compression: f.Storage.Compression,
		},
		Sync: Sync{
			Collections:     f.Sync.Collections,
			PageSize:        f.Sync.PageSize,
			Concurrency:     f.Sync.Concurrency,
			RetryMinBackoff: time.Duration(f.Sync.RetryMinBackoff),
			RetryMaxBackoff: time.Duration(f.Sync.RetryMaxBackoff),
			RetryAttempts:   f.Sync.RetryAttempts,
			ConflictPolicy:  f.Sync.ConflictPolicy,
			Interval:        time.Duration(f.Sync.Interval),
		},
		Server: Server{
			HTTPAddress:    f.Server.HTTPAddress,
			RequestTimeout: time.Duration(f.Server.RequestTimeout),
			TokenSignKey:   f.Server.TokenSignKey,
			TokenIssuer:    f.Server.TokenIssuer,
		},
		Export: Export{
			Sink:     f.Export.Sink,
			Dir:      f.Export.Dir,
			Interval: time.Duration(f.Export.Interval),
			S3: S3{
				Bucket:       f.Export.S3.Bucket,
				Prefix:       f.Export.S3.Prefix,
				Region:       f.Export.S3.Region,
				Endpoint:     f.Export.S3.Endpoint,
				UsePathStyle: f.Export.S3.UsePathStyle,
			},
		},
		Log: Log{
			Level:      f.Log.Level,
			File:       f.Log.File,
			MaxSizeMB:  f.Log.MaxSizeMB,
			MaxBackups: f.Log.MaxBackups,
			MaxAgeDays: f.Log.MaxAgeDays,
		},
	}
}

// Duration is a wrapper around time.Duration that supports unmarshaling
// from strings like "1h", "30s" in both JSON and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
