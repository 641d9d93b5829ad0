package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile_JSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
		"app": {"hash_key": "k"},
		"adapter": {"http_address": "http://remote", "request_timeout": "10s"},
		"storage": {"dsn": "mirror.db", "compression": "snappy"},
		"sync": {"collections": ["a", "b"], "page_size": 10, "interval": "1m", "retry_min_backoff": 1000000},
		"export": {"sink": "file", "dir": "/tmp/out"}
	}`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.App.HashKey)
	assert.Equal(t, "http://remote", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "mirror.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "snappy", cfg.Storage.Compression)
	assert.Equal(t, []string{"a", "b"}, cfg.Sync.Collections)
	assert.Equal(t, 10, cfg.Sync.PageSize)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, time.Millisecond, cfg.Sync.RetryMinBackoff)
	assert.Equal(t, "file", cfg.Export.Sink)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
	assert.Empty(t, cfg.FilePath)
}

func TestParseFile_YAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
app:
  hash_key: k
sync:
  collections: [contacts]
  conflict_policy: remote_wins
  retry_max_backoff: 3s
export:
  sink: s3
  s3:
    bucket: mirror
    use_path_style: true
log:
  level: warn
`)

	cfg, err := parseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.App.HashKey)
	assert.Equal(t, []string{"contacts"}, cfg.Sync.Collections)
	assert.Equal(t, "remote_wins", cfg.Sync.ConflictPolicy)
	assert.Equal(t, 3*time.Second, cfg.Sync.RetryMaxBackoff)
	assert.Equal(t, "s3", cfg.Export.Sink)
	assert.Equal(t, "mirror", cfg.Export.S3.Bucket)
	assert.True(t, cfg.Export.S3.UsePathStyle)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParseFile_FileNotFound(t *testing.T) {
	cfg, err := parseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseFile_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid json", "c.json", "{not valid json"},
		{"invalid json duration", "c.json", `{"sync": {"interval": "soon"}}`},
		{"invalid json duration type", "c.json", `{"sync": {"interval": true}}`},
		{"invalid yaml", "c.yml", "sync: [unclosed"},
		{"invalid yaml duration", "c.yaml", "sync:\n  interval: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFile(writeConfigFile(t, tt.file, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	y, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", y)
}
