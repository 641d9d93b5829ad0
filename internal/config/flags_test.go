package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetAddress_String tests the String method of NetAddress
func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{
			name:     "empty address",
			addr:     NetAddress{},
			expected: "",
		},
		{
			name:     "localhost with port",
			addr:     NetAddress{Host: "localhost", Port: 8080},
			expected: "localhost:8080",
		},
		{
			name:     "IP address with port",
			addr:     NetAddress{Host: "127.0.0.1", Port: 9090},
			expected: "127.0.0.1:9090",
		},
		{
			name:     "only host no port",
			addr:     NetAddress{Host: "localhost", Port: 0},
			expected: "localhost:0",
		},
		{
			name:     "only port no host",
			addr:     NetAddress{Host: "", Port: 8080},
			expected: ":8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.addr.String()
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestNetAddress_Set tests the Set method of NetAddress
func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectError  bool
		errorMsg     string
		expectedAddr NetAddress
	}{
		{
			name:         "valid localhost",
			input:        "localhost:8080",
			expectError:  false,
			expectedAddr: NetAddress{Host: "localhost", Port: 8080},
		},
		{
			name:         "valid IPv4",
			input:        "127.0.0.1:9090",
			expectError:  false,
			expectedAddr: NetAddress{Host: "127.0.0.1", Port: 9090},
		},
		{
			name:        "missing colon",
			input:       "localhost8080",
			expectError: true,
			errorMsg:    "need address in a form `host:port`",
		},
		{
			name:        "multiple colons without brackets",
			input:       "host:port:extra",
			expectError: true,
			errorMsg:    "need address in a form `host:port`",
		},
		{
			name:        "non-numeric port",
			input:       "localhost:abc",
			expectError: true,
			errorMsg:    "invalid syntax",
		},
		{
			name:        "negative port",
			input:       "localhost:-1",
			expectError: true,
			errorMsg:    "port number is a positive integer",
		},
		{
			name:        "zero port",
			input:       "localhost:0",
			expectError: true,
			errorMsg:    "port number is a positive integer",
		},
		{
			name:        "invalid IP address",
			input:       "invalid.host:8080",
			expectError: true,
			errorMsg:    "incorrect IP-address provided",
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
			errorMsg:    "need address in a form `host:port`",
		},
		{
			name:        "only colon",
			input:       ":",
			expectError: true,
			errorMsg:    "invalid syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := &NetAddress{}
			err := addr.Set(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedAddr.Host, addr.Host)
				assert.Equal(t, tt.expectedAddr.Port, addr.Port)
			}
		})
	}
}

// TestParseFlags tests the ParseFlags function
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "all flags set",
			args: []string{
				"-a", "localhost:8080",
				"-r", "http://remote:9000",
				"-t", "bearer",
				"-d", "file:mirror.db",
				"-c", "/path/to/config.yaml",
				"-collections", "contacts, notes",
				"-page-size", "50",
				"-concurrency", "2",
				"-conflict-policy", "remote_wins",
				"-sync-interval", "2m",
				"-request-timeout", "30s",
				"-hash-key", "security_hash",
				"-token-sign-key", "jwt_secret",
				"-export-sink", "file",
				"-export-dir", "/var/export",
				"-log-file", "/var/log/mirror.log",
				"-log-level", "debug",
			},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
				assert.Equal(t, "http://remote:9000", cfg.Adapter.HTTPAddress)
				assert.Equal(t, "bearer", cfg.Adapter.Token)
				assert.Equal(t, "file:mirror.db", cfg.Storage.DB.DSN)
				assert.Equal(t, "/path/to/config.yaml", cfg.FilePath)
				assert.Equal(t, []string{"contacts", "notes"}, cfg.Sync.Collections)
				assert.Equal(t, 50, cfg.Sync.PageSize)
				assert.Equal(t, 2, cfg.Sync.Concurrency)
				assert.Equal(t, "remote_wins", cfg.Sync.ConflictPolicy)
				assert.Equal(t, 2*time.Minute, cfg.Sync.Interval)
				assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
				assert.Equal(t, "security_hash", cfg.App.HashKey)
				assert.Equal(t, "jwt_secret", cfg.Server.TokenSignKey)
				assert.Equal(t, "file", cfg.Export.Sink)
				assert.Equal(t, "/var/export", cfg.Export.Dir)
				assert.Equal(t, "/var/log/mirror.log", cfg.Log.File)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "config alias flag",
			args: []string{
				"-config", "/path/to/config.json",
			},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/path/to/config.json", cfg.FilePath)
			},
		},
		{
			name: "partial flags",
			args: []string{
				"-a", "127.0.0.1:3000",
				"-token-sign-key", "secret",
			},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "127.0.0.1:3000", cfg.Server.HTTPAddress)
				assert.Equal(t, "secret", cfg.Server.TokenSignKey)
				assert.Empty(t, cfg.Adapter.HTTPAddress)
				assert.Empty(t, cfg.Storage.DB.DSN)
			},
		},
		{
			name: "no flags",
			args: []string{},
			validate: func(t *testing.T, cfg *StructuredConfig) {
				assert.Empty(t, cfg.Server.HTTPAddress)
				assert.Empty(t, cfg.Storage.DB.DSN)
				assert.Empty(t, cfg.FilePath)
				assert.Empty(t, cfg.Sync.Collections)
				assert.Zero(t, cfg.Sync.Interval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args)
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

// TestParseFlags_Invalid tests ParseFlags with malformed values
func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "invalid server address format",
			args: []string{"-a", "invalid"},
		},
		{
			name: "invalid port in server address",
			args: []string{"-a", "localhost:abc"},
		},
		{
			name: "invalid duration",
			args: []string{"-sync-interval", "soon"},
		},
		{
			name: "unknown flag",
			args: []string{"-grpc-address", "localhost:9090"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

// TestNetAddress_SetAndString tests the round-trip of Set and String
func TestNetAddress_SetAndString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"localhost:8080", "localhost:8080"},
		{"127.0.0.1:9090", "127.0.0.1:9090"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			addr := &NetAddress{}
			err := addr.Set(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, addr.String())
		})
	}
}
