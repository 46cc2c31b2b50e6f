package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: news.example.com
  port: 1119
  username: bob
  password: secret
  timeout: 3s
  max_connections: 2
limits:
  max_lines: 500
log:
  level: debug
store:
  driver: none
api:
  listen: 127.0.0.1:9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "news.example.com", cfg.Server.Host)
	assert.Equal(t, 1119, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 2, cfg.Server.MaxConnections)
	assert.Equal(t, 500, cfg.Limits.MaxLines)
	assert.Equal(t, int64(64<<20), cfg.Limits.MaxBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, StoreNone, cfg.Store.Driver)
	assert.Equal(t, "127.0.0.1:9090", cfg.API.Listen)

	s := cfg.Session()
	assert.Equal(t, "bob", s.Username)
	assert.Equal(t, "secret", s.Password)
	assert.Equal(t, "news.example.com:1119", s.Addr())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 119, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Server.Host)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  host: news.example.com\n")
	t.Setenv("NNTPCLI_SERVER_HOST", "news.other.org")
	t.Setenv("NNTPCLI_SERVER_TIMEOUT", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "news.other.org", cfg.Server.Host)
	assert.Equal(t, 750*time.Millisecond, cfg.Server.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "h", Port: 119, Timeout: time.Second, MaxConnections: 1},
			Store:  StoreConfig{Driver: StoreNone},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no host", func(c *Config) { c.Server.Host = "" }, "host"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, "timeout"},
		{"no connections", func(c *Config) { c.Server.MaxConnections = 0 }, "max_connections"},
		{"password without user", func(c *Config) { c.Server.Password = "x" }, "username"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "unknown store driver"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StorePostgres }, "postgres_dsn"},
		{"sqlite without path", func(c *Config) { c.Store.Driver = StoreSQLite }, "sqlite_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
