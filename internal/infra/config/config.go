package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Limits LimitsConfig `mapstructure:"limits" yaml:"limits"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	API    APIConfig    `mapstructure:"api" yaml:"api"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
}

type LimitsConfig struct {
	MaxLines int   `mapstructure:"max_lines" yaml:"max_lines"`
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver" yaml:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

type APIConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

// Session builds the per-call parameters from the server section.
func (c *Config) Session() domain.Session {
	return domain.Session{
		Host:     c.Server.Host,
		Port:     c.Server.Port,
		Timeout:  c.Server.Timeout,
		Username: c.Server.Username,
		Password: c.Server.Password,
	}
}

// Load reads path. With an empty path it looks for config.yaml and
// /config/config.yaml and falls back to defaults when neither exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		switch {
		case explicit:
			return nil, fmt.Errorf("config file not found: %s", path)
		case fileExists("/config/config.yaml"):
			path = "/config/config.yaml"
		default:
			path = ""
		}
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("server.host", "news.aioe.org")
	v.SetDefault("server.port", domain.DefaultPort)
	v.SetDefault("server.username", "")
	v.SetDefault("server.password", "")
	v.SetDefault("server.timeout", domain.DefaultTimeout)
	v.SetDefault("server.max_connections", 4)
	v.SetDefault("limits.max_lines", 1_000_000)
	v.SetDefault("limits.max_bytes", 64<<20)
	v.SetDefault("log.path", "nntpcli.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.sqlite_path", "./data/history.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("api.listen", ":8080")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("NNTPCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server host is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("server max_connections must be positive, got %d", c.Server.MaxConnections)
	}

	if c.Server.Password != "" && c.Server.Username == "" {
		return errors.New("server password is set but username is empty")
	}

	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store sqlite_path is required for the sqlite driver")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store postgres_dsn is required for the postgres driver")
		}
	case StoreNone:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
