// Package config loads tasktracker configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"tasktracker/internal/logging"
	"tasktracker/internal/store"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "TASKTRACKER_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Storage StorageConfig  `koanf:"storage"`
	Logging logging.Config `koanf:"logging"`
	Export  ExportConfig   `koanf:"export"`
}

// ServerConfig configures the web presenter.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// StorageConfig configures the key-value backend and the key tasks live under.
type StorageConfig struct {
	Path       string `koanf:"path"`
	Key        string `koanf:"key"`
	QuotaBytes int64  `koanf:"quota_bytes"`
}

// ExportConfig configures where export files are written.
type ExportConfig struct {
	Dir string `koanf:"dir"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Path:       "./data/tasktracker.db",
			Key:        store.DefaultKey,
			QuotaBytes: store.DefaultQuotaBytes,
		},
		Logging: logging.NewDefaultConfig(),
		Export:  ExportConfig{Dir: "."},
	}
}

// Load builds the configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (TASKTRACKER_SERVER_PORT -> server.port)
//  2. YAML file at path, when path is not empty
//  3. Default()
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps TASKTRACKER_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key is required")
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must be >= 0, got %d", c.Storage.QuotaBytes)
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		return fmt.Errorf("export.dir is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
