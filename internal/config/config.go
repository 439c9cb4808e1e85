// Package config loads the service configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"simonbin/internal/blob"
	"simonbin/internal/core"
)

// Config is the top-level service configuration.
type Config struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"` // debug | info | warn | error
	Storage  StorageConfig `yaml:"storage"`
	Blob     blob.Config   `yaml:"blob"`
	Gemini   GeminiConfig  `yaml:"gemini"`
	Auth     AuthConfig    `yaml:"auth"`
}

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // memory | sqlite | postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// GeminiConfig configures the advisory backend. Advisory endpoints degrade
// to fixed notices when the key is empty.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AuthConfig holds the single operator credential pair.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns sane defaults: in-memory storage, filesystem blobs,
// the well-known operator account.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Storage:  StorageConfig{Driver: string(core.StorageMemory)},
		Blob:     blob.Config{Driver: string(blob.DriverFilesystem)},
		Auth:     AuthConfig{Username: "cdk_pacitan", Password: "pacitan2024"},
	}
}

// Load reads an optional YAML file at path, applies environment overrides
// and validates the result. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	setEnv(&c.Listen, "SIMONBIN_LISTEN")
	setEnv(&c.LogLevel, "SIMONBIN_LOG_LEVEL")
	setEnv(&c.Storage.Driver, "SIMONBIN_STORAGE_DRIVER")
	setEnv(&c.Storage.SQLitePath, "SIMONBIN_SQLITE_PATH")
	setEnv(&c.Storage.PostgresDSN, "SIMONBIN_POSTGRES_DSN")
	setEnv(&c.Blob.Driver, "SIMONBIN_BLOB_DRIVER")
	setEnv(&c.Blob.Root, "SIMONBIN_BLOB_FS_ROOT")
	setEnv(&c.Blob.Bucket, "SIMONBIN_BLOB_S3_BUCKET")
	setEnv(&c.Blob.Region, "SIMONBIN_BLOB_S3_REGION")
	setEnv(&c.Blob.Endpoint, "SIMONBIN_BLOB_S3_ENDPOINT")
	setEnv(&c.Blob.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setEnv(&c.Blob.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setEnv(&c.Blob.SessionToken, "AWS_SESSION_TOKEN")
	if v := os.Getenv("SIMONBIN_BLOB_S3_PATH_STYLE"); v == "true" || v == "1" {
		c.Blob.PathStyle = true
	}
	setEnv(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setEnv(&c.Gemini.Model, "SIMONBIN_GEMINI_MODEL")
	setEnv(&c.Auth.Username, "SIMONBIN_AUTH_USERNAME")
	setEnv(&c.Auth.Password, "SIMONBIN_AUTH_PASSWORD")
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("blob bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported blob driver %q", c.Blob.Driver)
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth username and password are required")
	}
	return nil
}
