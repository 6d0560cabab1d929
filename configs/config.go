package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ServiceSource describes one discovery document to sync at startup.
type ServiceSource struct {
	URL     string            `yaml:"url" validate:"required"`
	Version string            `yaml:"version,omitempty" validate:"omitempty,oneof=0.3 1.0"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// FileConfig is the structure loaded from the YAML configuration file.
type FileConfig struct {
	Services []ServiceSource `yaml:"services" validate:"dive"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Environment variables use the prefix
// "APIDISCO_" and override file settings.
type Config struct {
	// Config file path, loaded first from env. Empty means no file.
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// File-loaded fields.
	Services []ServiceSource

	// Environment-overridable fields.
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	UserAgent                string        `envconfig:"USER_AGENT" default:"apidisco-go-client/0.1.0"`
	DeveloperKey             string        `envconfig:"DEVELOPER_KEY"`
	GZipEnabled              bool          `envconfig:"GZIP_ENABLED" default:"true"`
	RequestsPerSecond        float64       `envconfig:"REQUESTS_PER_SECOND"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level for the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the
// file path), then from the YAML file, and finally reprocesses the
// environment so env vars win over file settings.
func Load() (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process("apidisco", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := validator.New().Struct(&fileCfg); err != nil {
			return nil, fmt.Errorf("invalid config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath, "services", len(fileCfg.Services))
	} else {
		slog.Debug("No config file path specified (APIDISCO_CONFIG_FILE), using defaults/env vars only.")
	}

	finalCfg := initialCfg
	finalCfg.Services = fileCfg.Services

	// Process environment variables again so they override file settings.
	if err := envconfig.Process("apidisco", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
