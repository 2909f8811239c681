// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

// Package config loads the runtime configuration from layered sources:
// built-in defaults, an optional YAML file, then environment variables.
// Later layers win.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first hit
// wins.
var DefaultConfigPaths = []string{
	"pyedx.yaml",
	"pyedx.yml",
	"/etc/pyedx/config.yaml",
	"/etc/pyedx/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "PYEDX_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	GeoIP    GeoIPConfig    `koanf:"geoip"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Sink     SinkConfig     `koanf:"sink"`
	Content  ContentConfig  `koanf:"content"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// GeoIPConfig locates the resolver's backing files. The table is the
// authoritative dataset; the two cache paths are created on demand.
type GeoIPConfig struct {
	TablePath      string `koanf:"table_path" validate:"required"`
	ExactCachePath string `koanf:"exact_cache_path" validate:"required"`
	RangeCachePath string `koanf:"range_cache_path" validate:"required"`
}

// PipelineConfig tunes run behavior.
type PipelineConfig struct {
	// Workers bounds concurrent classification. Zero means sequential.
	Workers int `koanf:"workers" validate:"gte=0"`
}

// SinkConfig enables the document store.
type SinkConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"required_if=Enabled true"`
}

// ContentConfig tunes the course material scraper.
type ContentConfig struct {
	// DurationEndpoint overrides the video duration API; empty keeps
	// the default.
	DurationEndpoint string `koanf:"duration_endpoint"`
	// KeepAlive retries quota-limited duration lookups with backoff
	// instead of failing the run.
	KeepAlive bool `koanf:"keep_alive"`
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		GeoIP: GeoIPConfig{
			TablePath:      "IPDB.csv",
			ExactCachePath: ".ipcache",
			RangeCachePath: ".iprangecache",
		},
		Pipeline: PipelineConfig{
			Workers: 0,
		},
		Sink: SinkConfig{
			Enabled: false,
			Path:    "pyedx.duckdb",
		},
		Content: ContentConfig{
			DurationEndpoint: "",
			KeepAlive:        false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and PYEDX_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("PYEDX_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies the struct-tag rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Configuration sections, used to split env var names into koanf paths.
var envSections = []string{"logging", "geoip", "pipeline", "sink", "content"}

// envTransform maps PYEDX_GEOIP_TABLE_PATH to geoip.table_path: strip
// the prefix, lowercase, and break after the section name.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "PYEDX_"))
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
