// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v, want info/console", cfg.Logging)
	}
	if cfg.GeoIP.TablePath != "IPDB.csv" {
		t.Errorf("TablePath = %q, want IPDB.csv", cfg.GeoIP.TablePath)
	}
	if cfg.GeoIP.ExactCachePath != ".ipcache" || cfg.GeoIP.RangeCachePath != ".iprangecache" {
		t.Errorf("cache paths = %+v", cfg.GeoIP)
	}
	if cfg.Sink.Enabled {
		t.Error("Sink.Enabled = true, want false by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyedx.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: debug\ngeoip:\n  table_path: /data/IPDB.csv\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.GeoIP.TablePath != "/data/IPDB.csv" {
		t.Errorf("TablePath = %q, want /data/IPDB.csv", cfg.GeoIP.TablePath)
	}
	// Untouched keys keep their defaults.
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "pyedx.yaml"), []byte("logging:\n  level: debug\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("PYEDX_LOGGING_LEVEL", "warn")
	t.Setenv("PYEDX_GEOIP_TABLE_PATH", "/srv/ranges.csv")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.GeoIP.TablePath != "/srv/ranges.csv" {
		t.Errorf("TablePath = %q, want /srv/ranges.csv", cfg.GeoIP.TablePath)
	}
}

func TestLoad_InvalidLevelRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PYEDX_LOGGING_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want validation failure for unknown level")
	}
}

func TestValidate_SinkPathRequiredWhenEnabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sink.Enabled = true
	cfg.Sink.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want missing sink path failure")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"PYEDX_LOGGING_LEVEL", "logging.level"},
		{"PYEDX_GEOIP_TABLE_PATH", "geoip.table_path"},
		{"PYEDX_GEOIP_EXACT_CACHE_PATH", "geoip.exact_cache_path"},
		{"PYEDX_SINK_ENABLED", "sink.enabled"},
		{"PYEDX_CONTENT_KEEP_ALIVE", "content.keep_alive"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.key); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
