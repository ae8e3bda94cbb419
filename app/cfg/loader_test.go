package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "BASE_URL", "API_ACCESS_KEY", "SITE_SOURCE", "CONTENT_DIR", "DB_PATH",
		"SNAPSHOT_FROM", "FEED_URL", "LANGUAGES", "HOME_PAGE", "SITEMAP_CONFIG", "STYLESHEET_PATH",
		"BUILD_TIMEOUT", "WATCH", "CACHE_BACKEND", "REDIS_ADDR", "CACHE_TTL",
		"USER_AGENT", "TZ", "DEBUG",
	} {
		// Setenv restores the original value on cleanup
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "http://localhost:8080" {
		t.Errorf("Expected default base URL, got '%s'", cfg.BaseUrl)
	}
	if cfg.Source != SourceDirectory {
		t.Errorf("Expected source '%s', got '%s'", SourceDirectory, cfg.Source)
	}
	if cfg.CacheBackend != CacheMemory {
		t.Errorf("Expected cache backend '%s', got '%s'", CacheMemory, cfg.CacheBackend)
	}
	if cfg.BuildTimeout != 30*time.Second {
		t.Errorf("Expected build timeout 30s, got %v", cfg.BuildTimeout)
	}
	if cfg.CacheTTL != 0 {
		t.Errorf("Expected no cache TTL, got %v", cfg.CacheTTL)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "en" {
		t.Errorf("Expected languages [en], got %v", cfg.Languages)
	}
	if cfg.HomePage != "home" {
		t.Errorf("Expected home page 'home', got '%s'", cfg.HomePage)
	}
	if cfg.Watch || cfg.Debug {
		t.Error("Expected watch and debug to be disabled")
	}
}

func TestParseFlags(t *testing.T) {
	clearEnv(t)

	cfg, err := parse([]string{
		"--base-url", "https://example.com/",
		"--languages", "en, de,fr",
		"--source", "sqlite",
		"--cache-ttl", "300",
		"--watch",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.BaseUrl != "https://example.com" {
		t.Errorf("Expected trailing slash trimmed, got '%s'", cfg.BaseUrl)
	}
	if len(cfg.Languages) != 3 || cfg.Languages[1] != "de" {
		t.Errorf("Expected languages [en de fr], got %v", cfg.Languages)
	}
	if cfg.Source != SourceSQLite {
		t.Errorf("Expected source 'sqlite', got '%s'", cfg.Source)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("Expected cache TTL 5m, got %v", cfg.CacheTTL)
	}
	if !cfg.Watch {
		t.Error("Expected watch to be enabled")
	}
}

func TestParseEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.CacheBackend != CacheRedis || cfg.RedisAddr != "cache:6379" {
		t.Errorf("Expected redis cache at cache:6379, got %s at %s", cfg.CacheBackend, cfg.RedisAddr)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"feed source without url", []string{"--source", "feed"}},
		{"unknown source", []string{"--source", "ftp"}},
		{"zero build timeout", []string{"--build-timeout", "0"}},
		{"negative cache ttl", []string{"--cache-ttl=-1"}},
		{"snapshot import without sqlite", []string{"--snapshot-from", "./content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := parse(tt.args); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestParseSnapshotFrom(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_FROM", "./content")

	cfg, err := parse([]string{"--source", "sqlite"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.SnapshotFrom != "./content" {
		t.Errorf("Expected snapshot directory './content', got '%s'", cfg.SnapshotFrom)
	}
}

func TestSplitList(t *testing.T) {
	items := splitList(" en ,, de ,")
	if len(items) != 2 || items[0] != "en" || items[1] != "de" {
		t.Errorf("Expected [en de], got %v", items)
	}
	if splitList("") != nil {
		t.Error("Expected nil for empty list")
	}
}
