package utils

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_BASE_URL", "BACKEND_TIMEOUT", "SESSION_TTL", "DEV_BACKEND_STORE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.Backend.BaseURL != DefaultBackendBaseURL {
		t.Fatalf("expected default backend url, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 0 {
		t.Fatalf("expected backend calls to be unbounded by default, got %v", cfg.Backend.Timeout)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.DevBackend.Store != "memory" {
		t.Fatalf("expected memory store, got %s", cfg.DevBackend.Store)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8090/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("DEV_BACKEND_STORE", "Postgres")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8090" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.DevBackend.Store != "postgres" {
		t.Fatalf("expected postgres store, got %s", cfg.DevBackend.Store)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "ftp://example.com")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for non-http backend url")
	}

	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("DEV_BACKEND_STORE", "redis")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported store")
	}
}

func TestPostgresBuildDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "debate"}
	if got := cfg.BuildDSN(); got != "postgres://u:p@db:5432/debate" {
		t.Fatalf("unexpected dsn %s", got)
	}

	cfg.DSN = "postgres://override"
	if got := cfg.BuildDSN(); got != "postgres://override" {
		t.Fatalf("expected explicit dsn, got %s", got)
	}
}
