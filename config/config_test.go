package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "MYSQL_MAX_OPEN_CONNS", "MYSQL_CONN_MAX_LIFETIME", "REDIS_DB", "LOCK_BACKEND", "SUPPRESSION_PROVIDER", "ADAPTERS_FILE",
		"BOUNCE_MAX_RETRIES", "AUTH_SERVICE_URL", "AUTH_SERVICE_GRPC_ADDR", "INTERNAL_SERVICE_NAME"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.GRPCPort != "9090" {
		t.Fatalf("unexpected ports: %s %s", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.MySQLMaxOpen != 10 || cfg.MySQLMaxLife != 5*time.Minute || cfg.RedisDB != 0 {
		t.Fatalf("unexpected pool settings: %+v", cfg)
	}
	if cfg.LockBackend != "redis" || cfg.SuppressionProvider != "noop" || cfg.AdaptersFile != "" {
		t.Fatalf("unexpected backends: %+v", cfg)
	}
	if cfg.BounceMaxRetries != 5 {
		t.Fatalf("unexpected retry budget: %d", cfg.BounceMaxRetries)
	}
	if cfg.AuthServiceURL != "" || cfg.AuthGRPCAddr != "localhost:9091" || cfg.InternalServiceName != "bounces-service" {
		t.Fatalf("unexpected auth settings: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "18080")
	t.Setenv("MYSQL_MAX_OPEN_CONNS", "42")
	t.Setenv("MYSQL_CONN_MAX_LIFETIME", "90s")
	t.Setenv("LOCK_BACKEND", "mysql")
	t.Setenv("ADAPTERS_FILE", "/etc/bounces/adapters.json")
	t.Setenv("BOUNCE_MAX_RETRIES", "8")
	t.Setenv("INTERNAL_SERVICE_NAME", "bounces-internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "18080" || cfg.MySQLMaxOpen != 42 || cfg.MySQLMaxLife != 90*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LockBackend != "mysql" || cfg.AdaptersFile != "/etc/bounces/adapters.json" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.BounceMaxRetries != 8 || cfg.InternalServiceName != "bounces-internal" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid REDIS_DB")
	}
}
