package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver: want=sqlite got=%s", cfg.DBDriver)
	}
	if cfg.DBLockTimeout != 5*time.Second || cfg.OutboxBatchSize != 100 {
		t.Fatalf("defaults: lock=%s batch=%d", cfg.DBLockTimeout, cfg.OutboxBatchSize)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("unknown DB_DRIVER should fail validation")
	}

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_LOCK_TIMEOUT", "1500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc")
	t.Setenv("POSTGRES_NAME", "shop")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Fatalf("addr: got=%s", cfg.Addr())
	}
	if cfg.DBLockTimeout != 1500*time.Millisecond {
		t.Fatalf("lock timeout: got=%s", cfg.DBLockTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors origins: got=%v", cfg.CORSAllowedOrigins)
	}
	if cfg.Otel().Headers["x-api-key"] != "abc" {
		t.Fatalf("otel headers: got=%v", cfg.Otel().Headers)
	}
	if cfg.Postgres().Name != "shop" {
		t.Fatalf("postgres name: got=%s", cfg.Postgres().Name)
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{DBDriver: "sqlite", OutboxBatchSize: 10}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	bad := base
	bad.DBDriver = "mysql"
	if bad.Validate() == nil {
		t.Fatalf("mysql driver should be rejected")
	}
	bad = base
	bad.OutboxBatchSize = 0
	if bad.Validate() == nil {
		t.Fatalf("zero batch size should be rejected")
	}
	bad = base
	bad.Environment = "production"
	if bad.Validate() == nil {
		t.Fatalf("production without JWT secret should be rejected")
	}
}
