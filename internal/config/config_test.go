package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DSN_PRIMARY", "")
	t.Setenv("DB_DSN_READONLY", "")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.DBDSNReadOnly != cfg.DBDSNPrimary {
		t.Fatalf("read-only DSN should fall back to primary")
	}
	if cfg.ActivityLimit != 20 || cfg.SearchHistoryLimit != 10 {
		t.Fatalf("unexpected history limits: %d %d", cfg.ActivityLimit, cfg.SearchHistoryLimit)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("ACTIVITY_LIMIT", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("BASE_URL", "https://api.relique.test/")
	t.Setenv("AUDIT_PRUNE_INTERVAL_SECONDS", "not-a-number")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.HTTPAddr)
	}
	if cfg.ActivityLimit != 5 {
		t.Fatalf("expected 5, got %d", cfg.ActivityLimit)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.BaseURL != "https://api.relique.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.AuditPruneInterval != time.Hour {
		t.Fatalf("bad integer should fall back to default, got %v", cfg.AuditPruneInterval)
	}
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.DBDriver = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}

	cfg = FromEnv()
	cfg.JWTSecret = ""
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT secret")
	}
	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development mode should allow empty secret, got %v", err)
	}

	cfg.AdminEmail = "root@relique.test"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when admin password missing")
	}
}

func TestValidateRejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AUDIT_PRUNE_INTERVAL_SECONDS", "0"},
		{"AUDIT_PRUNE_INTERVAL_SECONDS", "-5"},
		{"SHUTDOWN_TIMEOUT_SECONDS", "0"},
		{"TOKEN_TTL_HOURS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := FromEnv()
			cfg.JWTSecret = "secret"
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", tt.key, tt.value)
			}
		})
	}
}
