package config

import (
	"strings"
	"testing"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("NOTIFY_CHAT_ID", "-100123")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	t.Setenv("KAVITA_URL", "http://kavita.local/")
	t.Setenv("VAULT_URL", "http://vault.local")
	t.Setenv("CHECK_INTERVAL_HOURS", "4")
	t.Setenv("LOOKBACK_HOURS", "")
	t.Setenv("NOTIFIED_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
}

func TestLoadValidConfig(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.CheckIntervalHours != 4 {
		t.Fatalf("unexpected interval %d", cfg.CheckIntervalHours)
	}
	if cfg.LookbackHours != 168 {
		t.Fatalf("expected default lookback 168, got %d", cfg.LookbackHours)
	}
	if cfg.NotifiedBackend != BackendVault {
		t.Fatalf("expected default backend vault, got %q", cfg.NotifiedBackend)
	}
	if strings.HasSuffix(cfg.KavitaURL, "/") {
		t.Fatalf("trailing slash must be trimmed, got %q", cfg.KavitaURL)
	}
}

func TestLoadRejectsMissingInterval(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CHECK_INTERVAL_HOURS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a missing interval")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	setValidEnv(t)
	for _, bad := range []string{"0", "-3", "abc"} {
		t.Setenv("CHECK_INTERVAL_HOURS", bad)
		if _, err := Load(); err == nil {
			t.Fatalf("expected an error for interval %q", bad)
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setValidEnv(t)
	t.Setenv("NOTIFIED_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}
}

func TestPostgresBackendRequiresDatabaseURL(t *testing.T) {
	setValidEnv(t)
	t.Setenv("NOTIFIED_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/notify")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.NotifiedBackend != BackendPostgres {
		t.Fatalf("expected postgres backend, got %q", cfg.NotifiedBackend)
	}
}

func TestLoadRejectsNonPositiveLookback(t *testing.T) {
	setValidEnv(t)
	t.Setenv("LOOKBACK_HOURS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a non-positive lookback")
	}
}
