package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CLIPSTREAM_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when the JWT secret is unset")
	}

	t.Setenv("CLIPSTREAM_JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for a short JWT secret")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("CLIPSTREAM_JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.AppPort)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("expected default access TTL, got %v", cfg.AccessTTL)
	}
	if cfg.ObjectStore.Bucket == "" {
		t.Fatal("expected a default media bucket")
	}

	t.Setenv("CLIPSTREAM_PORT", "9999")
	t.Setenv("CLIPSTREAM_ACCESS_TTL", "5m")
	t.Setenv("CLIPSTREAM_LOGIN_RATE_LIMIT", "3")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("load with overrides: %v", err)
	}
	if cfg.AppPort != 9999 {
		t.Fatalf("expected overridden port, got %d", cfg.AppPort)
	}
	if cfg.AccessTTL != 5*time.Minute {
		t.Fatalf("expected overridden access TTL, got %v", cfg.AccessTTL)
	}
	if cfg.LoginRateLimit != 3 {
		t.Fatalf("expected overridden rate limit, got %d", cfg.LoginRateLimit)
	}
}
