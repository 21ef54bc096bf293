package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_ADDR", "")
	t.Setenv("CONTRACTVIEW_WATCH", "")
	t.Setenv("MINIO_ENDPOINT", "")

	cfg := Load()
	if cfg.Addr != ":8787" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Watch {
		t.Fatalf("expected watch disabled by default")
	}
	if cfg.MinioEndpoint != "" {
		t.Fatalf("expected object storage disabled by default")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("CONTRACTVIEW_WATCH", "true")
	t.Setenv("CONTRACTVIEW_ACCESS_TTL_SECONDS", "60")
	t.Setenv("CONTRACTVIEW_CONTINUOUS_NUMBERING", "1")
	t.Setenv("MINIO_USE_SSL", "not-a-bool")

	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Fatalf("expected overridden addr, got %q", cfg.Addr)
	}
	if !cfg.Watch || !cfg.ContinuousNumbering {
		t.Fatalf("expected boolean overrides to apply: %+v", cfg)
	}
	if cfg.AccessTTL != time.Minute {
		t.Fatalf("expected 1m access ttl, got %s", cfg.AccessTTL)
	}
	if cfg.MinioUseSSL {
		t.Fatalf("expected invalid bool to fall back to default")
	}
}
