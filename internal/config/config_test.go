package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("unexpected default port: %q", cfg.Port)
	}
	if cfg.CacheTTL != DefaultCacheTTLSec {
		t.Fatalf("unexpected default cache TTL: %d", cfg.CacheTTL)
	}
	if cfg.FetchTimeout != DefaultFetchTimeoutSec {
		t.Fatalf("unexpected default fetch timeout: %d", cfg.FetchTimeout)
	}
	if cfg.UpstreamURL == "" {
		t.Fatal("expected a default upstream URL")
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("EXPORTER_PORT", "9999")
	t.Setenv("UPSTREAM_URL", "http://localhost:8080/schedule.json")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("NOTIFY_CHAT_ID", "-1001234567890")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %q", cfg.Port)
	}
	if cfg.UpstreamURL != "http://localhost:8080/schedule.json" {
		t.Fatalf("unexpected upstream url: %q", cfg.UpstreamURL)
	}
	if cfg.CacheTTL != 60 {
		t.Fatalf("expected cache TTL 60, got %d", cfg.CacheTTL)
	}
	if cfg.NotifyChatID != -1001234567890 {
		t.Fatalf("unexpected chat id: %d", cfg.NotifyChatID)
	}
}

func TestLoadIgnoresInvalidInt(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-number")

	cfg := Load()
	if cfg.CacheTTL != DefaultCacheTTLSec {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.CacheTTL)
	}
}
