package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.GIFQuality != 10 {
		t.Errorf("gif quality = %d", cfg.GIFQuality)
	}
	if cfg.ScratchPath == "" {
		t.Error("scratch path should never be empty")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PIXELVIEW_PORT", "9191")
	t.Setenv("PIXELVIEW_FETCH_TIMEOUT", "5s")
	t.Setenv("PIXELVIEW_FETCH_RETRIES", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("port = %q, want 9191", cfg.Port)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("fetch timeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.FetchRetries != 1 {
		t.Errorf("fetch retries = %d, want 1", cfg.FetchRetries)
	}
	if cfg.ServerAddress() != "0.0.0.0:9191" {
		t.Errorf("address = %q", cfg.ServerAddress())
	}
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("PIXELVIEW_FETCH_TIMEOUT", "soon")
	t.Setenv("PIXELVIEW_FETCH_RETRIES", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("fetch timeout = %v, want default", cfg.FetchTimeout)
	}
	if cfg.FetchRetries != 3 {
		t.Errorf("fetch retries = %d, want default", cfg.FetchRetries)
	}
}
