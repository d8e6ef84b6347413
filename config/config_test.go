package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("http:\n  addr: \":8092\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Logging.Service != "presence-service" {
		t.Fatalf("expected service default, got %q", cfg.Logging.Service)
	}
	if cfg.Presence.DefaultRoomType != "page" {
		t.Fatalf("expected room type default, got %q", cfg.Presence.DefaultRoomType)
	}
	if cfg.PresenceTTL() != 30*time.Second {
		t.Fatalf("expected 30s TTL default, got %s", cfg.PresenceTTL())
	}
	if cfg.SweepInterval() != 15*time.Second {
		t.Fatalf("expected ttl/2 sweep default, got %s", cfg.SweepInterval())
	}
}

func TestLoadConfig_RequiresAddr(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  env: dev\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing http.addr")
	}
}

func TestPresenceDurations(t *testing.T) {
	cfg := &Config{Presence: Presence{TTL: "10s"}}
	if cfg.PresenceTTL() != 10*time.Second {
		t.Fatalf("expected 10s, got %s", cfg.PresenceTTL())
	}
	if cfg.SweepInterval() != 5*time.Second {
		t.Fatalf("sweep must default to ttl/2, got %s", cfg.SweepInterval())
	}

	cfg.Presence.SweepInterval = "3s"
	if cfg.SweepInterval() != 3*time.Second {
		t.Fatalf("explicit sweep interval must win, got %s", cfg.SweepInterval())
	}

	cfg.Presence.TTL = "garbage"
	if cfg.PresenceTTL() != 30*time.Second {
		t.Fatalf("unparseable ttl must fall back to 30s, got %s", cfg.PresenceTTL())
	}
}
