package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("Expected empty redis addr, got %q", cfg.RedisAddr)
	}
	if cfg.HistorySize != 20 {
		t.Errorf("Expected history size 20, got %d", cfg.HistorySize)
	}
	if cfg.ReplayCount != 10 {
		t.Errorf("Expected replay count 10, got %d", cfg.ReplayCount)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHATROOM_LISTEN_ADDR", ":9090")
	t.Setenv("CHATROOM_REDIS_ADDR", "localhost:6379")
	t.Setenv("CHATROOM_HISTORY_SIZE", "50")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("Expected listen addr :9090, got %q", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected redis addr localhost:6379, got %q", cfg.RedisAddr)
	}
	if cfg.HistorySize != 50 {
		t.Errorf("Expected history size 50, got %d", cfg.HistorySize)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatroom.yaml")
	contents := "listen_addr: \":7070\"\nreplay_count: 5\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":7070" {
		t.Errorf("Expected listen addr :7070, got %q", cfg.ListenAddr)
	}
	if cfg.ReplayCount != 5 {
		t.Errorf("Expected replay count 5, got %d", cfg.ReplayCount)
	}
	// Unset keys keep their defaults
	if cfg.HistorySize != 20 {
		t.Errorf("Expected history size 20, got %d", cfg.HistorySize)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for explicitly named missing config file")
	}
}

func TestLoadRejectsBadHistorySize(t *testing.T) {
	t.Setenv("CHATROOM_HISTORY_SIZE", "0")

	if _, err := Load(""); err == nil {
		t.Fatal("Expected error for zero history size")
	}
}

func TestLoadClampsReplayToHistory(t *testing.T) {
	t.Setenv("CHATROOM_HISTORY_SIZE", "5")
	t.Setenv("CHATROOM_REPLAY_COUNT", "10")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ReplayCount != 5 {
		t.Errorf("Expected replay clamped to 5, got %d", cfg.ReplayCount)
	}
}
