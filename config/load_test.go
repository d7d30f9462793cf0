package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gokin.yaml")
	raw := "window_size: 5\ncooldown_seconds: 120\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.WindowSize != 5 {
		t.Fatalf("expected WindowSize 5, got %d", cfg.WindowSize)
	}
	if cfg.CooldownSeconds != 120 {
		t.Fatalf("expected CooldownSeconds 120, got %v", cfg.CooldownSeconds)
	}
	// Untouched fields keep their defaults.
	if cfg.MaintainThreshold != 0.98 {
		t.Fatalf("expected default MaintainThreshold, got %v", cfg.MaintainThreshold)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gokin.yaml")
	if err := os.WriteFile(path, []byte("window_size: -1\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for negative window size")
	}
}

func TestLoadFileMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("GOKIN_COOLDOWN_SECONDS", "90")
	t.Setenv("GOKIN_HISTORY_CAPACITY", "20")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.CooldownSeconds != 90 {
		t.Fatalf("expected CooldownSeconds 90, got %v", cfg.CooldownSeconds)
	}
	if cfg.HistoryCapacity != 20 {
		t.Fatalf("expected HistoryCapacity 20, got %d", cfg.HistoryCapacity)
	}
	if cfg.WindowSize != 3 {
		t.Fatalf("expected default WindowSize, got %d", cfg.WindowSize)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("GOKIN_WINDOW_SIZE", "0")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected validation error for zero window size")
	}
}
