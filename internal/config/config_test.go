package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if cfg.OnConflict != "skip" || cfg.Calendar != "primary" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatal("expected config file to be created:", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	cfg.OnConflict = "update"
	if err := Save(path, cfg); err != nil {
		t.Fatal("unexpected error:", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if got.Timezone != "Europe/Berlin" || got.OnConflict != "update" {
		t.Errorf("unexpected config: %+v", got)
	}
}

func TestNormalizeRejectsUnknownValues(t *testing.T) {
	cfg := &Config{OnConflict: "maybe"}
	if err := cfg.Normalize(); err == nil {
		t.Fatal("expected error for unknown on_conflict")
	}

	cfg = &Config{SendUpdates: "sometimes"}
	if err := cfg.Normalize(); err == nil {
		t.Fatal("expected error for unknown send_updates")
	}
}

func TestNormalizeFillsEmptyValues(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Normalize(); err != nil {
		t.Fatal("unexpected error:", err)
	}
	if cfg.DataDir != "data" || cfg.DatabaseFile != "calassist.db" || cfg.SendUpdates != "all" {
		t.Errorf("unexpected normalized config: %+v", cfg)
	}
}
