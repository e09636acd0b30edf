package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	_ "time/tzdata"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q, want Asia/Seoul", cfg.Timezone)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %o, want 600", info.Mode().Perm())
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if *again != *cfg {
		t.Errorf("reloaded config differs:\n got %+v\nwant %+v", again, cfg)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen: \":9000\"\nexpand_recurring: true\nrefresh: \"0 * * * *\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if !cfg.ExpandRecurring {
		t.Error("ExpandRecurring not read")
	}
	if cfg.RefreshCron != "0 * * * *" {
		t.Errorf("RefreshCron = %q", cfg.RefreshCron)
	}
	if cfg.DataDir != "./data" || cfg.RecentLimit != 5 || cfg.Capture.Width != 1280 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestSaveRejectsEmptyArgs(t *testing.T) {
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("expected error for empty path")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		timezone string
		want     string
	}{
		{"Asia/Seoul", "Asia/Seoul"},
		{"UTC", "UTC"},
		{"", "Local"},
		{"Not/AZone", "Local"},
	}
	for _, tt := range tests {
		cfg := &Config{Timezone: tt.timezone}
		if got := cfg.Location().String(); got != tt.want {
			t.Errorf("Location(%q) = %s, want %s", tt.timezone, got, tt.want)
		}
	}
}
