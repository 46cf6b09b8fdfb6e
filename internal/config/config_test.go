package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SHEETADMIN_HOST", "SHEETADMIN_SHEET", "SHEETADMIN_TOKEN", "SHEETADMIN_GOTO_URL", "SHEETADMIN_RATE_LIMIT"} {
		t.Setenv(key, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "host: https://trc.example.org/api\nsheet: abc123\ntoken: tok\ntimeout: 5s\npoll_interval: 500ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "https://trc.example.org/api" || cfg.Sheet != "abc123" || cfg.Token != "tok" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second || cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("durations not decoded: %+v", cfg)
	}
	if cfg.RateLimit != 10 {
		t.Errorf("RateLimit default not applied: %v", cfg.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil || err.Error() != "missing required settings: host, sheet" {
		t.Errorf("Validate = %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host: https://file\nsheet: file-sheet\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEETADMIN_SHEET", "env-sheet")
	t.Setenv("SHEETADMIN_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "https://file" || cfg.Sheet != "env-sheet" || cfg.RateLimit != 2.5 {
		t.Errorf("unexpected config %+v", cfg)
	}

	cfg.Override("", "flag-sheet", "flag-token", "")
	if cfg.Sheet != "flag-sheet" || cfg.Token != "flag-token" || cfg.Host != "https://file" {
		t.Errorf("Override: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Config{Host: "https://h", Sheet: "s", GotoURL: "https://g", RateLimit: 3, Timeout: time.Minute, PollInterval: time.Second}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a YAML error")
	}
}
