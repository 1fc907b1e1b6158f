package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ScreenshotsDir != "screenshots" {
		t.Errorf("ScreenshotsDir = %q, want screenshots", cfg.ScreenshotsDir)
	}
	if cfg.Browser.ViewportWidth != 1280 || cfg.Browser.ViewportHeight != 800 {
		t.Errorf("viewport = %dx%d, want 1280x800", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}
	if got := cfg.Browser.NavigationTimeout(); got != 30*time.Second {
		t.Errorf("NavigationTimeout = %v, want 30s", got)
	}
	if got := cfg.Browser.SearchPause(); got != 4*time.Second {
		t.Errorf("SearchPause = %v, want 4s", got)
	}
	if got := cfg.Browser.AuthWait(); got != 20*time.Second {
		t.Errorf("AuthWait = %v, want 20s", got)
	}
	if cfg.Sheets.Mode != "export" {
		t.Errorf("Sheets.Mode = %q, want export", cfg.Sheets.Mode)
	}
	if cfg.Drive.Backend != "local" {
		t.Errorf("Drive.Backend = %q, want local", cfg.Drive.Backend)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir not defaulted")
	}
	if cfg.Audit.Dir != filepath.Join(cfg.DataDir, "audit") {
		t.Errorf("Audit.Dir = %q, want under DataDir", cfg.Audit.Dir)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if cfg.Drive.Backend != "local" {
		t.Errorf("Drive.Backend = %q, want default local", cfg.Drive.Backend)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /var/lib/evidence
screenshots_dir: /tmp/shots
log:
  format: json
  level: debug
browser:
  headless: true
  auth_wait_seconds: 5
drive:
  backend: s3
  s3_bucket: evidence-bucket
  s3_region: us-east-1
  root_folder: https://drive.google.com/drive/folders/abc123
audit:
  enabled: true
  endpoint: http://audit.internal/events
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/evidence" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "debug" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless not set")
	}
	if got := cfg.Browser.AuthWait(); got != 5*time.Second {
		t.Errorf("AuthWait = %v, want 5s", got)
	}
	// Values the file omits keep their defaults.
	if got := cfg.Browser.SearchPause(); got != 4*time.Second {
		t.Errorf("SearchPause = %v, want default 4s", got)
	}
	if cfg.Drive.Backend != "s3" || cfg.Drive.S3Bucket != "evidence-bucket" {
		t.Errorf("Drive = %+v", cfg.Drive)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Endpoint != "http://audit.internal/events" {
		t.Errorf("Audit = %+v", cfg.Audit)
	}
	if got := cfg.IndexPath(); got != filepath.Join("/var/lib/evidence", "sectors_index.json") {
		t.Errorf("IndexPath = %q", got)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("drive: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	} else if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("error = %v, want parse config wrap", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EVIDENCE_DATA_DIR", "/env/data")
	t.Setenv("EVIDENCE_LOG_LEVEL", "warn")
	t.Setenv("EVIDENCE_BROWSER_HEADLESS", "true")
	t.Setenv("EVIDENCE_SEARCH_PAUSE_MS", "250")
	t.Setenv("EVIDENCE_DRIVE_BACKEND", "mem")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/env/data" {
		t.Errorf("DataDir = %q, want /env/data", cfg.DataDir)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless not overridden")
	}
	if got := cfg.Browser.SearchPause(); got != 250*time.Millisecond {
		t.Errorf("SearchPause = %v, want 250ms", got)
	}
	if cfg.Drive.Backend != "mem" {
		t.Errorf("Drive.Backend = %q, want mem", cfg.Drive.Backend)
	}
}
