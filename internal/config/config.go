// Package config loads evidence-copier configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the evidence copier.
type Config struct {
	// DataDir holds durable state (sector index, audit chain). Defaults to
	// ~/.evidence-copier.
	DataDir string `yaml:"data_dir"`

	// ScreenshotsDir is where captured evidence is written before upload.
	ScreenshotsDir string `yaml:"screenshots_dir"`

	Log     LogConfig     `yaml:"log"`
	Browser BrowserConfig `yaml:"browser"`
	Sheets  SheetsConfig  `yaml:"sheets"`
	Drive   DriveConfig   `yaml:"drive"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Format string `yaml:"format"` // "json" | "text"
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
}

// BrowserConfig configures the automated browser session.
type BrowserConfig struct {
	Headless            bool `yaml:"headless"`
	ViewportWidth       int  `yaml:"viewport_width"`
	ViewportHeight      int  `yaml:"viewport_height"`
	NavigationTimeoutMs int  `yaml:"navigation_timeout_ms"`
	// SearchPauseMs is the settle delay after typing into find-in-page.
	// Heuristic: gives the page time to render match highlights.
	SearchPauseMs int `yaml:"search_pause_ms"`
	// AuthWaitSeconds is how long a run pauses for manual login before the
	// search loop starts. Heuristic, not adaptive.
	AuthWaitSeconds int `yaml:"auth_wait_seconds"`
}

// NavigationTimeout returns the bounded page navigation wait.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// SearchPause returns the post-search settle delay.
func (c BrowserConfig) SearchPause() time.Duration {
	if c.SearchPauseMs == 0 {
		return 4 * time.Second
	}
	return time.Duration(c.SearchPauseMs) * time.Millisecond
}

// AuthWait returns the fixed manual-authentication pause.
func (c BrowserConfig) AuthWait() time.Duration {
	if c.AuthWaitSeconds == 0 {
		return 20 * time.Second
	}
	return time.Duration(c.AuthWaitSeconds) * time.Second
}

// SheetsConfig configures the remote name-list source.
type SheetsConfig struct {
	Mode      string `yaml:"mode"`       // "export" | "local"
	LocalDir  string `yaml:"local_dir"`  // directory of <id>.csv files for local mode
	ExportURL string `yaml:"export_url"` // override export endpoint (tests)
}

// DriveConfig configures the remote evidence folder store.
type DriveConfig struct {
	Backend    string `yaml:"backend"` // "local" | "gcs" | "s3" | "mem"
	LocalDir   string `yaml:"local_dir"`
	GCSBucket  string `yaml:"gcs_bucket"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region"`
	Prefix     string `yaml:"prefix"`
	// RootFolder is the fixed folder every sector hierarchy is created
	// under. May be a bare id or a folder URL.
	RootFolder string `yaml:"root_folder"`
}

// AuditConfig configures evidence audit-trail emission.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // HTTP sink; empty = file-only
	Dir      string `yaml:"dir"`      // local audit dir; empty = <data_dir>/audit
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // e.g. ":9090"
}

// WatchConfig configures the screenshot directory watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// defaults mirror the original deployment values: a 1280x800 window avoids
// ultrawide rendering problems, 4s settle covers slow documents, 20s is
// enough to log in when a session already exists.
func defaults() Config {
	return Config{
		ScreenshotsDir: "screenshots",
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Browser: BrowserConfig{
			Headless:            false,
			ViewportWidth:       1280,
			ViewportHeight:      800,
			NavigationTimeoutMs: 30000,
			SearchPauseMs:       4000,
			AuthWaitSeconds:     20,
		},
		Sheets: SheetsConfig{
			Mode: "export",
		},
		Drive: DriveConfig{
			Backend: "local",
			Prefix:  "evidence/",
		},
	}
}

// Load reads configuration from path (optional) and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".evidence-copier")
	}
	if cfg.Audit.Dir == "" {
		cfg.Audit.Dir = filepath.Join(cfg.DataDir, "audit")
	}

	return cfg, nil
}

// applyEnv overrides file values from the environment.
func applyEnv(cfg *Config) {
	cfg.DataDir = getenvDefault("EVIDENCE_DATA_DIR", cfg.DataDir)
	cfg.ScreenshotsDir = getenvDefault("EVIDENCE_SCREENSHOTS_DIR", cfg.ScreenshotsDir)
	cfg.Log.Format = getenvDefault("EVIDENCE_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = getenvDefault("EVIDENCE_LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("EVIDENCE_BROWSER_HEADLESS"); v != "" {
		cfg.Browser.Headless = v == "true"
	}
	cfg.Browser.AuthWaitSeconds = getenvInt("EVIDENCE_AUTH_WAIT_SECONDS", cfg.Browser.AuthWaitSeconds)
	cfg.Browser.SearchPauseMs = getenvInt("EVIDENCE_SEARCH_PAUSE_MS", cfg.Browser.SearchPauseMs)
	cfg.Browser.NavigationTimeoutMs = getenvInt("EVIDENCE_NAV_TIMEOUT_MS", cfg.Browser.NavigationTimeoutMs)

	cfg.Sheets.Mode = getenvDefault("EVIDENCE_SHEETS_MODE", cfg.Sheets.Mode)
	cfg.Sheets.LocalDir = getenvDefault("EVIDENCE_SHEETS_LOCAL_DIR", cfg.Sheets.LocalDir)

	cfg.Drive.Backend = getenvDefault("EVIDENCE_DRIVE_BACKEND", cfg.Drive.Backend)
	cfg.Drive.LocalDir = getenvDefault("EVIDENCE_DRIVE_LOCAL_DIR", cfg.Drive.LocalDir)
	cfg.Drive.GCSBucket = getenvDefault("EVIDENCE_DRIVE_GCS_BUCKET", cfg.Drive.GCSBucket)
	cfg.Drive.S3Bucket = getenvDefault("EVIDENCE_DRIVE_S3_BUCKET", cfg.Drive.S3Bucket)
	cfg.Drive.S3Endpoint = getenvDefault("EVIDENCE_DRIVE_S3_ENDPOINT", cfg.Drive.S3Endpoint)
	cfg.Drive.S3Region = getenvDefault("EVIDENCE_DRIVE_S3_REGION", cfg.Drive.S3Region)
	cfg.Drive.Prefix = getenvDefault("EVIDENCE_DRIVE_PREFIX", cfg.Drive.Prefix)
	cfg.Drive.RootFolder = getenvDefault("EVIDENCE_DRIVE_ROOT_FOLDER", cfg.Drive.RootFolder)

	if v := os.Getenv("EVIDENCE_AUDIT_ENABLED"); v != "" {
		cfg.Audit.Enabled = v == "true"
	}
	cfg.Audit.Endpoint = getenvDefault("EVIDENCE_AUDIT_ENDPOINT", cfg.Audit.Endpoint)

	if v := os.Getenv("EVIDENCE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true"
	}
	cfg.Metrics.Address = getenvDefault("EVIDENCE_METRICS_ADDRESS", cfg.Metrics.Address)
}

// IndexPath returns the location of the durable sector index document.
func (c Config) IndexPath() string {
	return filepath.Join(c.DataDir, "sectors_index.json")
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
