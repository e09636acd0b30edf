package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	appLog "churchsite/internal/log"
)

// SiteConfig holds presentation strings shown on rendered pages.
type SiteConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// CaptureConfig holds the viewport used when capturing the calendar page.
type CaptureConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone in which event dates are interpreted.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataDir holds departments.json, events.json, attendance.json,
	// budget.json and calendar/<year>.json.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// PostsDir holds one Markdown file per blog post.
	PostsDir string `yaml:"posts_dir" json:"posts_dir"`

	// RefreshCron is a cron schedule (e.g. "*/15 * * * *") for reloading
	// data files from disk. Empty disables reloading.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ExpandRecurring materializes weekly/monthly instances of recurring
	// calendar events. Off by default: only stored dates are queryable.
	ExpandRecurring bool `yaml:"expand_recurring" json:"expand_recurring"`

	// RecentLimit is the default number of entries in "recent events".
	RecentLimit int `yaml:"recent_limit" json:"recent_limit"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Site    SiteConfig    `yaml:"site" json:"site"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "Asia/Seoul"
	defaultDataDir     = "./data"
	defaultPostsDir    = "./content/posts"
	defaultRecentLimit = 5
	defaultSiteName    = "과천교회"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		DataDir:     defaultDataDir,
		PostsDir:    defaultPostsDir,
		RefreshCron: "",
		RecentLimit: defaultRecentLimit,
		LogLevel:    "info",
		Site: SiteConfig{
			Name:        defaultSiteName,
			Description: "부서 소식과 교회 일정",
		},
		Capture: CaptureConfig{Width: 1280, Height: 1024},
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.PostsDir == "" {
		c.PostsDir = defaultPostsDir
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = defaultRecentLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Site.Name == "" {
		c.Site.Name = defaultSiteName
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = 1280
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = 1024
	}
}

// Location resolves Timezone. An empty or unknown zone falls back to the
// local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", c.Timezone)
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created as needed) and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether a read-only location is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".churchsite-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
