// Package config loads sheetadmin settings from YAML and the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDirName = "sheetadmin"

// Config holds the connection settings shared by the TUI and the CLI.
type Config struct {
	Host    string `yaml:"host"`
	Sheet   string `yaml:"sheet"`
	Token   string `yaml:"token,omitempty"`
	GotoURL string `yaml:"goto_url,omitempty"`

	RateLimit    float64       `yaml:"rate_limit,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// Default returns the limits used when the file leaves them out.
func Default() Config {
	return Config{
		RateLimit:    10,
		Timeout:      30 * time.Second,
		PollInterval: 2 * time.Second,
	}
}

// Dir is the per-user config directory.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDirName)
}

// DefaultPath is Dir()/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path (DefaultPath when empty), then applies SHEETADMIN_*
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, err
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory.
func Save(cfg Config, path string) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	set("SHEETADMIN_HOST", &c.Host)
	set("SHEETADMIN_SHEET", &c.Sheet)
	set("SHEETADMIN_TOKEN", &c.Token)
	set("SHEETADMIN_GOTO_URL", &c.GotoURL)
	if value, ok := lookup("SHEETADMIN_RATE_LIMIT"); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && parsed > 0 {
			c.RateLimit = parsed
		}
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.RateLimit <= 0 {
		c.RateLimit = def.RateLimit
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
}

// Override replaces fields with the non-empty values given on the command line.
func (c *Config) Override(host, sheet, token, gotoURL string) {
	if v := strings.TrimSpace(host); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(sheet); v != "" {
		c.Sheet = v
	}
	if v := strings.TrimSpace(token); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(gotoURL); v != "" {
		c.GotoURL = v
	}
}

// Validate reports missing connection settings.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(c.Sheet) == "" {
		missing = append(missing, "sheet")
	}
	if len(missing) > 0 {
		return errors.New("missing required settings: " + strings.Join(missing, ", "))
	}
	return nil
}
