// Package config loads devfocus settings from a YAML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	EnvDBPath           = "DEVFOCUS_DB_PATH"
	EnvLogLevel         = "DEVFOCUS_LOG_LEVEL"
	EnvLogFormat        = "DEVFOCUS_LOG_FORMAT"
	EnvBackupDir        = "DEVFOCUS_BACKUP_DIR"
	EnvBackupPassphrase = "DEVFOCUS_BACKUP_PASSPHRASE"
)

type Config struct {
	DBPath  string        `yaml:"db_path"`
	Log     LogConfig     `yaml:"log"`
	Tracker TrackerConfig `yaml:"tracker"`
	Backup  BackupConfig  `yaml:"backup"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TrackerConfig struct {
	// MaxElapsedSeconds caps the elapsed time a caller may report for a session.
	MaxElapsedSeconds int64 `yaml:"max_elapsed_seconds"`
}

type BackupConfig struct {
	Dir       string `yaml:"dir"`
	Schedule  string `yaml:"schedule"`
	// Retention is how many completed backups are kept; 0 keeps all of them.
	// Nil until defaults are applied.
	Retention *int   `yaml:"retention"`

	// Passphrase is only read from the environment.
	Passphrase string `yaml:"-"`
}

// DefaultPath is where the config file is looked up when none is named.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "devfocus.yaml"
	}
	return filepath.Join(dir, "devfocus", "config.yaml")
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	return build(data, nil)
}

// Resolve loads the config the CLI runs with. An empty path falls back to
// DefaultPath, which may be absent; a named file must exist. Values from
// getenv override the file.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = nil
	}
	return build(data, getenv)
}

func build(data []byte, getenv func(string) string) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if getenv != nil {
		cfg.applyEnv(getenv)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		c.DBPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(getenv(EnvBackupDir)); v != "" {
		c.Backup.Dir = v
	}
	if v := getenv(EnvBackupPassphrase); v != "" {
		c.Backup.Passphrase = v
	}
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "devfocus.db"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Tracker.MaxElapsedSeconds == 0 {
		c.Tracker.MaxElapsedSeconds = 24 * 60 * 60
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.DBPath), "backups")
	}
	if c.Backup.Retention == nil {
		keep := 7
		c.Backup.Retention = &keep
	}
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// SetLogLevel overrides the configured log level, applying the same check as
// the config file.
func (c *Config) SetLogLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if !validLogLevel(level) {
		return fmt.Errorf("log level %q must be debug, info, warn or error", level)
	}
	c.Log.Level = level
	return nil
}

// validate checks that every field holds a usable value.
func (c *Config) validate() error {
	var errs []string
	if !validLogLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Tracker.MaxElapsedSeconds < 0 {
		errs = append(errs, "tracker.max_elapsed_seconds must be positive")
	}
	if *c.Backup.Retention < 0 {
		errs = append(errs, "backup.retention must not be negative")
	}
	if c.Backup.Schedule != "" {
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("backup.schedule %q: %v", c.Backup.Schedule, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

