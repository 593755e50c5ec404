package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"icloudmonkey/internal/infrastructure/logging"
)

const (
	DefaultAppName     = "iCloudMonkey"
	DefaultTargetTitle = "iCloud"

	configFileName  = "config.toml"
	logFileName     = "icloudmonkey.log"
	journalFileName = "journal.db"

	envPrefix = "ICLOUDMONKEY_"
)

// Duration is a time.Duration written as "3s" in the config file
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// JournalConfig controls the hide journal
type JournalConfig struct {
	Enabled       bool     `toml:"Enabled"`
	Path          string   `toml:"Path,omitempty"` // empty means <data dir>/journal.db
	RetentionDays int      `toml:"RetentionDays"`  // 0 keeps everything
	FlushInterval Duration `toml:"FlushInterval"`
}

// Config holds user settings read from <data dir>/config.toml
type Config struct {
	AppName        string        `toml:"AppName"`
	TargetTitle    string        `toml:"TargetTitle"`
	SplashDuration Duration      `toml:"SplashDuration"`
	LogLevel       string        `toml:"LogLevel"`
	Environment    string        `toml:"Environment"`
	Journal        JournalConfig `toml:"Journal"`

	DataDir string `toml:"-"`
}

// Default returns factory defaults rooted at dataDir
func Default(dataDir string) *Config {
	return &Config{
		AppName:        DefaultAppName,
		TargetTitle:    DefaultTargetTitle,
		SplashDuration: Duration(3 * time.Second),
		LogLevel:       "info",
		Environment:    "production",
		Journal: JournalConfig{
			Enabled:       true,
			RetentionDays: 90,
			FlushInterval: Duration(30 * time.Second),
		},
		DataDir: dataDir,
	}
}

// DefaultDataDir returns ICLOUDMONKEY_DATA_DIR if set, otherwise the per-user
// configuration directory (%APPDATA% on Windows) joined with the app name.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(envPrefix + "DATA_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, DefaultAppName), nil
}

// Load reads dataDir/config.toml on top of the defaults.
// A missing file yields defaults. A corrupt file is logged and replaced with defaults.
func Load(dataDir string, logger logging.Logger) (*Config, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	cfg := Default(dataDir)
	path := cfg.FilePath()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		logger.Warn("Config file is corrupt, resetting to defaults", "path", path, "error", err)
		cfg = Default(dataDir)
		if saveErr := cfg.Save(); saveErr != nil {
			logger.Error("Failed to rewrite config file", "path", path, "error", saveErr)
		}
		return cfg, nil
	}
	cfg.DataDir = dataDir

	return cfg, nil
}

// parseBoolEnv reads key as a boolean; the second result reports whether it was set and valid.
// Accepts true/false, 1/0, t/f, yes/no, y/n, on/off in any case.
func parseBoolEnv(key string) (bool, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false, false
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}
	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// LoadFromEnvironment applies ICLOUDMONKEY_* overrides
func (c *Config) LoadFromEnvironment() {
	if title := os.Getenv(envPrefix + "TARGET_TITLE"); title != "" {
		c.TargetTitle = title
	}
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	if env := os.Getenv(envPrefix + "ENVIRONMENT"); env != "" {
		c.Environment = strings.ToLower(env)
	}
	if enabled, ok := parseBoolEnv(envPrefix + "JOURNAL_ENABLED"); ok {
		c.Journal.Enabled = enabled
	}
	if path := os.Getenv(envPrefix + "JOURNAL_PATH"); path != "" {
		c.Journal.Path = path
	}
}

var (
	validLogLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validEnvironments = map[string]bool{"production": true, "development": true, "test": true}
)

// Validate checks the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("AppName cannot be empty")
	}
	if c.TargetTitle == "" {
		return errors.New("TargetTitle cannot be empty")
	}
	if c.SplashDuration < 0 {
		return fmt.Errorf("SplashDuration cannot be negative, got %v", c.SplashDuration.Std())
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid LogLevel: %s", c.LogLevel)
	}
	if !validEnvironments[c.Environment] {
		return fmt.Errorf("invalid Environment: %s", c.Environment)
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("Journal.RetentionDays cannot be negative, got %d", c.Journal.RetentionDays)
	}
	if c.Journal.Enabled && c.Journal.FlushInterval <= 0 {
		return fmt.Errorf("Journal.FlushInterval must be positive, got %v", c.Journal.FlushInterval.Std())
	}
	return nil
}

// FilePath is where the config is read from and saved to
func (c *Config) FilePath() string {
	return filepath.Join(c.DataDir, configFileName)
}

// LogPath is the log file used when running as a tray application
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, logFileName)
}

// JournalPath resolves the journal database location
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.DataDir, journalFileName)
}

// IsDevelopment reports whether Environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Save writes the config atomically (temp file, then rename)
func (c *Config) Save() error {
	path := c.FilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}
