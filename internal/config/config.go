package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// Config holds everything cadence reads from its environment.
type Config struct {
	DBPath                string `yaml:"db"`
	Timezone              string `yaml:"timezone"`
	MaxConcurrentSteps    int    `yaml:"max_concurrent_steps"`
	MaxPushDays           int    `yaml:"max_push_days"`
	LookaheadDays         int    `yaml:"lookahead_days"`
	RecentCompletionHours int    `yaml:"recent_completion_hours"`
	LogLevel              string `yaml:"log_level"`
	LogFormat             string `yaml:"log_format"`
}

// DefaultConfig returns a Config with sensible defaults. DBPath is left
// empty and resolved by DatabasePath.
func DefaultConfig() Config {
	return Config{
		Timezone:              "UTC",
		MaxConcurrentSteps:    1,
		MaxPushDays:           365,
		LookaheadDays:         30,
		RecentCompletionHours: 24,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// Load builds the configuration from defaults, then the config file, then
// environment variables. The file is CADENCE_CONFIG when set (and must
// exist), otherwise ~/.cadence/config.yaml when present.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, explicit := os.Getenv("CADENCE_CONFIG"), true
	if path == "" {
		explicit = false
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".cadence", "config.yaml")
		}
	}
	if path != "" {
		err := LoadFile(path, &cfg)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv reads CADENCE_* overrides. Values that do not parse are ignored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CADENCE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CADENCE_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("CADENCE_MAX_CONCURRENT_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrentSteps = n
		}
	}
	if v := os.Getenv("CADENCE_MAX_PUSH_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPushDays = n
		}
	}
	if v := os.Getenv("CADENCE_LOOKAHEAD_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LookaheadDays = n
		}
	}
	if v := os.Getenv("CADENCE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CADENCE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if c.MaxConcurrentSteps < 0 {
		return fmt.Errorf("max_concurrent_steps must not be negative, got %d", c.MaxConcurrentSteps)
	}
	if c.MaxPushDays <= 0 {
		return fmt.Errorf("max_push_days must be positive, got %d", c.MaxPushDays)
	}
	if c.LookaheadDays <= 0 {
		return fmt.Errorf("lookahead_days must be positive, got %d", c.LookaheadDays)
	}
	if c.RecentCompletionHours <= 0 {
		return fmt.Errorf("recent_completion_hours must be positive, got %d", c.RecentCompletionHours)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// DatabasePath returns DBPath, defaulting to ~/.cadence/cadence.db.
func (c Config) DatabasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".cadence", "cadence.db"), nil
}

// Settings converts the configuration into planner settings.
func (c Config) Settings() (scheduler.Settings, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return scheduler.Settings{}, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return scheduler.Settings{
		Location:               loc,
		MaxConcurrentSteps:     c.MaxConcurrentSteps,
		MaxPushDays:            c.MaxPushDays,
		RecentCompletionWindow: time.Duration(c.RecentCompletionHours) * time.Hour,
	}, nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
