// Package config loads pool configuration from YAML with defaults and
// validation. Everything here is optional: an absent file or empty document
// yields the default configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gamalabs/agentpool/logging"
)

// Duration wraps time.Duration so YAML values can use human-friendly
// strings ("30s", "5m", "1h30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// Config is the root configuration document.
type Config struct {
	Cache       CacheConfig       `yaml:"cache"`
	Mailbox     MailboxConfig     `yaml:"mailbox"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CacheConfig tunes the result cache.
type CacheConfig struct {
	MaxEntries    int      `yaml:"max_entries"`
	DefaultTTL    Duration `yaml:"default_ttl"`
	MaxValueBytes int      `yaml:"max_value_bytes"`
	// SweepSchedule is a cron expression for periodic expiry sweeps. Empty
	// disables the sweeper.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// MailboxConfig tunes the per-agent mailboxes.
type MailboxConfig struct {
	MaxMessages int `yaml:"max_messages"`
}

// CoordinatorConfig tunes task dispatch.
type CoordinatorConfig struct {
	// DefaultTimeout applies to executions whose options carry no deadline.
	DefaultTimeout Duration `yaml:"default_timeout"`
}

// LoggingConfig tunes the pool logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			MaxEntries:    100,
			DefaultTTL:    Duration(30 * time.Minute),
			MaxValueBytes: 16 * 1024,
		},
		Mailbox: MailboxConfig{
			MaxMessages: 20,
		},
		Coordinator: CoordinatorConfig{
			DefaultTimeout: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads and parses a YAML configuration file. A missing file is not an
// error; it yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the pool cannot run with.
func (c Config) Validate() error {
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.DefaultTTL < 0 {
		return fmt.Errorf("cache.default_ttl must not be negative, got %s", c.Cache.DefaultTTL)
	}
	if c.Cache.MaxValueBytes < 0 {
		return fmt.Errorf("cache.max_value_bytes must not be negative, got %d", c.Cache.MaxValueBytes)
	}
	if c.Mailbox.MaxMessages < 0 {
		return fmt.Errorf("mailbox.max_messages must not be negative, got %d", c.Mailbox.MaxMessages)
	}
	if c.Coordinator.DefaultTimeout < 0 {
		return fmt.Errorf("coordinator.default_timeout must not be negative, got %s", c.Coordinator.DefaultTimeout)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// LogLevel maps the configured level string onto the logging enum.
func (c LoggingConfig) LogLevel() logging.LogLevel {
	switch c.Level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
