package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

const envPrefix = "KIOKU_"

// Storage backends.
const (
	BackendMemory     = "memory"
	BackendFilesystem = "filesystem"
	BackendPostgres   = "postgres"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Reminders RemindersConfig `koanf:"reminders"`
	Notifier  NotifierConfig  `koanf:"notifier"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StorageConfig struct {
	Backend      string        `koanf:"backend"` // memory | filesystem | postgres
	Path         string        `koanf:"path"`
	DSN          string        `koanf:"dsn"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	AutoMigrate  bool          `koanf:"auto_migrate"`
	Timeout      time.Duration `koanf:"timeout"`
}

type RemindersConfig struct {
	FireHour         int    `koanf:"fire_hour"`
	Timezone         string `koanf:"timezone"` // IANA name; empty means local
	ReconcileCron    string `koanf:"reconcile_cron"`
	ReconcileOnStart bool   `koanf:"reconcile_on_start"`
}

// Location resolves the configured timezone.
func (c RemindersConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

type NotifierConfig struct {
	TickInterval time.Duration `koanf:"tick_interval"`
	CallTimeout  time.Duration `koanf:"call_timeout"`
	RateLimit    float64       `koanf:"rate_limit"` // calls per second, 0 disables
	Burst        int           `koanf:"burst"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFilesystem:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for the filesystem backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
		if c.Storage.MaxOpenConns <= 0 {
			return fmt.Errorf("storage.max_open_conns must be > 0")
		}
		if c.Storage.MaxIdleConns <= 0 {
			return fmt.Errorf("storage.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("storage.timeout must be > 0")
	}

	if c.Reminders.FireHour < 0 || c.Reminders.FireHour > 23 {
		return fmt.Errorf("invalid reminders.fire_hour %d (must be 0-23)", c.Reminders.FireHour)
	}
	if _, err := c.Reminders.Location(); err != nil {
		return fmt.Errorf("invalid reminders.timezone %q: %w", c.Reminders.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.Reminders.ReconcileCron); err != nil {
		return fmt.Errorf("invalid reminders.reconcile_cron %q: %w", c.Reminders.ReconcileCron, err)
	}

	if c.Notifier.TickInterval <= 0 {
		return fmt.Errorf("notifier.tick_interval must be > 0")
	}
	if c.Notifier.CallTimeout <= 0 {
		return fmt.Errorf("notifier.call_timeout must be > 0")
	}
	if c.Notifier.RateLimit < 0 {
		return fmt.Errorf("notifier.rate_limit must be >= 0")
	}
	if c.Notifier.RateLimit > 0 && c.Notifier.Burst <= 0 {
		return fmt.Errorf("notifier.burst must be > 0 when rate_limit is set")
	}

	return nil
}

// Load parses config from defaults, file and env, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8080,
		"server.host":                  "0.0.0.0",
		"server.mode":                  "release",
		"storage.backend":              BackendFilesystem,
		"storage.path":                 "./data",
		"storage.dsn":                  "",
		"storage.max_open_conns":       5,
		"storage.max_idle_conns":       5,
		"storage.auto_migrate":         true,
		"storage.timeout":              "5s",
		"reminders.fire_hour":          5,
		"reminders.timezone":           "",
		"reminders.reconcile_cron":     "15 0 * * *",
		"reminders.reconcile_on_start": true,
		"notifier.tick_interval":       "30s",
		"notifier.call_timeout":        "5s",
		"notifier.rate_limit":          20.0,
		"notifier.burst":               10,
		"log.level":                    "info",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
