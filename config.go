package goSession

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a [Client]. Obtain defaults with [DefaultConfig], or load a YAML
// file with [LoadConfig].
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Navigation NavigationConfig `yaml:"navigation"`
	Storage    StorageConfig    `yaml:"storage"`
	Hydration  HydrationConfig  `yaml:"hydration"`
	Events     EventsConfig     `yaml:"events"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig configures the request dispatcher.
type HTTPConfig struct {
	BaseURL   string        `yaml:"base_url"`
	BasePath  string        `yaml:"base_path"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig lists the path prefixes on which a 401 is surfaced to the caller without
// touching the session.
type NavigationConfig struct {
	AuthEntryPrefixes []string `yaml:"auth_entry_prefixes"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageBackend selects the persistent store built by [Builder.Build] when no store is
// injected.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageRedis  StorageBackend = "redis"
	StorageSQLite StorageBackend = "sqlite"
)

type StorageConfig struct {
	Backend    StorageBackend `yaml:"backend"`
	KeyPrefix  string         `yaml:"key_prefix"`
	Namespace  string         `yaml:"namespace"`
	RedisAddr  string         `yaml:"redis_addr"`
	RedisDB    int            `yaml:"redis_db"`
	SQLitePath string         `yaml:"sqlite_path"`
	// TTL bounds how long Redis keeps persisted entries. 0 keeps them until cleared.
	TTL time.Duration `yaml:"ttl"`
}

/*
====================================
HYDRATION CONFIG
====================================
*/

type HydrationConfig struct {
	BootstrapTimeout time.Duration `yaml:"bootstrap_timeout"`
}

/*
====================================
EVENTS / METRICS / LOGGING
====================================
*/

// EventsConfig configures the asynchronous event bus.
type EventsConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL:   "http://localhost:8080",
			BasePath:  "/api/v1",
			Timeout:   15 * time.Second,
			UserAgent: "goSession/1",
		},
		Navigation: NavigationConfig{
			AuthEntryPrefixes: []string{"/login", "/register"},
		},
		Storage: StorageConfig{
			Backend:    StorageMemory,
			KeyPrefix:  "forum",
			Namespace:  "default",
			RedisAddr:  "localhost:6379",
			SQLitePath: "forum-session.db",
		},
		Hydration: HydrationConfig{
			BootstrapTimeout: 2 * time.Second,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Navigation.AuthEntryPrefixes = append([]string(nil), cfg.Navigation.AuthEntryPrefixes...)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// HTTP
	if c.HTTP.BaseURL == "" {
		return errors.New("HTTP BaseURL must be set")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("HTTP BaseURL must be an absolute URL")
	}
	if c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/") {
		return errors.New("HTTP BasePath must start with /")
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must be >= 0")
	}

	// Navigation
	for _, p := range c.Navigation.AuthEntryPrefixes {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("Navigation AuthEntryPrefixes entry %q must start with /", p)
		}
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.KeyPrefix == "" {
			return errors.New("Storage KeyPrefix must be set for redis backend")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("Storage SQLitePath must be set for sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.Storage.TTL < 0 {
		return errors.New("Storage TTL must be >= 0")
	}

	// Hydration
	if c.Hydration.BootstrapTimeout <= 0 {
		return errors.New("Hydration BootstrapTimeout must be > 0")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when events are enabled")
	}

	// Logging
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("Logging Level: %v", err)
	}

	return nil
}

/*
====================================
LOADING
====================================
*/

// LoadConfig reads a YAML file on top of the defaults, then applies FORUM_* environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FORUM_BASE_URL"); v != "" {
		c.HTTP.BaseURL = v
	}
	if v := os.Getenv("FORUM_BASE_PATH"); v != "" {
		c.HTTP.BasePath = v
	}
	if v := os.Getenv("FORUM_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FORUM_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}

	if v := os.Getenv("FORUM_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = StorageBackend(strings.ToLower(v))
	}
	if v := os.Getenv("FORUM_STORAGE_NAMESPACE"); v != "" {
		c.Storage.Namespace = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("FORUM_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORUM_REDIS_DB: %w", err)
		}
		c.Storage.RedisDB = n
	}
	if v := os.Getenv("FORUM_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}

	if v := os.Getenv("FORUM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// NewLogger builds a zap logger from the logging section.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
