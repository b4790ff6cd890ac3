// Package config loads directory settings from defaults, an optional YAML
// file, .env files and the process environment, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	mongostore "github.com/xraph/directory/store/mongo"
)

var (
	// ErrParsingConfig is returned when a source cannot be decoded.
	ErrParsingConfig = errors.New("config: failed to parse configuration")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config holds the directory runtime configuration.
type Config struct {
	// Mongo holds the connection settings (MONGODB_* variables).
	Mongo mongostore.Config `yaml:"mongo"`

	// Database is the MongoDB database name (default: "marketplace").
	Database string `yaml:"database" env:"DIRECTORY_DATABASE"`

	// Collection overrides the subscription collection name.
	Collection string `yaml:"collection" env:"DIRECTORY_COLLECTION"`

	// DisableMigrate prevents index creation on start.
	DisableMigrate bool `yaml:"disable_migrate" env:"DIRECTORY_DISABLE_MIGRATE"`

	// LogLevel is one of debug, info, warn, error (default: "info").
	LogLevel string `yaml:"log_level" env:"DIRECTORY_LOG_LEVEL"`

	// LogFormat is "json" or "text" (default: "json").
	LogFormat string `yaml:"log_format" env:"DIRECTORY_LOG_FORMAT"`

	// MetricsNamespace prefixes Prometheus metric names.
	MetricsNamespace string `yaml:"metrics_namespace" env:"DIRECTORY_METRICS_NAMESPACE"`

	// AuditEnabled registers the audit hook with a log recorder.
	AuditEnabled bool `yaml:"audit_enabled" env:"DIRECTORY_AUDIT_ENABLED"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mongo:     mongostore.DefaultConfig(),
		Database:  "marketplace",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load builds a Config from DefaultConfig, then the YAML file at path (if
// path is non-empty), then envFiles, then the environment. With no envFiles
// a ".env" in the working directory is loaded when present. Variables already
// set in the environment are never overwritten by .env files.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, errors.Join(ErrParsingConfig, err)
		}
	} else {
		// The default .env file is optional.
		_ = godotenv.Load() //nolint:errcheck // missing file is fine
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrParsingConfig, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Mongo.ConnectionURL) == "":
		return fmt.Errorf("%w: mongo url is required", ErrInvalidConfig)
	case strings.TrimSpace(c.Database) == "":
		return fmt.Errorf("%w: database is required", ErrInvalidConfig)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log_format must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return lvl, nil
}

// Logger builds a slog.Logger writing to w with the configured level and format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
