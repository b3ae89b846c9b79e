// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backend names a class store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config holds every setting the replay tool and sessions read.
type Config struct {
	LogLevel  string `env:"TOPPER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TOPPER_LOG_FORMAT" envDefault:"text"` // text or json

	// RulesPath overrides the embedded rule tables when set.
	RulesPath string `env:"TOPPER_RULES"`
	PruneCap  int    `env:"TOPPER_PRUNE_CAP"`

	Store     Backend `env:"TOPPER_CLASS_STORE" envDefault:"memory"`
	StoreDSN  string  `env:"TOPPER_CLASS_STORE_DSN"`
	RedisAddr string  `env:"TOPPER_REDIS_ADDR" envDefault:"localhost:6379"`
	CacheSize int     `env:"TOPPER_CLASS_CACHE_SIZE" envDefault:"1024"`

	// JournalDir enables the slice journal when set.
	JournalDir string `env:"TOPPER_JOURNAL_DIR"`
}

// Load reads an optional .env file and then the environment. Variables
// already set win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot be acted on.
func (c Config) Validate() error {
	switch c.Store {
	case BackendMemory, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("class store %s needs TOPPER_CLASS_STORE_DSN", c.Store)
		}
	default:
		return fmt.Errorf("unknown class store %q", c.Store)
	}
	if c.PruneCap < 0 {
		return fmt.Errorf("negative prune cap %d", c.PruneCap)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("negative cache size %d", c.CacheSize)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger builds a logrus logger writing to stderr at the configured level.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
