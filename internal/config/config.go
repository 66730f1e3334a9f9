package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds CLI and server configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Locale  string        `mapstructure:"locale"`
	Session SessionConfig `mapstructure:"session"`
	Input   InputConfig   `mapstructure:"input"`

	// Validators is the allow-list file of external validator commands.
	Validators string `mapstructure:"validators"`
}

// StoreConfig selects where navigator snapshots are persisted.
type StoreConfig struct {
	// Backend is one of memory, file, redis or sqlite.
	Backend string       `mapstructure:"backend"`
	Dir     string       `mapstructure:"dir"`
	Redis   RedisConfig  `mapstructure:"redis"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`

	// EncryptionKey, when set, encrypts snapshots at rest (32 bytes, base64 or raw).
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys decrypt snapshots written before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`

	// MaskMetadata lists regular expressions; matching metadata keys are masked at rest.
	MaskMetadata []string `mapstructure:"mask_metadata"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr   string        `mapstructure:"addr"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// SQLiteConfig holds sqlite settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Journal bool   `mapstructure:"journal"`
}

// HTTPConfig holds server settings.
type HTTPConfig struct {
	Port    int  `mapstructure:"port"`
	Metrics bool `mapstructure:"metrics"`
}

// SessionConfig holds session manager settings.
type SessionConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// InputConfig bounds what users may type into a session.
type InputConfig struct {
	// MaxSize is the byte limit of one command line or field value.
	MaxSize int `mapstructure:"max_size"`
}

// EnvPrefix is the prefix of environment overrides, e.g. PROGRESSFORMS_STORE_BACKEND.
const EnvPrefix = "PROGRESSFORMS"

// Load reads configuration from file and env.
// When path is empty, progressforms.{yaml,toml,json} is searched in the working
// directory and in $HOME/.config/progressforms. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", ".progressforms/sessions")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.prefix", "progressforms:session:")
	v.SetDefault("store.redis.ttl", 24*time.Hour)
	v.SetDefault("store.sqlite.path", ".progressforms/sessions.db")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.journal", false)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.metrics", true)
	v.SetDefault("locale", "en")
	v.SetDefault("session.lock_ttl", 30*time.Second)
	v.SetDefault("validators", "validators.yaml")
	v.SetDefault("input.max_size", 4096)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("progressforms")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "progressforms"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file, redis or sqlite)", c.Store.Backend)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Input.MaxSize < 0 {
		return fmt.Errorf("invalid input max_size %d", c.Input.MaxSize)
	}
	return nil
}
