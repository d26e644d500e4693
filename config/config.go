// Package config loads gotmemo settings from a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. GOTMEMO_STORE_BACKEND.
const EnvPrefix = "GOTMEMO"

type Config struct {
	TargetLang   string        `mapstructure:"target_lang"`
	SourceLang   string        `mapstructure:"source_lang"`
	APIKey       string        `mapstructure:"api_key"`
	Provider     string        `mapstructure:"provider"` // "google" | "openai" | "mock"
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	Google GoogleConfig `mapstructure:"google"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type GoogleConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type StoreConfig struct {
	Backend  string         `mapstructure:"backend"` // "memory" | "sqlite" | "redis" | "postgres"
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: "debug" | "release" | "test"
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
}

var (
	providers = []string{"google", "openai", "mock"}
	backends  = []string{"memory", "sqlite", "redis", "postgres"}
	formats   = []string{"json", "console"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("target_lang", "")
	v.SetDefault("source_lang", gotmemo.DefaultSourceLang)
	v.SetDefault("api_key", "")
	v.SetDefault("provider", "google")
	v.SetDefault("fetch_timeout", 30*time.Second)

	v.SetDefault("google.base_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite.path", "gotmemo.db")
	v.SetDefault("store.redis.url", "redis://localhost:6379/0")
	v.SetDefault("store.redis.key_prefix", "gotmemo:")
	v.SetDefault("store.postgres.dsn", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads path (if non-empty), overlays GOTMEMO_* environment variables
// and returns the validated Config. Variables from a .env file in the working
// directory are loaded first and never override the real environment.
//
// Without a path, gotmemo.yaml is looked up in the working directory and in
// $HOME/.config/gotmemo; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Environment variable override: GOTMEMO_STORE_SQLITE_PATH -> store.sqlite.path
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gotmemo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/gotmemo")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize canonicalizes language tags and enum values.
func (c *Config) Normalize() {
	c.TargetLang = gotmemo.CanonicalLang(c.TargetLang)
	c.SourceLang = gotmemo.CanonicalLang(c.SourceLang)
	if c.SourceLang == "" {
		c.SourceLang = gotmemo.DefaultSourceLang
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate checks enum values and the settings each backend requires.
func (c *Config) Validate() error {
	if !contains(providers, c.Provider) {
		return fmt.Errorf("invalid provider %q (want one of %s)", c.Provider, strings.Join(providers, ", "))
	}
	if !contains(backends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend %q (want one of %s)", c.Store.Backend, strings.Join(backends, ", "))
	}
	if !contains(formats, c.Log.Format) {
		return fmt.Errorf("invalid log format %q (want one of %s)", c.Log.Format, strings.Join(formats, ", "))
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative, got %s", c.FetchTimeout)
	}

	switch c.Store.Backend {
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required for the sqlite backend")
		}
	case "redis":
		if c.Store.Redis.URL == "" {
			return errors.New("store.redis.url is required for the redis backend")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required for the postgres backend")
		}
	}
	return nil
}

// Credential returns the key handed to the remote translator. The generic
// api_key wins; otherwise the provider's own key is used. The mock provider
// needs no real key.
func (c *Config) Credential() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch c.Provider {
	case "openai":
		return c.OpenAI.APIKey
	case "mock":
		return "mock"
	}
	return ""
}

// RequireTargetLang returns ErrMissingTargetLang when no target language is set.
func (c *Config) RequireTargetLang() error {
	if c.TargetLang == "" {
		return gotmemo.ErrMissingTargetLang
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
