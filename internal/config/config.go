package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// RedisConfig holds the optional Redis report store settings.
type RedisConfig struct {
	Addr     string `env:"ADDR" mapstructure:"addr"`
	Password string `env:"PASSWORD" mapstructure:"password"`
	DB       int    `env:"DB" mapstructure:"db"`
}

// Config is the resolved engine configuration: credentials, per-provider
// model policy and cache settings.
type Config struct {
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	XAIAPIKey         string `env:"XAI_API_KEY"`
	OpenAIModelPolicy string `env:"OPENAI_MODEL_POLICY" envDefault:"auto"`
	OpenAIModelPin    string `env:"OPENAI_MODEL_PIN"`
	XAIModelPolicy    string `env:"XAI_MODEL_POLICY" envDefault:"latest"`
	XAIModelPin       string `env:"XAI_MODEL_PIN"`

	Debug         string        `env:"LAST30DAYS_DEBUG"`
	CacheDir      string        `env:"LAST30DAYS_CACHE_DIR"`
	CacheTTL      time.Duration `env:"LAST30DAYS_CACHE_TTL" envDefault:"24h"`
	ModelCacheTTL time.Duration `env:"LAST30DAYS_MODEL_CACHE_TTL" envDefault:"168h"`
	RedditRPS     float64       `env:"REDDIT_RPS" envDefault:"1"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// DefaultPath is $HOME/.config/last30days/.env.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "last30days", ".env")
	}
	return filepath.Join(home, ".config", "last30days", ".env")
}

// LoadEnvFile reads KEY=VALUE lines. A missing file yields an empty map.
// Keys with empty values are dropped.
func LoadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		k = strings.TrimSpace(k)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Load merges the config file at path (DefaultPath when empty) with the
// process environment. Environment values win over file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	merged, err := LoadEnvFile(path)
	if err != nil {
		return nil, err
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		merged[k] = v
	}
	return FromMap(merged)
}

// FromMap decodes a config from an explicit key/value set.
func FromMap(vals map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vals}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.FillDefaults()
	return cfg, nil
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.OpenAIModelPolicy == "" {
		c.OpenAIModelPolicy = "auto"
	}
	if c.XAIModelPolicy == "" {
		c.XAIModelPolicy = "latest"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.ModelCacheTTL <= 0 {
		c.ModelCacheTTL = 7 * 24 * time.Hour
	}
	if c.RedditRPS <= 0 {
		c.RedditRPS = 1
	}
}

// DebugEnabled reports whether verbose request logging was requested.
func (c *Config) DebugEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.Debug)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
