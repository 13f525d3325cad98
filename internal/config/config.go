package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const DEFAULT_TIMEZONE = "Europe/Berlin"
const QR_IMAGE_SIZE = 512

// FinaleConfig holds the fallback content of the last door.
type FinaleConfig struct {
	DownloadURL   string `mapstructure:"download_url"`
	DownloadLabel string `mapstructure:"download_label"`
}

type OEmbedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Request timeout in seconds
	Timeout uint `mapstructure:"timeout"`
}

type Config struct {
	// Secret key for signing tokens. Must be set in production.
	Secret   string `mapstructure:"secret"`
	LogLevel string `mapstructure:"log_level"`

	// IANA zone that defines the unlock boundary for every visitor.
	Timezone string `mapstructure:"timezone"`

	// Instance cache backend, "memory" or "sql"
	CacheStore string `mapstructure:"cache_store"`
	// TTL for cached calendar instances in seconds
	CacheTTL uint `mapstructure:"cache_ttl"`

	NonceStore string `mapstructure:"nonce_store"`
	// Lifetime of anti-forgery tokens in seconds
	NonceTTL uint `mapstructure:"nonce_ttl"`

	// Lifetime of the test mode marker in seconds
	TestModeTTL   uint   `mapstructure:"test_mode_ttl"`
	TestModeParam string `mapstructure:"test_mode_param"`

	// YAML file holding authored pages and their calendar blocks
	PagesFile string `mapstructure:"pages_file"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	BaseURL     string `mapstructure:"base_url"` // Base URL for the application. May be relative, e.g. /advent/, or absolute, e.g. https://example.com/advent/
	DefaultLang string `mapstructure:"default_lang"`

	Finale FinaleConfig `mapstructure:"finale"`
	OEmbed OEmbedConfig `mapstructure:"oembed"`

	Storage Storage `mapstructure:"storage"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// Location resolves the configured reference timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("Unknown timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Config) NonceTTLDuration() time.Duration {
	return time.Duration(c.NonceTTL) * time.Second
}

func (c *Config) OEmbedTimeoutDuration() time.Duration {
	return time.Duration(c.OEmbed.Timeout) * time.Second
}

func (c *Config) TestModeTTLDuration() time.Duration {
	return time.Duration(c.TestModeTTL) * time.Second
}

// LoadConfig reads configuration from an optional config file and environment
// variables and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")

	for _, path := range configFile {
		v.SetConfigFile(path)
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	v.SetDefault("pages_file", getConfigPath()+"/pages.yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if len(configFile) > 0 || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment")
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.CacheTTL == 0 {
		slog.Warn("CACHE_TTL must be positive, using default", slog.Int("default", defaults["cache_ttl"].(int)))
		cfg.CacheTTL = uint(defaults["cache_ttl"].(int))
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Path != "" {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return nil, fmt.Errorf("SECRET configuration variable is required in production")
		}
		slog.Warn("Secret is not set. Do not use in production.")
	}

	return &cfg, nil
}
