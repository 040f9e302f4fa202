// Package config loads perks-admin CLI settings with Viper and maps them onto
// the console configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	perksAdmin "github.com/MrEthical07/perksAdmin"
)

// Config is the complete CLI configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Query   QueryConfig   `mapstructure:"query"`
	Lists   ListsConfig   `mapstructure:"lists"`
	Events  EventsConfig  `mapstructure:"events"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// APIConfig points the CLI at a Perks API.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
}

// StorageConfig selects where the session is kept between invocations.
type StorageConfig struct {
	Backend     string        `mapstructure:"backend"`
	Path        string        `mapstructure:"path"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
}

// QueryConfig tunes the resource cache used by long-running commands.
type QueryConfig struct {
	StaleTime time.Duration `mapstructure:"stale_time"`
	GCTime    time.Duration `mapstructure:"gc_time"`
	Retries   int           `mapstructure:"retries"`
}

// ListsConfig controls paging of list commands.
type ListsConfig struct {
	PageSizes []int `mapstructure:"page_sizes"`
}

// EventsConfig controls notification delivery.
type EventsConfig struct {
	Async      bool `mapstructure:"async"`
	BufferSize int  `mapstructure:"buffer_size"`
}

// ServeConfig configures the local web console.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from the config file, PERKS_ADMIN_* environment
// variables and defaults, in that order of precedence after flags.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".perks-admin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/perks-admin")
	}

	v.SetEnvPrefix("PERKS_ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultSessionPath is where the file backend keeps the session.
func DefaultSessionPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "perks-admin", "session.json")
	}
	return ".perks-admin-session.json"
}

func setDefaults(v *viper.Viper) {
	def := perksAdmin.DefaultConfig()

	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("api.user_agent", "perks-admin-cli")
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 0)

	v.SetDefault("storage.backend", string(perksAdmin.StorageFile))
	v.SetDefault("storage.path", DefaultSessionPath())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", def.Storage.RedisPrefix)
	v.SetDefault("storage.redis_ttl", time.Duration(0))

	v.SetDefault("query.stale_time", def.Query.StaleTime)
	v.SetDefault("query.gc_time", def.Query.GCTime)
	v.SetDefault("query.retries", def.Query.Retries)

	v.SetDefault("lists.page_sizes", def.Lists.PageSizes)

	v.SetDefault("events.async", false)
	v.SetDefault("events.buffer_size", def.Events.BufferSize)

	v.SetDefault("serve.addr", "127.0.0.1:8787")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	if cfg.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}

	pc := cfg.Console()
	return pc.Validate()
}

// Console maps the CLI settings onto a console configuration.
func (c *Config) Console() perksAdmin.Config {
	pc := perksAdmin.DefaultConfig()

	pc.API.BaseURL = c.API.BaseURL
	pc.API.Timeout = c.API.Timeout
	pc.API.UserAgent = c.API.UserAgent
	pc.API.RateLimit = c.API.RateLimit
	pc.API.RateBurst = c.API.RateBurst

	pc.Storage.Backend = perksAdmin.StorageBackend(c.Storage.Backend)
	pc.Storage.Path = c.Storage.Path
	pc.Storage.RedisPrefix = c.Storage.RedisPrefix
	pc.Storage.RedisTTL = c.Storage.RedisTTL

	pc.Query.StaleTime = c.Query.StaleTime
	pc.Query.GCTime = c.Query.GCTime
	pc.Query.Retries = c.Query.Retries

	if len(c.Lists.PageSizes) > 0 {
		pc.Lists.PageSizes = append([]int(nil), c.Lists.PageSizes...)
	}

	pc.Events.Enabled = c.Events.Async
	pc.Events.BufferSize = c.Events.BufferSize

	return pc
}
