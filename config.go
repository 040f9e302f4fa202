package perksAdmin

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/listctl"
	"github.com/MrEthical07/perksAdmin/query"
	"github.com/MrEthical07/perksAdmin/resources"
)

// Config is the complete console configuration. Build a value with
// [DefaultConfig], adjust it, and hand it to [Builder.WithConfig]; the console
// keeps its own copy.
type Config struct {
	API       APIConfig
	Storage   StorageConfig
	Query     QueryConfig
	Dashboard DashboardConfig
	Lists     ListConfig
	Events    EventsConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes the remote Perks API.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 disables
	RateBurst int
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageBackend selects where the session survives restarts.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageFile   StorageBackend = "file"
	StorageRedis  StorageBackend = "redis"
)

// StorageConfig selects the durable session backend. Path is used by the file
// backend; RedisPrefix and RedisTTL by the redis backend, whose client is
// supplied through [Builder.WithRedis].
type StorageConfig struct {
	Backend     StorageBackend
	Path        string
	RedisPrefix string
	RedisTTL    time.Duration
}

/*
====================================
QUERY CONFIG
====================================
*/

// QueryConfig tunes the resource cache.
type QueryConfig struct {
	StaleTime  time.Duration
	GCTime     time.Duration
	MaxEntries int
	Retries    int
	RetryBase  time.Duration
	RetryLimit time.Duration
}

// DashboardConfig tunes the analytics resources.
type DashboardConfig struct {
	StaleTime time.Duration
}

// ListConfig controls list views: allowed page sizes (first is the default)
// and the search quiet window.
type ListConfig struct {
	PageSizes      []int
	SearchDebounce time.Duration
}

/*
====================================
EVENTS / METRICS CONFIG
====================================
*/

// EventsConfig controls asynchronous delivery of operator notifications. When
// disabled, notifications reach the sink synchronously.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: api.DefaultBaseURL,
			Timeout: api.DefaultTimeout,
		},
		Storage: StorageConfig{
			Backend:     StorageMemory,
			RedisPrefix: "perks-admin",
		},
		Query: QueryConfig{
			StaleTime:  query.DefaultStaleTime,
			GCTime:     query.DefaultGCTime,
			MaxEntries: 512,
			Retries:    query.DefaultRetries,
			RetryBase:  query.DefaultRetryBase,
			RetryLimit: query.DefaultRetryLimit,
		},
		Dashboard: DashboardConfig{
			StaleTime: resources.DashboardStaleTime,
		},
		Lists: ListConfig{
			PageSizes:      slices.Clone(listctl.DefaultPageSizes),
			SearchDebounce: listctl.DefaultDebounce,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Lists.PageSizes = slices.Clone(cfg.Lists.PageSizes)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.RateLimit < 0 {
		return errors.New("API RateLimit must be >= 0")
	}
	if c.API.RateBurst < 0 {
		return errors.New("API RateBurst must be >= 0")
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis:
	case StorageFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("Storage Path is required for the file backend")
		}
	default:
		return errors.New("unsupported Storage Backend")
	}
	if c.Storage.RedisTTL < 0 {
		return errors.New("Storage RedisTTL must be >= 0")
	}

	// Query
	if err := c.queryConfig().Validate(); err != nil {
		return err
	}

	// Dashboard
	if c.Dashboard.StaleTime < 0 {
		return errors.New("Dashboard StaleTime must be >= 0")
	}

	// Lists
	if len(c.Lists.PageSizes) == 0 {
		return errors.New("Lists PageSizes must not be empty")
	}
	for _, n := range c.Lists.PageSizes {
		if n <= 0 {
			return errors.New("Lists PageSizes entries must be > 0")
		}
	}
	if c.Lists.SearchDebounce < 0 {
		return errors.New("Lists SearchDebounce must be >= 0")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func (c *Config) apiConfig() api.Config {
	return api.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
		RateLimit: c.API.RateLimit,
		RateBurst: c.API.RateBurst,
	}
}

func (c *Config) queryConfig() query.Config {
	qc := query.DefaultConfig()
	qc.StaleTime = c.Query.StaleTime
	qc.GCTime = c.Query.GCTime
	qc.MaxEntries = c.Query.MaxEntries
	qc.Retries = c.Query.Retries
	qc.RetryBase = c.Query.RetryBase
	qc.RetryLimit = c.Query.RetryLimit
	return qc
}
