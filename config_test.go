package perksAdmin

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "blank base url",
			mutate:    func(c *Config) { c.API.BaseURL = "  " },
			wantValid: false,
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.API.Timeout = 0 },
			wantValid: false,
		},
		{
			name:      "negative rate limit",
			mutate:    func(c *Config) { c.API.RateLimit = -1 },
			wantValid: false,
		},
		{
			name:      "rate limit valid",
			mutate:    func(c *Config) { c.API.RateLimit, c.API.RateBurst = 5, 2 },
			wantValid: true,
		},
		{
			name:      "file backend without path",
			mutate:    func(c *Config) { c.Storage.Backend = StorageFile },
			wantValid: false,
		},
		{
			name: "file backend with path",
			mutate: func(c *Config) {
				c.Storage.Backend = StorageFile
				c.Storage.Path = "/tmp/session.json"
			},
			wantValid: true,
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.Storage.Backend = "sqlite" },
			wantValid: false,
		},
		{
			name:      "gc shorter than stale",
			mutate:    func(c *Config) { c.Query.GCTime = time.Minute },
			wantValid: false,
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Query.Retries = -1 },
			wantValid: false,
		},
		{
			name:      "no page sizes",
			mutate:    func(c *Config) { c.Lists.PageSizes = nil },
			wantValid: false,
		},
		{
			name:      "zero page size",
			mutate:    func(c *Config) { c.Lists.PageSizes = []int{10, 0} },
			wantValid: false,
		},
		{
			name:      "events enabled without buffer",
			mutate:    func(c *Config) { c.Events.BufferSize = 0 },
			wantValid: false,
		},
		{
			name: "events disabled without buffer",
			mutate: func(c *Config) {
				c.Events.Enabled = false
				c.Events.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "histogram without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}

func TestCloneConfigCopiesPageSizes(t *testing.T) {
	cfg := DefaultConfig()
	clone := cloneConfig(cfg)
	clone.Lists.PageSizes[0] = 99
	if cfg.Lists.PageSizes[0] == 99 {
		t.Fatal("clone shares PageSizes with original")
	}
}
