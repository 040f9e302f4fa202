package query

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultStaleTime  = 5 * time.Minute
	DefaultGCTime     = 10 * time.Minute
	DefaultRetries    = 3
	DefaultRetryBase  = time.Second
	DefaultRetryLimit = 30 * time.Second
)

var (
	// ErrClosed is returned by fetches issued after [Client.Close].
	ErrClosed = errors.New("query client closed")
	// ErrTypeMismatch means two callers used one key for different result types.
	ErrTypeMismatch = errors.New("query result type mismatch")
	// ErrInvalidConfig is returned by [New].
	ErrInvalidConfig = errors.New("invalid query config")
)

// Config sets cache-wide defaults. Individual fetches may override StaleTime.
type Config struct {
	StaleTime time.Duration
	GCTime    time.Duration

	// MaxEntries bounds the cache. Zero means unbounded.
	MaxEntries int

	// Retries is the number of retries after the first attempt. Attempt n
	// waits min(RetryBase*2^n, RetryLimit).
	Retries    int
	RetryBase  time.Duration
	RetryLimit time.Duration

	// Retryable decides whether an error is worth another attempt. The default
	// honours a Temporary() bool method and otherwise retries.
	Retryable func(error) bool
}

// DefaultConfig mirrors the dashboard's query defaults.
func DefaultConfig() Config {
	return Config{
		StaleTime:  DefaultStaleTime,
		GCTime:     DefaultGCTime,
		Retries:    DefaultRetries,
		RetryBase:  DefaultRetryBase,
		RetryLimit: DefaultRetryLimit,
	}
}

// Validate reports unusable settings.
func (c Config) Validate() error {
	if c.StaleTime < 0 || c.GCTime <= 0 {
		return fmt.Errorf("%w: stale time must be >= 0 and gc time > 0", ErrInvalidConfig)
	}
	if c.GCTime < c.StaleTime {
		return fmt.Errorf("%w: gc time shorter than stale time", ErrInvalidConfig)
	}
	if c.MaxEntries < 0 || c.Retries < 0 {
		return fmt.Errorf("%w: negative max entries or retries", ErrInvalidConfig)
	}
	if c.Retries > 0 && (c.RetryBase <= 0 || c.RetryLimit < c.RetryBase) {
		return fmt.Errorf("%w: retry base must be > 0 and <= retry limit", ErrInvalidConfig)
	}
	return nil
}

// Hooks receive cache events. Any field may be nil. Hooks run on the calling
// or revalidating goroutine and must not block. Evicted may run with the cache
// lock held and must not call back into the [Client].
type Hooks struct {
	Hit        func(Key)
	Miss       func(Key)
	Stale      func(Key)
	Discarded  func(Key)
	Failed     func(Key, error)
	Evicted    func(Key)
	Revalidate func(Key)
}
