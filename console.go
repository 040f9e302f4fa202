package perksAdmin

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/internal/events"
	"github.com/MrEthical07/perksAdmin/listctl"
	"github.com/MrEthical07/perksAdmin/middleware"
	"github.com/MrEthical07/perksAdmin/mutation"
	"github.com/MrEthical07/perksAdmin/query"
	"github.com/MrEthical07/perksAdmin/resources"
	"github.com/MrEthical07/perksAdmin/session"
	"github.com/MrEthical07/perksAdmin/storage"
)

// Console is the admin console runtime: session, API client, resource cache
// and mutations wired together. Build one with [New]; call [Console.Init]
// before use and [Console.Dispose] when done. Methods are safe for concurrent
// use.
type Console struct {
	config  Config
	storage storage.Storage
	client  *api.Client
	session *session.Store

	cache     *query.Client
	resources *resources.Resources
	blocks    *mutation.BlockToggler

	dispatcher *events.Dispatcher
	sink       NotificationSink
	navigator  Navigator
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time

	initOnce    sync.Once
	disposeOnce sync.Once
	initialized atomic.Bool
	disposed    atomic.Bool
}

// Init rehydrates the persisted session and starts notification delivery. It
// never calls the network. Calling Init again returns the current session.
func (c *Console) Init(ctx context.Context) (session.Session, error) {
	if c == nil {
		return session.Session{}, ErrNotInitialized
	}
	if c.disposed.Load() {
		return session.Session{}, ErrDisposed
	}

	c.initOnce.Do(func() {
		c.dispatcher = events.NewDispatcher(events.Config{
			Enabled:    c.config.Events.Enabled,
			BufferSize: c.config.Events.BufferSize,
			DropIfFull: c.config.Events.DropIfFull,
		}, c.sink)

		snap := c.session.Rehydrate(ctx)
		c.initialized.Store(true)
		c.logger.Debug("console initialized", "authenticated", snap.IsAuthenticated)
	})

	return c.session.Snapshot(), nil
}

// Dispose stops background revalidation and flushes queued notifications.
// The persisted session is left untouched.
func (c *Console) Dispose() {
	if c == nil {
		return
	}
	c.disposeOnce.Do(func() {
		c.disposed.Store(true)
		c.cache.Close()
		c.dispatcher.Close()
	})
}

func (c *Console) ready() error {
	switch {
	case c == nil:
		return ErrNotInitialized
	case c.disposed.Load():
		return ErrDisposed
	case !c.initialized.Load():
		return ErrNotInitialized
	}
	return nil
}

func (c *Console) Config() Config {
	return cloneConfig(c.config)
}

func (c *Console) Session() *session.Store {
	return c.session
}

func (c *Console) API() *api.Client {
	return c.client
}

func (c *Console) Resources() *resources.Resources {
	return c.resources
}

func (c *Console) Blocks() *mutation.BlockToggler {
	return c.blocks
}

func (c *Console) Storage() storage.Storage {
	return c.storage
}

func (c *Console) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot copies the console counters.
func (c *Console) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// NotificationsDropped reports notifications lost to a full buffer.
func (c *Console) NotificationsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.dispatcher.Dropped()
}

// NewList creates a list controller with the configured page sizes and
// search debounce. Options passed here take precedence.
func (c *Console) NewList(initial url.Values, opts ...listctl.ControllerOption) *listctl.Controller {
	base := []listctl.ControllerOption{
		listctl.WithPageSizes(c.config.Lists.PageSizes...),
		listctl.WithDebounce(c.config.Lists.SearchDebounce, nil),
	}
	return listctl.NewController(initial, append(base, opts...)...)
}

// ToggleBlock blocks or unblocks userID optimistically. name is used in the
// success notification.
func (c *Console) ToggleBlock(ctx context.Context, userID, name string, block bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.blocks.Toggle(ctx, userID, name, block)
}

// handleUnauthorized runs after the API client cleared the persisted session.
func (c *Console) handleUnauthorized(ctx context.Context) {
	c.metrics.Inc(MetricUnauthorized)
	wasAuthenticated := c.session.IsAuthenticated()
	if err := c.session.Expire(ctx); err != nil {
		c.logger.Warn("session expire failed", "error", err)
	}
	c.cache.Remove()
	if wasAuthenticated {
		c.metrics.Inc(MetricSessionExpired)
	}
	c.navigate(ctx, middleware.LoginPath)
}

func (c *Console) navigate(ctx context.Context, path string) {
	if c.navigator != nil {
		c.navigator(ctx, path)
	}
}

func (c *Console) observeRequest(ev api.RequestEvent) {
	c.metrics.Inc(MetricRequest)
	c.metrics.Observe(MetricRequestLatency, ev.Duration)
	if ev.Err == nil {
		return
	}
	var apiErr *api.Error
	if errors.As(ev.Err, &apiErr) && apiErr.Kind == api.KindNetwork {
		c.metrics.Inc(MetricRequestNetworkError)
		return
	}
	c.metrics.Inc(MetricRequestFailure)
}

func (c *Console) observeToggle(o mutation.Outcome) {
	switch {
	case o.Rejected:
		c.metrics.Inc(MetricBlockToggleRejected)
	case o.Err != nil:
		c.metrics.Inc(MetricBlockToggleFailure)
	default:
		c.metrics.Inc(MetricBlockToggleSuccess)
	}
}

func (c *Console) cacheHooks() query.Hooks {
	count := func(id MetricID) func(query.Key) {
		return func(query.Key) { c.metrics.Inc(id) }
	}
	return query.Hooks{
		Hit:        count(MetricCacheHit),
		Miss:       count(MetricCacheMiss),
		Stale:      count(MetricCacheStale),
		Discarded:  count(MetricCacheDiscarded),
		Evicted:    count(MetricCacheEvicted),
		Revalidate: count(MetricCacheRevalidate),
		Failed: func(k query.Key, err error) {
			c.metrics.Inc(MetricCacheFetchFailure)
			c.logger.Debug("resource fetch failed", "key", k.String(), "error", err)
		},
	}
}
