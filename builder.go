package perksAdmin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/mutation"
	"github.com/MrEthical07/perksAdmin/query"
	"github.com/MrEthical07/perksAdmin/resources"
	"github.com/MrEthical07/perksAdmin/session"
	"github.com/MrEthical07/perksAdmin/storage"
)

// Navigator moves the operator to path. The console calls it after sign-out
// and when the server rejects the session.
type Navigator func(ctx context.Context, path string)

// Builder assembles a [Console]. A Builder is single-use.
type Builder struct {
	config     Config
	redis      redis.UniversalClient
	storage    storage.Storage
	httpClient *http.Client
	navigator  Navigator
	sink       NotificationSink
	logger     *slog.Logger
	now        func() time.Time
	built      bool
}

// New starts a builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used by the redis storage backend.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStorage bypasses Storage.Backend and persists to st.
func (b *Builder) WithStorage(st storage.Storage) *Builder {
	b.storage = st
	return b
}

// WithHTTPClient sets the transport used for API calls.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithNotificationSink receives operator notifications (toasts).
func (b *Builder) WithNotificationSink(sink NotificationSink) *Builder {
	b.sink = sink
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides time.Now for the session, the cache and reset-token
// expiry checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the console. No I/O happens
// until [Console.Init].
func (b *Builder) Build() (*Console, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- STORAGE --------
	st := b.storage
	if st == nil {
		switch cfg.Storage.Backend {
		case StorageFile:
			st = storage.NewFile(cfg.Storage.Path)
		case StorageRedis:
			if b.redis == nil {
				return nil, ErrRedisRequired
			}
			st = storage.NewRedis(b.redis, cfg.Storage.RedisPrefix, cfg.Storage.RedisTTL)
		default:
			st = storage.NewMemory()
		}
	}

	c := &Console{
		config:    cloneConfig(cfg),
		storage:   st,
		navigator: b.navigator,
		sink:      b.sink,
		logger:    logger,
		now:       now,
		metrics:   NewMetrics(cfg.Metrics),
	}

	// -------- SESSION --------
	c.session = session.NewStore(st,
		session.WithLogger(logger.With("component", "session")),
		session.WithClock(now),
	)

	// -------- API CLIENT --------
	apiOpts := []api.Option{
		api.WithLogger(logger.With("component", "api")),
		api.WithUnauthorizedHandler(c.handleUnauthorized),
		api.WithObserver(c.observeRequest),
	}
	if b.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(b.httpClient))
	}
	client, err := api.New(cfg.apiConfig(), st, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.client = client

	// -------- QUERY CACHE --------
	cache, err := query.New(cfg.queryConfig(),
		query.WithLogger(logger.With("component", "query")),
		query.WithHooks(c.cacheHooks()),
		query.WithClock(now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.cache = cache
	c.resources = resources.New(client, cache, resources.WithDashboardStaleTime(cfg.Dashboard.StaleTime))

	// -------- MUTATIONS --------
	c.blocks = mutation.NewBlockToggler(client, c.resources,
		mutation.WithNotifier(consoleNotifier{c: c, source: "users"}),
		mutation.WithLogger(logger.With("component", "mutation")),
		mutation.WithObserver(c.observeToggle),
	)

	b.built = true

	return c, nil
}
