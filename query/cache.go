package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	// id distinguishes entries that reuse a key after Remove or eviction.
	id uint64

	mu          sync.Mutex
	data        any
	hasData     bool
	err         error
	fetchedAt   time.Time
	staleTime   time.Duration
	invalidated bool
	fetch       fetchFunc

	issued  uint64
	applied uint64
}

func (e *entry) snapshot() (data any, hasData bool, err error, fetchedAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data, e.hasData, e.err, e.fetchedAt
}

func (e *entry) fresh(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasData && !e.invalidated && now.Sub(e.fetchedAt) < e.staleTime
}

func (e *entry) nextGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.issued++
	return e.issued
}

// apply stores a response unless a newer one was applied first.
func (e *entry) apply(gen uint64, val any, err error, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen < e.applied {
		return false
	}
	e.applied = gen
	if errors.Is(err, context.Canceled) {
		return true
	}
	if err != nil {
		e.err = err
		return true
	}
	e.data, e.hasData = val, true
	e.err = nil
	e.fetchedAt = now
	e.invalidated = false
	return true
}

// Option configures a [Client].
type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithClock overrides time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client is the shared cache. It is safe for concurrent use.
type Client struct {
	cfg    Config
	logger *slog.Logger
	hooks  Hooks
	now    func() time.Time

	mu      sync.Mutex
	entries *expirable.LRU[Key, *entry]
	group   singleflight.Group
	seq     atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New builds a cache from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = expirable.NewLRU[Key, *entry](cfg.MaxEntries, func(k Key, _ *entry) {
		if c.hooks.Evicted != nil {
			c.hooks.Evicted(k)
		}
	}, cfg.GCTime)
	return c, nil
}

// Config returns the active configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// lookup returns the entry for key, creating it when absent. Every access
// re-adds the entry so the GC window counts from the last read.
func (c *Client) lookup(key Key, staleTime time.Duration, fetch fetchFunc) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key)
	if !ok {
		e = &entry{id: c.seq.Add(1)}
	}
	e.mu.Lock()
	e.staleTime = staleTime
	if fetch != nil {
		e.fetch = fetch
	}
	e.mu.Unlock()
	c.entries.Add(key, e)
	return e, ok
}

func (c *Client) peek(key Key) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Peek(key)
}

// FetchOption adjusts a single [Fetch].
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	staleTime time.Duration
}

// StaleTime overrides the cache-wide stale time for one key.
func StaleTime(d time.Duration) FetchOption {
	return func(o *fetchOptions) {
		if d >= 0 {
			o.staleTime = d
		}
	}
}

// Fetch returns the cached value for key, fetching with fn when there is none.
// A stale value is returned immediately with IsStale set and refreshed in the
// background. The returned error is the fetch error when no data could be
// served; Result.Err carries it either way.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error), opts ...FetchOption) (Result[T], error) {
	if c.isClosed() {
		return Result[T]{Err: ErrClosed}, ErrClosed
	}
	o := fetchOptions{staleTime: c.cfg.StaleTime}
	for _, opt := range opts {
		opt(&o)
	}

	e, existed := c.lookup(key, o.staleTime, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	switch {
	case existed && e.fresh(c.now()):
		c.hook(c.hooks.Hit, key)
	case existed && hasData(e):
		c.hook(c.hooks.Stale, key)
		c.revalidate(key, e)
		res, err := result[T](e)
		res.IsStale = true
		return res, err
	default:
		c.hook(c.hooks.Miss, key)
		if err := c.await(ctx, key, e); err != nil && !hasData(e) {
			res, _ := result[T](e)
			if res.Err == nil {
				res.Err = err
			}
			return res, err
		}
	}

	res, err := result[T](e)
	if err == nil && !res.HasData && res.Err != nil {
		return res, res.Err
	}
	return res, err
}

func hasData(e *entry) bool {
	_, ok, _, _ := e.snapshot()
	return ok
}

func result[T any](e *entry) (Result[T], error) {
	data, ok, lastErr, at := e.snapshot()
	res := Result[T]{HasData: ok, Err: lastErr, FetchedAt: at}
	if !ok {
		return res, nil
	}
	v, isT := data.(T)
	if !isT {
		err := fmt.Errorf("%w: have %T", ErrTypeMismatch, data)
		return Result[T]{Err: err}, err
	}
	res.Data = v
	return res, nil
}

// Peek returns the cached value for key without fetching or touching its GC
// window.
func Peek[T any](c *Client, key Key) (Result[T], bool) {
	e, ok := c.peek(key)
	if !ok {
		return Result[T]{}, false
	}
	res, err := result[T](e)
	if err != nil {
		return res, false
	}
	res.IsStale = !e.fresh(c.now())
	return res, true
}

// flight names the singleflight group for one entry. Entries recreated under
// the same key never join a flight that fills an orphaned entry.
func flight(key Key, e *entry) string {
	return key.String() + "#" + strconv.FormatUint(e.id, 10)
}

// detach derives the context a shared fetch runs on. It keeps ctx's values,
// ignores its cancellation and ends when the client closes.
func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.ctx, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}

// await joins or starts the fetch for e and waits for it until ctx is done. A
// caller that gives up leaves the fetch running for everyone else.
func (c *Client) await(ctx context.Context, key Key, e *entry) error {
	ch := c.group.DoChan(flight(key, e), func() (any, error) {
		fctx, done := c.detach(ctx)
		defer done()
		return nil, c.run(fctx, key, e)
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run performs one generation of fetch for e and applies it.
func (c *Client) run(ctx context.Context, key Key, e *entry) error {
	e.mu.Lock()
	fetch := e.fetch
	e.mu.Unlock()
	if fetch == nil {
		return nil
	}

	gen := e.nextGeneration()
	val, err := c.retry(ctx, fetch)
	if !e.apply(gen, val, err, c.now()) {
		c.hook(c.hooks.Discarded, key)
		c.logger.Debug("query: discarded outdated response", "key", key.String(), "generation", gen)
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if c.hooks.Failed != nil {
			c.hooks.Failed(key, err)
		}
		c.logger.Warn("query: fetch failed", "key", key.String(), "error", err)
	}
	return err
}

func (c *Client) retry(ctx context.Context, fetch fetchFunc) (any, error) {
	if c.cfg.Retries == 0 {
		return fetch(ctx)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryBase
	bo.MaxInterval = c.cfg.RetryLimit
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	retryable := c.cfg.Retryable
	if retryable == nil {
		retryable = defaultRetryable
	}

	return backoff.Retry(ctx, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(c.cfg.Retries+1)))
}

func defaultRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}

// revalidate refreshes e in the background, at most once at a time per key.
func (c *Client) revalidate(key Key, e *entry) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.hook(c.hooks.Revalidate, key)
	go func() {
		defer c.wg.Done()
		_, _, _ = c.group.Do(flight(key, e), func() (any, error) {
			return nil, c.run(c.ctx, key, e)
		})
	}()
}

func (c *Client) matching(resources []string) []Key {
	c.mu.Lock()
	keys := c.entries.Keys()
	c.mu.Unlock()
	if len(resources) == 0 {
		return keys
	}
	want := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		want[r] = struct{}{}
	}
	out := keys[:0]
	for _, k := range keys {
		if _, ok := want[k.Resource]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Invalidate marks every entry of the named resources stale. With no names it
// invalidates everything. The next read refetches in the background.
func (c *Client) Invalidate(resources ...string) int {
	n := 0
	for _, k := range c.matching(resources) {
		if e, ok := c.peek(k); ok {
			e.mu.Lock()
			e.invalidated = true
			e.mu.Unlock()
			n++
		}
	}
	return n
}

// Refetch forces a network refresh of every cached entry of the named
// resources and waits for them. Each refresh is a new generation, so a slower
// revalidation already in flight cannot overwrite it.
func (c *Client) Refetch(ctx context.Context, resources ...string) error {
	if c.isClosed() {
		return ErrClosed
	}
	keys := c.matching(resources)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, k := range keys {
		e, ok := c.peek(k)
		if !ok {
			continue
		}
		e.mu.Lock()
		e.invalidated = true
		e.mu.Unlock()

		wg.Add(1)
		go func(k Key, e *entry) {
			defer wg.Done()
			if err := c.run(ctx, k, e); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", k, err))
				mu.Unlock()
			}
		}(k, e)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Remove drops entries of the named resources, or all entries.
func (c *Client) Remove(resources ...string) {
	for _, k := range c.matching(resources) {
		c.mu.Lock()
		c.entries.Remove(k)
		c.mu.Unlock()
	}
}

// Len reports the number of live entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Close stops background revalidation, waits for it, and drops every entry.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	c.entries.Purge()
	c.mu.Unlock()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) hook(fn func(Key), key Key) {
	if fn != nil {
		fn(key)
	}
}
