package mutation

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/resources"
)

const blockFailedMessage = "Failed to update block status"

const (
	DefaultRetries    = 1
	DefaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// BlockAPI is the endpoint the toggler calls.
type BlockAPI interface {
	ToggleBlock(ctx context.Context, req api.BlockRequest) (*api.MessageResponse, error)
}

// Refetcher refreshes cached resources.
type Refetcher interface {
	Refetch(ctx context.Context, resources ...string) error
}

// Notifier shows operator-facing messages.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Outcome reports one finished toggle to observers.
type Outcome struct {
	UserID   string
	Block    bool
	Err      error
	Rejected bool
}

// BlockOption configures a [BlockToggler].
type BlockOption func(*BlockToggler)

func WithNotifier(n Notifier) BlockOption {
	return func(b *BlockToggler) { b.notify = n }
}

func WithLogger(l *slog.Logger) BlockOption {
	return func(b *BlockToggler) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver receives every outcome, including rejections.
func WithObserver(fn func(Outcome)) BlockOption {
	return func(b *BlockToggler) { b.observe = fn }
}

// WithRetry sets how many times a temporary API failure is retried before the
// overlay reverts, and the delay before the first retry. Delays double after
// that. Zero retries disables retrying.
func WithRetry(retries int, delay time.Duration) BlockOption {
	return func(b *BlockToggler) {
		if retries >= 0 {
			b.retries = retries
		}
		if delay > 0 {
			b.retryDelay = delay
		}
	}
}

// BlockToggler blocks and unblocks users optimistically.
type BlockToggler struct {
	api     BlockAPI
	cache   Refetcher
	overlay *Overlay[string, bool]
	notify  Notifier
	logger  *slog.Logger
	observe func(Outcome)

	retries    int
	retryDelay time.Duration
}

func NewBlockToggler(a BlockAPI, cache Refetcher, opts ...BlockOption) *BlockToggler {
	b := &BlockToggler{
		api:     a,
		cache:   cache,
		overlay: NewOverlay[string, bool](),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),

		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Overlay exposes the blocked-state overlay for rendering.
func (b *BlockToggler) Overlay() *Overlay[string, bool] {
	return b.overlay
}

// IsBlocked resolves the displayed state of a row.
func (b *BlockToggler) IsBlocked(userID string, server bool) bool {
	return b.overlay.Resolve(userID, server)
}

// Toggle sets the block state of userID. name is used in the success message
// and may be empty.
func (b *BlockToggler) Toggle(ctx context.Context, userID, name string, block bool) error {
	if err := b.overlay.Begin(userID, block); err != nil {
		b.emit(Outcome{UserID: userID, Block: block, Err: err, Rejected: true})
		return err
	}

	if err := b.send(ctx, api.BlockRequest{Blocked: userID, Block: block}); err != nil {
		if api.IsUnauthorized(err) {
			b.overlay.Revert(userID, "")
		} else {
			msg := api.Message(err, blockFailedMessage)
			b.overlay.Revert(userID, msg)
			if b.notify != nil {
				b.notify.Error(ctx, msg)
			}
		}
		b.logger.Warn("block toggle failed", "user_id", userID, "block", block, "error", err)
		b.emit(Outcome{UserID: userID, Block: block, Err: err})
		return err
	}

	if b.cache != nil {
		if err := b.cache.Refetch(ctx, resources.Users, resources.BlockedUsers); err != nil {
			// The server accepted the change; keep showing it until a later read succeeds.
			b.overlay.Commit(userID)
			b.logger.Warn("block toggle: refetch failed", "user_id", userID, "error", err)
		} else {
			b.overlay.Settle(userID)
		}
	} else {
		b.overlay.Commit(userID)
	}

	if b.notify != nil {
		b.notify.Success(ctx, successMessage(name, block))
	}
	b.emit(Outcome{UserID: userID, Block: block})
	return nil
}

// send calls the API, retrying temporary failures. Server rejections, 401s and
// non-API errors are returned at once.
func (b *BlockToggler) send(ctx context.Context, req api.BlockRequest) error {
	if b.retries == 0 {
		_, err := b.api.ToggleBlock(ctx, req)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.retryDelay
	bo.MaxInterval = maxRetryDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	_, err := backoff.Retry(ctx, func() (*api.MessageResponse, error) {
		resp, err := b.api.ToggleBlock(ctx, req)
		if err != nil && !temporary(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(b.retries+1)))
	return err
}

func temporary(err error) bool {
	apiErr, ok := api.AsError(err)
	return ok && apiErr.Temporary()
}

func successMessage(name string, block bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "User"
	}
	if block {
		return name + " has been blocked"
	}
	return name + " has been unblocked"
}

func (b *BlockToggler) emit(o Outcome) {
	if b.observe != nil {
		b.observe(o)
	}
}
