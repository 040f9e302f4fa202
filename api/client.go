package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/MrEthical07/perksAdmin/storage"
)

const (
	// DefaultBaseURL is the production Perks API.
	DefaultBaseURL = "https://api.the-perksapp.com"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 8 << 20
)

// Config describes the remote API.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// UnauthorizedHandler runs after a 401 has cleared the persisted session.
type UnauthorizedHandler func(ctx context.Context)

// RequestEvent describes one completed request for observers.
type RequestEvent struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	RequestID string
	Err       error
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is
// overridden only when zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUnauthorizedHandler sets the global 401 side effect.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver receives one event per completed request.
func WithObserver(fn func(RequestEvent)) Option {
	return func(c *Client) { c.observe = fn }
}

// WithRequestIDs overrides X-Request-ID generation.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Client issues authenticated requests against the Perks API. It is safe for
// concurrent use.
type Client struct {
	base           *url.URL
	http           *http.Client
	storage        storage.Storage
	onUnauthorized UnauthorizedHandler
	logger         *slog.Logger
	limiter        *rate.Limiter
	observe        func(RequestEvent)
	newID          func() string
	userAgent      string
}

// New builds a client. st supplies the bearer token and is cleared on 401; it
// may be nil for anonymous use.
func New(cfg Config, st storage.Storage, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidConfig, cfg.BaseURL)
	}
	if cfg.Timeout < 0 || cfg.RateLimit < 0 {
		return nil, fmt.Errorf("%w: negative timeout or rate limit", ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	jar, _ := cookiejar.New(nil)
	c := &Client{
		base:      base,
		http:      &http.Client{Jar: jar},
		storage:   st,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     uuid.NewString,
		userAgent: cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Timeout == 0 {
		c.http.Timeout = cfg.Timeout
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// File is one multipart file part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// RequestOptions carries everything but method and path.
type RequestOptions struct {
	Params url.Values
	Body   any

	// Fields and Files switch the body to multipart/form-data.
	Fields map[string]string
	Files  []File

	// Token overrides the stored bearer token for this call.
	Token string
	// Fallback is the message used when the server gives none.
	Fallback string
}

type messageEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions, out any) error {
	requestID := c.newID()
	start := time.Now()

	status, err := c.do(ctx, method, path, opts, out, requestID)

	if c.observe != nil {
		c.observe(RequestEvent{
			Method:    method,
			Path:      path,
			Status:    status,
			Duration:  time.Since(start),
			RequestID: requestID,
			Err:       err,
		})
	}
	if err != nil {
		c.logger.Warn("api request failed",
			"method", method,
			"path", path,
			"status", status,
			"request_id", requestID,
			"error", err.Error(),
		)
		return err
	}
	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", status,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions, out any, requestID string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, c.networkError(err, requestID)
		}
	}

	req, err := c.newRequest(ctx, method, path, opts, requestID)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, c.networkError(err, requestID)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, c.networkError(err, requestID)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return resp.StatusCode, &Error{
			Message:   serverMessage(payload, "Session expired. Please sign in again."),
			Status:    resp.StatusCode,
			Kind:      KindUnauthorized,
			RequestID: requestID,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &Error{
			Message:   serverMessage(payload, fallback(opts.Fallback)),
			Status:    resp.StatusCode,
			Kind:      KindServer,
			RequestID: requestID,
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return resp.StatusCode, &Error{
			Message:   fallback(opts.Fallback),
			Status:    resp.StatusCode,
			Kind:      KindDecode,
			RequestID: requestID,
			cause:     err,
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions, requestID string) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(opts.Params) > 0 {
		u.RawQuery = opts.Params.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(opts.Files) > 0 || len(opts.Fields) > 0:
		buf, ct, err := encodeMultipart(opts.Fields, opts.Files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case opts.Body != nil:
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	token := opts.Token
	if token == "" && c.storage != nil {
		if stored, ok, err := c.storage.Get(ctx, storage.KeyAuthToken); err == nil && ok {
			token = stored
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func encodeMultipart(fields map[string]string, files []File) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		if f.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if c.storage != nil {
		if err := c.storage.Remove(context.WithoutCancel(ctx), storage.SessionKeys()...); err != nil {
			c.logger.Warn("api: clearing session after 401 failed", "error", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(context.WithoutCancel(ctx))
	}
}

func (c *Client) networkError(err error, requestID string) *Error {
	return &Error{
		Message:   NetworkErrorMessage,
		Kind:      KindNetwork,
		RequestID: requestID,
		cause:     err,
	}
}

func serverMessage(payload []byte, fallback string) string {
	var env messageEnvelope
	if err := json.Unmarshal(payload, &env); err == nil {
		if msg := strings.TrimSpace(env.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(env.Error); msg != "" {
			return msg
		}
	}
	return fallback
}

func fallback(msg string) string {
	if msg == "" {
		return DefaultErrorMessage
	}
	return msg
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
