package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/MrEthical07/perksAdmin/jwt"
	"github.com/MrEthical07/perksAdmin/storage"
)

// ErrPersistFailed is returned when a transition succeeded in memory but could
// not be written to durable storage.
var ErrPersistFailed = errors.New("session persist failed")

// LogoutFunc performs the server-side logout call. Its error never blocks
// local sign-out.
type LogoutFunc func(ctx context.Context) error

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, used for authTokenTime and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the console session state machine. All methods are safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	current Session

	storage storage.Storage
	logger  *slog.Logger
	now     func() time.Time

	subMu   sync.Mutex
	subs    map[uint64]func(Session)
	nextSub uint64
}

// NewStore creates a store persisting to st. The store starts anonymous and
// loading until [Store.Rehydrate] runs.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		current: Session{IsLoading: true, State: StateAnonymous},
		storage: st,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		subs:    make(map[uint64]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// IsLoading and IsAuthenticated let guards read the two flags they need
// without copying the user record.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsLoading
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated
}

// Token returns the in-memory bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Subscribe registers fn to receive every new snapshot. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(snap Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

// mutate applies fn under the write lock and publishes the result.
func (s *Store) mutate(fn func(*Session)) Session {
	s.mu.Lock()
	fn(&s.current)
	s.current.IsAuthenticated = s.current.User != nil && s.current.Token != ""
	switch {
	case s.current.IsAuthenticated:
		s.current.State = StateAuthenticated
	case s.current.IsLoading:
		s.current.State = StateAuthenticating
	default:
		s.current.State = StateAnonymous
	}
	snap := s.current.clone()
	s.mu.Unlock()

	s.publish(snap)
	return snap
}

// Rehydrate restores a persisted session. Both token and user must be present
// and the user must decode; anything else settles the store as anonymous.
// Rehydrate never calls the network and never fails.
func (s *Store) Rehydrate(ctx context.Context) Session {
	var (
		user  UserRecord
		token string
	)

	if s.storage != nil {
		tok, okTok, errTok := s.storage.Get(ctx, storage.KeyAuthToken)
		raw, okUser, errUser := s.storage.Get(ctx, storage.KeyUser)
		switch {
		case errTok != nil || errUser != nil:
			s.logger.Debug("session rehydrate: storage read failed", "error", errors.Join(errTok, errUser))
		case okTok && okUser && tok != "":
			if u, err := DecodeUser(raw); err == nil {
				user, token = u, tok
			} else {
				s.logger.Debug("session rehydrate: persisted user malformed")
			}
		}
	}

	return s.mutate(func(cur *Session) {
		cur.User = user
		cur.Token = token
		cur.IsLoading = false
		cur.Error = ""
	})
}

// BeginSignIn marks a sign-in attempt in progress.
func (s *Store) BeginSignIn() Session {
	return s.mutate(func(cur *Session) {
		cur.IsLoading = true
	})
}

// SignInSuccess records the signed-in user and persists user, token and the
// sign-in time. The in-memory transition happens even if persistence fails.
func (s *Store) SignInSuccess(ctx context.Context, user UserRecord, token string) (Session, error) {
	snap := s.mutate(func(cur *Session) {
		cur.User = user.Clone()
		cur.Token = token
		cur.IsLoading = false
		cur.Error = ""
	})

	if s.storage == nil {
		return snap, nil
	}
	encoded, err := EncodeUser(user)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if err := errors.Join(
		s.storage.Set(ctx, storage.KeyAuthToken, token),
		s.storage.Set(ctx, storage.KeyUser, encoded),
		s.storage.Set(ctx, storage.KeyAuthTokenTime, strconv.FormatInt(s.now().UnixMilli(), 10)),
	); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return snap, nil
}

// SignInFailure clears any identity and records message.
func (s *Store) SignInFailure(message string) Session {
	if message == "" {
		message = "An error occurred during sign in"
	}
	return s.mutate(func(cur *Session) {
		cur.User = nil
		cur.Token = ""
		cur.IsLoading = false
		cur.Error = message
	})
}

// SignOut calls logout best-effort, then clears persisted and in-memory state.
// Only a storage failure is returned; the session is anonymous either way.
func (s *Store) SignOut(ctx context.Context, logout LogoutFunc) error {
	if logout != nil {
		if err := logout(ctx); err != nil {
			s.logger.Warn("session sign-out: server logout failed", "error", err)
		}
	}
	return s.clear(ctx)
}

// Expire ends the session after the server rejected the token. No network call
// is made.
func (s *Store) Expire(ctx context.Context) error {
	return s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) error {
	var err error
	if s.storage != nil {
		err = s.storage.Remove(ctx, storage.SessionKeys()...)
	}
	s.mutate(func(cur *Session) {
		*cur = Session{}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// UpdateUser merges fields into the signed-in user and re-persists it. It is a
// no-op when anonymous.
func (s *Store) UpdateUser(ctx context.Context, fields UserRecord) (Session, error) {
	var updated UserRecord
	snap := s.mutate(func(cur *Session) {
		if cur.User == nil {
			return
		}
		merged := cur.User.Clone()
		for k, v := range fields {
			merged[k] = v
		}
		cur.User = merged
		updated = merged.Clone()
	})

	if updated == nil || s.storage == nil {
		return snap, nil
	}
	encoded, err := EncodeUser(updated)
	if err == nil {
		err = s.storage.Set(ctx, storage.KeyUser, encoded)
	}
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return snap, nil
}

// ClearError resets the last sign-in error.
func (s *Store) ClearError() Session {
	return s.mutate(func(cur *Session) {
		cur.Error = ""
	})
}

// TokenExpiry reports the exp claim of the current token. It is informational:
// the store keeps trusting the token until the server answers 401.
func (s *Store) TokenExpiry() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	claims, err := jwt.Inspect(tok)
	if err != nil || !claims.HasExpiry() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

// SignedInAt reads the persisted sign-in time.
func (s *Store) SignedInAt(ctx context.Context) (time.Time, bool) {
	if s.storage == nil {
		return time.Time{}, false
	}
	raw, ok, err := s.storage.Get(ctx, storage.KeyAuthTokenTime)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
