package middleware

import (
	"context"
	"io"
	"net/http"

	"github.com/MrEthical07/perksAdmin/session"
)

const (
	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/auth/login"
	// DashboardPath is where authenticated requests to public pages are sent.
	DashboardPath = "/dashboard"
)

// Source is the session view a guard needs. *session.Store satisfies it.
type Source interface {
	IsLoading() bool
	IsAuthenticated() bool
	Snapshot() session.Session
}

// Predicate decides whether a settled session may see the wrapped handler.
type Predicate func(session.Session) bool

type sessionContextKey struct{}

// SessionFromContext returns the snapshot a guard attached to the request.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}

// Option configures a guard.
type Option func(*options)

type options struct {
	loading http.Handler
	target  string
	status  int
}

// WithLoadingHandler replaces the default loading response.
func WithLoadingHandler(h http.Handler) Option {
	return func(o *options) {
		if h != nil {
			o.loading = h
		}
	}
}

// WithRedirect overrides the redirect target.
func WithRedirect(target string) Option {
	return func(o *options) {
		if target != "" {
			o.target = target
		}
	}
}

// LoadingHandler is the default response while the session rehydrates.
func LoadingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "loading\n")
	})
}

// Guard wraps handlers so they are served only when allow accepts the session.
// A nil src is treated as a settled anonymous session.
func Guard(src Source, allow Predicate, target string, opts ...Option) func(http.Handler) http.Handler {
	o := options{
		loading: LoadingHandler(),
		target:  target,
		status:  http.StatusFound,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var snap session.Session
			if src != nil {
				if src.IsLoading() {
					o.loading.ServeHTTP(w, r)
					return
				}
				snap = src.Snapshot()
			}
			// Loading may have resumed (a sign-in began) between the two reads.
			if snap.IsLoading {
				o.loading.ServeHTTP(w, r)
				return
			}

			if allow == nil || !allow(snap) {
				// Location and status only; the redirect carries no body.
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Location", o.target)
				w.WriteHeader(o.status)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
