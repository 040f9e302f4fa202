package middleware

import (
	"net/http"

	"github.com/MrEthical07/perksAdmin/session"
)

// RequireAnonymous serves next only when nobody is signed in and redirects an
// authenticated session to [DashboardPath].
func RequireAnonymous(src Source, opts ...Option) func(http.Handler) http.Handler {
	return Guard(src, func(s session.Session) bool { return !s.IsAuthenticated }, DashboardPath, opts...)
}
