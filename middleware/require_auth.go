package middleware

import (
	"net/http"

	"github.com/MrEthical07/perksAdmin/session"
)

// RequireAuth serves next only to an authenticated session and redirects
// everyone else to [LoginPath].
func RequireAuth(src Source, opts ...Option) func(http.Handler) http.Handler {
	return Guard(src, func(s session.Session) bool { return s.IsAuthenticated }, LoginPath, opts...)
}
