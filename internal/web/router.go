// Package web serves the console over local HTTP: route guards in front of
// JSON handlers backed by a [perksAdmin.Console].
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/forms"
	"github.com/MrEthical07/perksAdmin/listctl"
	"github.com/MrEthical07/perksAdmin/metrics/export/prometheus"
	"github.com/MrEthical07/perksAdmin/middleware"
	"github.com/MrEthical07/perksAdmin/mutation"
)

// NotificationFilter is the extra list parameter of the notification feed.
const NotificationFilter = "filter"

type server struct {
	console *perksAdmin.Console
	logger  *slog.Logger
}

// NewRouter mounts the console routes. Public auth pages sit behind
// [middleware.RequireAnonymous] and everything else behind
// [middleware.RequireAuth].
func NewRouter(c *perksAdmin.Console, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &server{console: c, logger: logger}
	store := c.Session()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", prometheus.NewPrometheusExporter(c).Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAnonymous(store))
		r.Get(middleware.LoginPath, s.loginPage)
		r.Post(middleware.LoginPath, s.signIn)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Post("/auth/verify-otp", s.verifyOTP)
		r.Post("/auth/reset-password", s.resetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(store))
		r.Post("/auth/logout", s.signOut)
		r.Get(middleware.DashboardPath, s.dashboard)
		r.Get("/dashboard/compare", s.compare)
		r.Get("/users", s.users)
		r.Get("/users/blocked", s.blockedUsers)
		r.Get("/users/{id}", s.userDetail)
		r.Post("/users/{id}/block", s.toggleBlock(true))
		r.Post("/users/{id}/unblock", s.toggleBlock(false))
		r.Get("/posts/{type}", s.posts)
		r.Get("/notifications", s.notifications)
		r.Post("/notifications", s.createNotification)
		r.Post("/settings/password", s.changePassword)
	})

	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

/*
====================================
AUTH
====================================
*/

func (s *server) loginPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fields": []string{"email", "password", "role"},
		"roles":  []api.Role{api.RoleAdmin},
	})
}

func (s *server) signIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	role := api.Role(r.PostForm.Get("role"))
	if role == "" {
		role = api.RoleAdmin
	}
	snap, err := s.console.SignIn(r.Context(), forms.SignIn{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     role,
	})
	if err != nil && !snap.IsAuthenticated {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

func (s *server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.console.SignOut(r.Context()); err != nil {
		s.logger.Warn("server logout failed", "error", err)
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (s *server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.console.ForgotPassword(r.Context(), forms.ForgotPassword{Email: r.PostForm.Get("email")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.console.VerifyOTP(r.Context(), r.PostForm.Get("otp")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func (s *server) resetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.console.ResetPassword(r.Context(), forms.ResetPassword{
		Password: r.PostForm.Get("password"),
		Confirm:  r.PostForm.Get("confirmPassword"),
	}, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.console.ChangePassword(r.Context(), forms.ChangePassword{
		Current: r.PostForm.Get("currentPassword"),
		New:     r.PostForm.Get("newPassword"),
		Confirm: r.PostForm.Get("confirmPassword"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

/*
====================================
DASHBOARD
====================================
*/

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	res := s.console.Resources()
	stats, err := res.DashboardStats(r.Context())
	if err != nil && !stats.HasData {
		writeError(w, err)
		return
	}
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	graph, err := res.DashboardGraph(r.Context(), year)
	if err != nil && !graph.HasData {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   stats.Data,
		"graph":   graph.Data,
		"isStale": stats.IsStale || graph.IsStale,
	})
}

func (s *server) compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year1, _ := strconv.Atoi(q.Get("year1"))
	year2, _ := strconv.Atoi(q.Get("year2"))
	res, err := s.console.Resources().YearComparison(r.Context(), year1, year2)
	if res.NotApplicable {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "choose two different years"})
		return
	}
	if err != nil && !res.HasData {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

/*
====================================
LISTS
====================================
*/

type listResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination api.Pagination `json:"pagination"`
	Query      string         `json:"query"`
	IsStale    bool           `json:"isStale"`
}

type userRow struct {
	api.User
	// IsBlocked reflects a pending optimistic toggle.
	IsBlocked bool `json:"isBlocked"`
}

func (s *server) users(w http.ResponseWriter, r *http.Request) {
	ctl := s.console.NewList(r.URL.Query())
	defer ctl.Close()

	res, err := s.console.Resources().Users(r.Context(), ctl.Query().Params())
	s.writeUsers(w, ctl, res.Data, res.IsStale, err)
}

func (s *server) blockedUsers(w http.ResponseWriter, r *http.Request) {
	ctl := s.console.NewList(r.URL.Query())
	defer ctl.Close()

	res, err := s.console.Resources().BlockedUsers(r.Context(), ctl.Query().Params())
	s.writeUsers(w, ctl, res.Data, res.IsStale, err)
}

func (s *server) writeUsers(w http.ResponseWriter, ctl *listctl.Controller, list *api.UserList, stale bool, err error) {
	if list == nil {
		if err == nil {
			err = errors.New("no data")
		}
		writeError(w, err)
		return
	}
	rows := make([]userRow, len(list.Data))
	for i, u := range list.Data {
		rows[i] = userRow{User: u, IsBlocked: s.console.Blocks().IsBlocked(u.ID, u.IsBlocked)}
	}
	ctl.SetTotalPages(list.Pagination.TotalPages)
	writeJSON(w, http.StatusOK, listResponse[userRow]{
		Data:       rows,
		Pagination: list.Pagination,
		Query:      ctl.URLValues().Encode(),
		IsStale:    stale,
	})
}

func (s *server) userDetail(w http.ResponseWriter, r *http.Request) {
	res, err := s.console.Resources().UserDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !res.HasData {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

func (s *server) toggleBlock(block bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.console.ToggleBlock(r.Context(), id, r.URL.Query().Get("name"), block); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "isBlocked": block})
	}
}

func (s *server) posts(w http.ResponseWriter, r *http.Request) {
	ctl := s.console.NewList(r.URL.Query())
	defer ctl.Close()

	res, err := s.console.Resources().Posts(r.Context(), api.PostType(chi.URLParam(r, "type")), ctl.Query().Params())
	if res.NotApplicable {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown post type"})
		return
	}
	if res.Data == nil {
		writeError(w, err)
		return
	}
	ctl.SetTotalPages(res.Data.Pagination.TotalPages)
	writeJSON(w, http.StatusOK, listResponse[api.Post]{
		Data:       res.Data.Data,
		Pagination: res.Data.Pagination,
		Query:      ctl.URLValues().Encode(),
		IsStale:    res.IsStale,
	})
}

func (s *server) notifications(w http.ResponseWriter, r *http.Request) {
	ctl := s.console.NewList(r.URL.Query(), listctl.WithFilter(listctl.TextField(NotificationFilter, "all")))
	defer ctl.Close()

	q := ctl.Query()
	res, err := s.console.Resources().Notifications(r.Context(), api.NotificationParams{
		Page:   q.Page,
		Limit:  q.PageSize,
		Filter: q.Filters[NotificationFilter],
	})
	if res.Data == nil {
		writeError(w, err)
		return
	}
	ctl.SetTotalPages(res.Data.Pagination.TotalPages)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       res.Data.Data,
		"pagination": res.Data.Pagination,
		"query":      ctl.URLValues().Encode(),
		"isStale":    res.IsStale,
	})
}

func (s *server) createNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.console.CreateNotification(r.Context(), forms.CreateNotification{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

/*
====================================
RESPONSES
====================================
*/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New(api.DefaultErrorMessage)
	}

	var verrs forms.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verrs.First(), "fields": verrs})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, perksAdmin.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, perksAdmin.ErrNoResetEmail),
		errors.Is(err, perksAdmin.ErrNoResetToken),
		errors.Is(err, perksAdmin.ErrResetSessionExpired):
		status = http.StatusBadRequest
	case errors.Is(err, mutation.ErrMutationInFlight):
		status = http.StatusConflict
	}
	if apiErr, ok := api.AsError(err); ok {
		switch {
		case apiErr.Kind == api.KindUnauthorized:
			status = http.StatusUnauthorized
		case apiErr.Kind == api.KindNetwork:
			status = http.StatusBadGateway
		case apiErr.Status >= 400 && apiErr.Status < 500:
			status = apiErr.Status
		default:
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, map[string]string{"error": api.Message(err, api.DefaultErrorMessage)})
}
