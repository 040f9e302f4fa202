package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/middleware"
	"github.com/MrEthical07/perksAdmin/storage"
)

type fakeAPI struct {
	mu        sync.Mutex
	lastQuery url.Values
	blocked   []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signIn", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"_id": "admin-1", "name": "Ada", "role": "admin"},
			},
		})
	})
	mux.HandleFunc("GET /users/all", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.Query()
		f.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"_id": "u1", "name": "Jane", "username": "jane", "isBlocked": false},
			},
			"pagination": map[string]any{"itemsPerPage": 25, "currentPage": 2, "totalItems": 30, "totalPages": 2},
		})
	})
	mux.HandleFunc("GET /users/blocked", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})
	mux.HandleFunc("POST /users/blocked", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Blocked string `json:"blocked"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.blocked = append(f.blocked, body.Blocked)
		f.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	})
	mux.HandleFunc("GET /admin/dashboard-stats", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{"totalUsers": 42}})
	})
	mux.HandleFunc("GET /admin/dashboard-graph", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"year": 2025, "monthly": map[string]any{}})
	})
	return mux
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestRouter(t *testing.T) (http.Handler, *fakeAPI, *perksAdmin.Console) {
	t.Helper()
	fake := &fakeAPI{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := perksAdmin.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = 2 * time.Second
	cfg.Query.Retries = 0
	cfg.Events.Enabled = false

	c, err := perksAdmin.New().WithConfig(cfg).WithStorage(storage.NewMemory()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Dispose)
	if _, err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return NewRouter(c, nil), fake, c
}

func do(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func signIn(t *testing.T, h http.Handler) {
	t.Helper()
	rr := do(h, http.MethodPost, middleware.LoginPath, url.Values{
		"email":    {"ada@perks.app"},
		"password": {"secret"},
		"role":     {"admin"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != middleware.DashboardPath {
		t.Fatalf("sign in: status=%d location=%q body=%s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}
}

func TestHealthzIsPublic(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rr := do(h, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	h, _, _ := newTestRouter(t)
	for _, path := range []string{"/users", middleware.DashboardPath, "/notifications"} {
		rr := do(h, http.MethodGet, path, nil)
		if rr.Code != http.StatusFound {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != middleware.LoginPath {
			t.Fatalf("%s: location %q", path, loc)
		}
	}
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	h, _, _ := newTestRouter(t)
	if rr := do(h, http.MethodGet, middleware.LoginPath, nil); rr.Code != http.StatusOK {
		t.Fatalf("anonymous login page: %d", rr.Code)
	}
	signIn(t, h)
	rr := do(h, http.MethodGet, middleware.LoginPath, nil)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != middleware.DashboardPath {
		t.Fatalf("signed-in login page: %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestSignInValidationFailure(t *testing.T) {
	h, _, c := newTestRouter(t)
	rr := do(h, http.MethodPost, middleware.LoginPath, url.Values{"email": {"not-an-email"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}
	if c.Session().IsAuthenticated() {
		t.Fatal("validation failure must not sign in")
	}
}

func TestUsersListDecodesURLState(t *testing.T) {
	h, fake, _ := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodGet, "/users?page=2&pageSize=25&search=+ja+", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}

	fake.mu.Lock()
	q := fake.lastQuery
	fake.mu.Unlock()
	if q.Get("page") != "2" || q.Get("limit") != "25" || q.Get("search") != "ja" {
		t.Fatalf("upstream query = %v", q)
	}

	var body struct {
		Data []struct {
			ID        string `json:"_id"`
			IsBlocked bool   `json:"isBlocked"`
		} `json:"data"`
		Query string `json:"query"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != "u1" {
		t.Fatalf("data = %+v", body.Data)
	}
	vals, err := url.ParseQuery(body.Query)
	if err != nil {
		t.Fatal(err)
	}
	if vals.Get("page") != "2" || vals.Get("pageSize") != "25" || vals.Get("search") != "ja" {
		t.Fatalf("query = %q", body.Query)
	}
}

func TestUsersListFallsBackOnInvalidPageSize(t *testing.T) {
	h, fake, _ := newTestRouter(t)
	signIn(t, h)

	if rr := do(h, http.MethodGet, "/users?pageSize=7&page=-3", nil); rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.lastQuery.Get("limit") != "10" || fake.lastQuery.Get("page") != "1" {
		t.Fatalf("upstream query = %v", fake.lastQuery)
	}
}

func TestToggleBlock(t *testing.T) {
	h, fake, _ := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodPost, "/users/u1/block?name=Jane", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.blocked) != 1 || fake.blocked[0] != "u1" {
		t.Fatalf("blocked = %v", fake.blocked)
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	h, _, _ := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodPost, "/notifications", url.Values{"title": {""}, "description": {"body"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}
}

func TestUnknownPostType(t *testing.T) {
	h, _, _ := newTestRouter(t)
	signIn(t, h)

	if rr := do(h, http.MethodGet, "/posts/reels", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestCompareSameYearNotApplicable(t *testing.T) {
	h, _, _ := newTestRouter(t)
	signIn(t, h)

	if rr := do(h, http.MethodGet, "/dashboard/compare?year1=2024&year2=2024", nil); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	h, _, _ := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodGet, middleware.DashboardPath, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Stats struct {
			TotalUsers int `json:"totalUsers"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.TotalUsers != 42 {
		t.Fatalf("stats = %+v", body.Stats)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _, _ := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "perks_admin_sign_in_success_total 1") {
		t.Fatalf("metrics body:\n%s", rr.Body.String())
	}
}

func TestSignOutRedirectsToLogin(t *testing.T) {
	h, _, c := newTestRouter(t)
	signIn(t, h)

	rr := do(h, http.MethodPost, "/auth/logout", nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != middleware.LoginPath {
		t.Fatalf("logout: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if c.Session().IsAuthenticated() {
		t.Fatal("session still authenticated")
	}
}
