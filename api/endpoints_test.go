package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
	auth   string
}

func recordingServer(t *testing.T, reply any) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		writeJSON(w, http.StatusOK, reply)
	}))
	return c, rec
}

func TestSignIn(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":  map[string]any{"_id": "a1", "name": "Admin"},
			"token": "tok",
		},
	})
	out, err := c.SignIn(context.Background(), SignInRequest{Email: "a@b.c", Password: "pw", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/auth/signIn" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	if rec.body["email"] != "a@b.c" || rec.body["role"] != "admin" {
		t.Fatalf("body = %v", rec.body)
	}
	if out.Data.Token != "tok" || out.Data.User["name"] != "Admin" {
		t.Fatalf("out = %+v", out)
	}
}

func TestSignInMissingTokenIsDecodeError(t *testing.T) {
	c, _ := recordingServer(t, map[string]any{"success": true, "data": map[string]any{}})
	_, err := c.SignIn(context.Background(), SignInRequest{})
	if e, ok := AsError(err); !ok || e.Kind != KindDecode {
		t.Fatalf("err = %v", err)
	}
}

func TestResetPasswordUsesResetToken(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{"success": true, "message": "ok"})
	if _, err := c.ResetPassword(context.Background(), ResetPasswordRequest{Password: "N3w!pass"}, "reset-tok"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if rec.auth != "Bearer reset-tok" || rec.path != "/auth/resetPassword" {
		t.Fatalf("auth=%q path=%q", rec.auth, rec.path)
	}
}

func TestListUsersParams(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{
		"success":    true,
		"data":       []map[string]any{{"_id": "u1", "name": "Ann"}},
		"pagination": map[string]any{"currentPage": 2, "totalPages": 4},
	})
	out, err := c.ListUsers(context.Background(), ListParams{Page: 2, Limit: 25, Search: "  ann "})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if rec.path != "/users/all" || rec.query["page"] != "2" || rec.query["limit"] != "25" || rec.query["search"] != "ann" {
		t.Fatalf("path=%q query=%v", rec.path, rec.query)
	}
	if len(out.Data) != 1 || out.Pagination.TotalPages != 4 {
		t.Fatalf("out = %+v", out)
	}
}

func TestListParamsOmitEmptySearch(t *testing.T) {
	v := ListParams{}.Values()
	if v.Get("page") != "1" || v.Get("limit") != "10" || v.Has("search") {
		t.Fatalf("values = %v", v)
	}
}

func TestUserDetailUnwrapsData(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{
		"success": true,
		"data":    map[string]any{"_id": "u1", "name": "Ann", "isBlocked": true},
	})
	out, err := c.UserDetail(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserDetail: %v", err)
	}
	if rec.query["userId"] != "u1" || out.Name != "Ann" || !out.IsBlocked {
		t.Fatalf("query=%v out=%+v", rec.query, out)
	}
}

func TestToggleBlockBody(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{"success": true})
	if _, err := c.ToggleBlock(context.Background(), BlockRequest{Blocked: "u9", Block: true}); err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/users/blocked" || rec.body["blocked"] != "u9" || rec.body["block"] != true {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestListPostsRejectsUnknownType(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{})
	if _, err := c.ListPosts(context.Background(), PostType("story"), ListParams{}); err == nil {
		t.Fatal("expected error")
	}
	if rec.path != "" {
		t.Fatal("no request should be sent")
	}
	if _, err := c.ListPosts(context.Background(), PostTypeAnonymous, ListParams{}); err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if rec.query["type"] != "post" {
		t.Fatalf("query = %v", rec.query)
	}
}

func TestListNotificationsDefaultFilter(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{"success": true})
	if _, err := c.ListNotifications(context.Background(), NotificationParams{Page: 3}); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if rec.query["filter"] != "all" || rec.query["page"] != "3" {
		t.Fatalf("query = %v", rec.query)
	}
}

func TestDashboardGraphSeries(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{
		"monthly": map[string]any{
			"january":  map[string]any{"users": 3},
			"december": map[string]any{"revenue": 12.5},
		},
	})
	g, err := c.DashboardGraph(context.Background(), 2024)
	if err != nil {
		t.Fatalf("DashboardGraph: %v", err)
	}
	if rec.query["year"] != "2024" || g.Year != 2024 {
		t.Fatalf("query=%v year=%d", rec.query, g.Year)
	}
	s := g.Series()
	if s[0].Users != 3 || s[11].Revenue != 12.5 || s[5] != (MonthlyPoint{}) {
		t.Fatalf("series = %+v", s)
	}
}

func TestYearComparison(t *testing.T) {
	c, rec := recordingServer(t, map[string]any{
		"year1": map[string]any{"monthly": map[string]any{"may": map[string]any{"posts": 1}}},
		"year2": map[string]any{"monthly": map[string]any{}},
	})
	out, err := c.YearComparison(context.Background(), 2022, 2023)
	if err != nil {
		t.Fatalf("YearComparison: %v", err)
	}
	if rec.query["year1"] != "2022" || rec.query["year2"] != "2023" {
		t.Fatalf("query = %v", rec.query)
	}
	if out.Year1.Year != 2022 || out.Year2.Year != 2023 || out.Year1.Series()[4].Posts != 1 {
		t.Fatalf("out = %+v", out)
	}
}

func TestPostProgress(t *testing.T) {
	tests := []struct {
		p    Post
		want float64
	}{
		{Post{}, 0},
		{Post{Amount: 100, AmountRaised: 25}, 0.25},
		{Post{Amount: 100, AmountRaised: 250}, 1},
		{Post{Amount: 100, AmountRaised: -5}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Progress(); got != tt.want {
			t.Fatalf("Progress(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
