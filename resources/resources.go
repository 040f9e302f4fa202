package resources

import (
	"context"
	"strconv"
	"time"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/query"
)

// Resource names.
const (
	Users          = "users"
	BlockedUsers   = "blocked-users"
	Posts          = "posts"
	Notifications  = "notifications"
	UserDetail     = "user-detail"
	DashboardStats = "dashboard-stats"
	DashboardGraph = "dashboard-graph"
	YearComparison = "year-comparison"
)

// DashboardStaleTime applies to the three analytics resources.
const DashboardStaleTime = time.Minute

// API is the subset of [api.Client] the fetchers call.
type API interface {
	ListUsers(ctx context.Context, p api.ListParams) (*api.UserList, error)
	ListBlockedUsers(ctx context.Context, p api.ListParams) (*api.UserList, error)
	UserDetail(ctx context.Context, userID string) (*api.UserDetail, error)
	ListPosts(ctx context.Context, t api.PostType, p api.ListParams) (*api.PostList, error)
	ListNotifications(ctx context.Context, p api.NotificationParams) (*api.NotificationList, error)
	CreateNotification(ctx context.Context, req api.CreateNotificationRequest) (*api.MessageResponse, error)
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
	DashboardGraph(ctx context.Context, year int) (*api.DashboardGraph, error)
	YearComparison(ctx context.Context, year1, year2 int) (*api.YearComparison, error)
}

// Option configures [Resources].
type Option func(*Resources)

// WithDashboardStaleTime overrides [DashboardStaleTime].
func WithDashboardStaleTime(d time.Duration) Option {
	return func(r *Resources) {
		if d > 0 {
			r.dashboardStale = d
		}
	}
}

// Resources is the typed read surface of the console.
type Resources struct {
	api            API
	cache          *query.Client
	dashboardStale time.Duration
}

func New(a API, cache *query.Client, opts ...Option) *Resources {
	r := &Resources{api: a, cache: cache, dashboardStale: DashboardStaleTime}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the underlying query client.
func (r *Resources) Cache() *query.Client {
	return r.cache
}

func listKey(resource string, p api.ListParams, extra map[string]string) query.Key {
	params := map[string]string{}
	for k, v := range p.Values() {
		params[k] = v[0]
	}
	if _, ok := params["search"]; !ok {
		params["search"] = ""
	}
	for k, v := range extra {
		params[k] = v
	}
	return query.NewKey(resource, params)
}

func (r *Resources) Users(ctx context.Context, p api.ListParams) (query.Result[*api.UserList], error) {
	return query.Fetch(ctx, r.cache, listKey(Users, p, nil), func(ctx context.Context) (*api.UserList, error) {
		return r.api.ListUsers(ctx, p)
	})
}

func (r *Resources) BlockedUsers(ctx context.Context, p api.ListParams) (query.Result[*api.UserList], error) {
	return query.Fetch(ctx, r.cache, listKey(BlockedUsers, p, nil), func(ctx context.Context) (*api.UserList, error) {
		return r.api.ListBlockedUsers(ctx, p)
	})
}

// Posts lists one post type. An unknown type is not applicable.
func (r *Resources) Posts(ctx context.Context, t api.PostType, p api.ListParams) (query.Result[*api.PostList], error) {
	if !t.Valid() {
		return query.NotApplicable[*api.PostList](), nil
	}
	key := listKey(Posts, p, map[string]string{"type": string(t)})
	return query.Fetch(ctx, r.cache, key, func(ctx context.Context) (*api.PostList, error) {
		return r.api.ListPosts(ctx, t, p)
	})
}

func (r *Resources) Notifications(ctx context.Context, p api.NotificationParams) (query.Result[*api.NotificationList], error) {
	params := map[string]string{}
	for k, v := range p.Values() {
		params[k] = v[0]
	}
	return query.Fetch(ctx, r.cache, query.NewKey(Notifications, params), func(ctx context.Context) (*api.NotificationList, error) {
		return r.api.ListNotifications(ctx, p)
	})
}

// UserDetail fetches one profile. An empty id is not applicable.
func (r *Resources) UserDetail(ctx context.Context, userID string) (query.Result[*api.UserDetail], error) {
	if userID == "" {
		return query.NotApplicable[*api.UserDetail](), nil
	}
	key := query.NewKey(UserDetail, map[string]string{"userId": userID})
	return query.Fetch(ctx, r.cache, key, func(ctx context.Context) (*api.UserDetail, error) {
		return r.api.UserDetail(ctx, userID)
	})
}

func (r *Resources) DashboardStats(ctx context.Context) (query.Result[*api.DashboardStats], error) {
	return query.Fetch(ctx, r.cache, query.NewKey(DashboardStats, nil), func(ctx context.Context) (*api.DashboardStats, error) {
		return r.api.DashboardStats(ctx)
	}, query.StaleTime(r.dashboardStale))
}

// DashboardGraph fetches a year of monthly totals. Zero asks for the current
// year as chosen by the server.
func (r *Resources) DashboardGraph(ctx context.Context, year int) (query.Result[*api.DashboardGraph], error) {
	if year < 0 {
		return query.NotApplicable[*api.DashboardGraph](), nil
	}
	key := query.NewKey(DashboardGraph, map[string]string{"year": strconv.Itoa(year)})
	return query.Fetch(ctx, r.cache, key, func(ctx context.Context) (*api.DashboardGraph, error) {
		return r.api.DashboardGraph(ctx, year)
	}, query.StaleTime(r.dashboardStale))
}

// ComparisonApplicable reports whether two years can be compared.
func ComparisonApplicable(year1, year2 int) bool {
	return year1 != year2 && year1 > 0 && year2 > 0
}

// YearComparison fetches two years side by side. Equal or non-positive years
// are not applicable and make no request.
func (r *Resources) YearComparison(ctx context.Context, year1, year2 int) (query.Result[*api.YearComparison], error) {
	if !ComparisonApplicable(year1, year2) {
		return query.NotApplicable[*api.YearComparison](), nil
	}
	key := query.NewKey(YearComparison, map[string]string{
		"year1": strconv.Itoa(year1),
		"year2": strconv.Itoa(year2),
	})
	return query.Fetch(ctx, r.cache, key, func(ctx context.Context) (*api.YearComparison, error) {
		return r.api.YearComparison(ctx, year1, year2)
	}, query.StaleTime(r.dashboardStale))
}

// CreateNotification sends a notification and invalidates the feed.
func (r *Resources) CreateNotification(ctx context.Context, req api.CreateNotificationRequest) (*api.MessageResponse, error) {
	resp, err := r.api.CreateNotification(ctx, req)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(Notifications)
	return resp, nil
}

// Invalidate marks resources stale.
func (r *Resources) Invalidate(resources ...string) int {
	return r.cache.Invalidate(resources...)
}

// Refetch refreshes cached entries of resources and waits.
func (r *Resources) Refetch(ctx context.Context, resources ...string) error {
	return r.cache.Refetch(ctx, resources...)
}
