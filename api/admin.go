package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStatsResponse
	if err := c.Do(ctx, http.MethodGet, "/admin/dashboard-stats", RequestOptions{
		Fallback: "Failed to fetch dashboard stats",
	}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DashboardGraph fetches monthly totals for year. A zero year lets the server
// pick the current one.
func (c *Client) DashboardGraph(ctx context.Context, year int) (*DashboardGraph, error) {
	var params url.Values
	if year > 0 {
		params = url.Values{"year": {strconv.Itoa(year)}}
	}

	var out DashboardGraph
	if err := c.Do(ctx, http.MethodGet, "/admin/dashboard-graph", RequestOptions{
		Params:   params,
		Fallback: "Failed to fetch dashboard graph",
	}, &out); err != nil {
		return nil, err
	}
	if out.Year == 0 {
		out.Year = year
	}
	return &out, nil
}

func (c *Client) YearComparison(ctx context.Context, year1, year2 int) (*YearComparison, error) {
	var out YearComparison
	if err := c.Do(ctx, http.MethodGet, "/admin/year-comparison", RequestOptions{
		Params: url.Values{
			"year1": {strconv.Itoa(year1)},
			"year2": {strconv.Itoa(year2)},
		},
		Fallback: "Failed to fetch year comparison",
	}, &out); err != nil {
		return nil, err
	}
	if out.Year1.Year == 0 {
		out.Year1.Year = year1
	}
	if out.Year2.Year == 0 {
		out.Year2.Year = year2
	}
	return &out, nil
}
