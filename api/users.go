package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) ListUsers(ctx context.Context, p ListParams) (*UserList, error) {
	var out UserList
	if err := c.Do(ctx, http.MethodGet, "/users/all", RequestOptions{
		Params:   p.Values(),
		Fallback: "Failed to fetch users",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBlockedUsers(ctx context.Context, p ListParams) (*UserList, error) {
	var out UserList
	if err := c.Do(ctx, http.MethodGet, "/users/blocked", RequestOptions{
		Params:   p.Values(),
		Fallback: "Failed to fetch blocked users",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserDetail(ctx context.Context, userID string) (*UserDetail, error) {
	var out struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		Data    UserDetail `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, "/users", RequestOptions{
		Params:   url.Values{"userId": {strings.TrimSpace(userID)}},
		Fallback: "Failed to fetch user details",
	}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ToggleBlock blocks or unblocks a user.
func (c *Client) ToggleBlock(ctx context.Context, req BlockRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/users/blocked", RequestOptions{
		Body:     req,
		Fallback: "Failed to update user block status",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
