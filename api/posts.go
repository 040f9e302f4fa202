package api

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListPosts(ctx context.Context, t PostType, p ListParams) (*PostList, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: post type %q", ErrInvalidConfig, t)
	}
	params := p.Values()
	params.Set("type", string(t))

	var out PostList
	if err := c.Do(ctx, http.MethodGet, "/posts", RequestOptions{
		Params:   params,
		Fallback: "Failed to fetch posts",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
