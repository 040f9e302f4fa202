package api

import (
	"context"
	"net/http"
)

func (c *Client) ListNotifications(ctx context.Context, p NotificationParams) (*NotificationList, error) {
	var out NotificationList
	if err := c.Do(ctx, http.MethodGet, "/notifications/all", RequestOptions{
		Params:   p.Values(),
		Fallback: "Failed to fetch notifications",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/notifications", RequestOptions{
		Body:     req,
		Fallback: "Failed to create notification",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
