package http

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

/**
 * @file: http_client.go
 * @description: http client used by the cli against a running server
 */

type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// WithToken sets the bearer token sent with every request.
func (c *Client) WithToken(token string) *Client {
	c.client.SetAuthToken(token)
	return c
}

// GetJSON fetches path and decodes the body into out. Non-2xx statuses are
// returned as errors carrying the body.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status(), resp.String())
	}
	return nil
}

// Ping checks the liveness endpoint of the server.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("health check: %s", resp.Status())
	}
	return nil
}
