package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultTimeout = "30s"

// Client is a live *http.Client shared by every construct that references
// it.
type Client struct {
	Timeout             string
	MaxIdleConns        int
	MaxIdleConnsPerHost int

	mu     sync.Mutex
	client *http.Client
}

// HTTP returns the underlying client, creating it on first use.
func (c *Client) HTTP() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	timeout := c.Timeout
	if timeout == "" {
		timeout = defaultTimeout
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("http_client: invalid timeout %q: %w", timeout, err)
	}

	maxIdle, perHost := c.MaxIdleConns, c.MaxIdleConnsPerHost
	if maxIdle <= 0 {
		maxIdle = 100
	}
	if perHost <= 0 {
		perHost = 10
	}
	c.client = &http.Client{
		Timeout: d,
		Transport: &http.Transport{
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: perHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return c.client, nil
}

// Get performs a GET request and returns the status code and body.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	client, err := c.HTTP()
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// Close gracefully closes idle connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	return nil
}
