// Package client is a small HTTP client for the fleet status server and
// for the per-host metrics agents.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"evalgo.org/fleetstatus/models"
)

// StatusPath is the route serving the cached fleet status.
const StatusPath = "/api/vps-status"

// maxBodyBytes caps decoded response bodies.
const maxBodyBytes = 4 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Status returns the server's latest cached fleet status.
func (c *Client) Status(ctx context.Context) ([]models.HostStatusRecord, error) {
	var records []models.HostStatusRecord
	if err := getJSON(ctx, c.httpClient, c.baseURL+StatusPath, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AgentMetrics fetches one snapshot from the metrics agent at url.
func (c *Client) AgentMetrics(ctx context.Context, url string) (*models.MetricsSnapshot, error) {
	return FetchMetrics(ctx, c.httpClient, url)
}

// FetchMetrics fetches one snapshot from the metrics agent at url using h.
// A non-2xx answer yields a *StatusError.
func FetchMetrics(ctx context.Context, h *http.Client, url string) (*models.MetricsSnapshot, error) {
	var snap models.MetricsSnapshot
	if err := getJSON(ctx, h, url, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func getJSON(ctx context.Context, h *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
