package probe

import (
	"context"
	"net/http"
	"time"

	"evalgo.org/fleetstatus/models"
	"evalgo.org/fleetstatus/pkg/fleetstatus/client"
)

// DefaultFetchTimeout bounds a single metrics agent request.
const DefaultFetchTimeout = 5 * time.Second

// Fetcher retrieves a metrics snapshot from a host's agent.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.MetricsSnapshot, error)
}

// HTTPFetcher fetches snapshots over HTTP. A non-2xx answer is reported as
// a *client.StatusError.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFetcher returns a fetcher whose requests are bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*models.MetricsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return client.FetchMetrics(ctx, f.client, url)
}
