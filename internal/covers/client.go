// Package covers looks up book cover images on Open Library.
package covers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cozyshelfapp/shelf-server/internal/logger"
)

const (
	defaultSearchBaseURL = "https://openlibrary.org"
	defaultCoversBaseURL = "https://covers.openlibrary.org"
)

// Client queries the Open Library search API for cover images.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *logger.Logger

	searchBaseURL string
	coversBaseURL string
}

// NewClient creates an Open Library client. Rate limited to one request
// per second, which keeps a busy shelf well inside Open Library's
// courtesy limits.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter:   rate.NewLimiter(rate.Every(time.Second), 3),
		logger:        log,
		searchBaseURL: defaultSearchBaseURL,
		coversBaseURL: defaultCoversBaseURL,
	}
}

// WithBaseURLs overrides the API endpoints. For tests.
func (c *Client) WithBaseURLs(search, covers string) *Client {
	c.searchBaseURL = search
	c.coversBaseURL = covers
	return c
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
