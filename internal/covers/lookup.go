package covers

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// searchResponse is the subset of the Open Library search payload we read.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Title   string   `json:"title"`
	CoverID int64    `json:"cover_i"`
	ISBNs   []string `json:"isbn"`
}

// Lookup searches Open Library by title and returns the best cover image
// URL, or "" when no cover can be found. Lookup failures are logged and
// swallowed: a cover is decoration, never worth failing a book write over.
func (c *Client) Lookup(ctx context.Context, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	coverURL, err := c.lookup(ctx, title)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("cover lookup failed", "title", title, "error", err)
		}
		return ""
	}
	return coverURL
}

func (c *Client) lookup(ctx context.Context, title string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", "1")
	searchURL := c.searchBaseURL + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(searchResp.Docs) == 0 {
		return "", nil
	}

	d := &searchResp.Docs[0]
	if d.CoverID > 0 {
		return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversBaseURL, d.CoverID), nil
	}
	if len(d.ISBNs) > 0 && d.ISBNs[0] != "" {
		return fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversBaseURL, d.ISBNs[0]), nil
	}
	return "", nil
}
