package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"flex_reviews/internal/adapters/observability"
)

// placeholder is an inline SVG data URI served whenever the lookup cannot
// produce a real photo; callers always get a renderable URL.
const placeholder = `data:image/svg+xml;utf8,%3Csvg xmlns='http://www.w3.org/2000/svg' width='1200' height='800'%3E%3Crect width='100%25' height='100%25' fill='%23e5e7eb'/%3E%3Ctext x='50%25' y='50%25' dominant-baseline='middle' text-anchor='middle' fill='%239ca3af' font-size='36'%3ENo Image%3C/text%3E%3C/svg%3E`

type Client struct {
	base string
	key  string
	hc   *http.Client
}

func New(base, key string, timeout time.Duration) *Client {
	if base == "" {
		base = "https://api.unsplash.com"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{base: base, key: key, hc: &http.Client{Timeout: timeout}}
}

// LookupURL returns one photo URL for the query, or the placeholder when
// no key is configured or the lookup fails. Best-effort only.
func (c *Client) LookupURL(ctx context.Context, query string) string {
	if query == "" {
		query = "house"
	}
	if c.key == "" {
		return placeholder
	}

	u := fmt.Sprintf("%s/search/photos?query=%s&per_page=1", c.base, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return placeholder
	}
	req.Header.Set("Authorization", "Client-ID "+c.key)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("unsplash", "search", 0, time.Since(start))
		return placeholder
	}
	defer resp.Body.Close()
	observability.ObserveExternal("unsplash", "search", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return placeholder
	}

	var out struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
				Small   string `json:"small"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Results) == 0 {
		return placeholder
	}
	if u := out.Results[0].URLs.Regular; u != "" {
		return u
	}
	if u := out.Results[0].URLs.Small; u != "" {
		return u
	}
	return placeholder
}
