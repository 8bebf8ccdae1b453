// Package searchclient talks to the news-scraper backend over HTTP.
package searchclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/DeafMist/news-scraper/internal/models"
)

var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrBackend means the backend answered but the search failed.
	ErrBackend = errors.New("backend search failed")
)

const searchPath = "/api/search"

// Client posts search requests to the backend.
type Client struct {
	http *resty.Client
}

// New builds a Client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// Search sends req and decodes the results.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if req.Domains == nil {
		req.Domains = []string{}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(searchPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode(), snippet(resp.Body()))
	}

	var out models.SearchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrBackend, err)
	}
	return &out, nil
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
