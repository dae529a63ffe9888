package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearXNGProvider queries a SearXNG instance through its JSON API.
type SearXNGProvider struct {
	baseURL    string
	httpClient *http.Client
}

// SearXNGConfig configures the SearXNG provider.
type SearXNGConfig struct {
	// URL is the root URL of the instance (e.g., "http://localhost:8080").
	URL string

	// Timeout bounds one search request.
	Timeout time.Duration
}

// NewSearXNGProvider creates a SearXNG provider.
func NewSearXNGProvider(config SearXNGConfig) (*SearXNGProvider, error) {
	if config.URL == "" {
		return nil, ErrNoEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &SearXNGProvider{
		baseURL:    strings.TrimRight(config.URL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns the provider name.
func (p *SearXNGProvider) Name() string {
	return "searxng"
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Search executes a query.
func (p *SearXNGProvider) Search(ctx context.Context, query string, numResults int) ([]SearchItem, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
	}
	reqURL := p.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("searxng: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("searxng: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("searxng: decode response: %w", err)
	}

	items := make([]SearchItem, 0, min(len(sr.Results), max(numResults, 0)))
	for _, r := range sr.Results {
		if numResults > 0 && len(items) >= numResults {
			break
		}
		items = append(items, SearchItem{Title: r.Title, URL: r.URL, Description: r.Content})
	}
	return items, nil
}
