// Package search provides the web_search tool over pluggable search backends.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/domain/pack"
	"github.com/felixgeelhaar/nudge/domain/tool"
)

// WebSearchTool is the name of the search tool.
const WebSearchTool = "web_search"

// DefaultNumResults is used when neither the call nor the pack sets a count.
const DefaultNumResults = 10

// Config configures the search pack.
type Config struct {
	// Provider is the search backend (required).
	Provider Provider

	// Timeout bounds one search.
	Timeout time.Duration

	// NumResults is the default result count.
	NumResults int

	// Resolver, when set, replaces each result URL with its redirect target.
	Resolver *RedirectResolver
}

// Option configures the search pack.
type Option func(*Config)

// WithTimeout sets the search timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithNumResults sets the default result count.
func WithNumResults(n int) Option {
	return func(c *Config) {
		c.NumResults = n
	}
}

// WithRedirectResolver enables redirect resolution of result URLs.
func WithRedirectResolver(r *RedirectResolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// New creates the search pack.
func New(provider Provider, opts ...Option) (*pack.Pack, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	cfg := Config{
		Provider:   provider,
		Timeout:    30 * time.Second,
		NumResults: DefaultNumResults,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = DefaultNumResults
	}

	return pack.NewBuilder("search").
		WithDescription(fmt.Sprintf("Web search (%s)", provider.Name())).
		WithVersion("1.0.0").
		AddTools(webSearchTool(&cfg)).
		Build(), nil
}

const webSearchDescription = `Perform a web search and return a list of relevant results.
Use this tool when you need current information from the internet.
Each result contains a title, a URL and a short description.`

var webSearchParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "description": "The search query to submit."
    },
    "num_results": {
      "type": "integer",
      "description": "The number of results to return.",
      "default": 10
    }
  },
  "required": ["query"]
}`)

// webSearchInput is the input for the web_search tool.
type webSearchInput struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results,omitempty"`
}

func webSearchTool(cfg *Config) tool.Tool {
	return tool.NewBuilder(WebSearchTool).
		WithDescription(webSearchDescription).
		WithParameters(webSearchParameters).
		ReadOnly().
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var in webSearchInput
			if err := json.Unmarshal(input, &in); err != nil {
				return tool.Result{}, fmt.Errorf("%w: %w", tool.ErrInvalidArguments, err)
			}
			in.Query = strings.TrimSpace(in.Query)
			if in.Query == "" {
				return tool.Result{}, fmt.Errorf("%w: query is required", tool.ErrInvalidArguments)
			}

			n := in.NumResults
			if n <= 0 {
				n = cfg.NumResults
			}

			ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			items, err := cfg.Provider.Search(ctx, in.Query, n)
			if err != nil {
				return tool.Result{}, fmt.Errorf("search failed: %w", err)
			}

			if cfg.Resolver != nil {
				for i := range items {
					items[i].URL, _ = cfg.Resolver.Resolve(ctx, items[i].URL)
				}
			}

			return tool.NewTextResult(FormatResults(in.Query, items)), nil
		}).
		MustBuild()
}

// FormatResults renders items as a numbered list.
func FormatResults(query string, items []SearchItem) string {
	if len(items) == 0 {
		return "No results found for: " + query
	}

	var sb strings.Builder
	sb.WriteString("Search results for: " + query + "\n")
	for i, item := range items {
		sb.WriteString("\n" + strconv.Itoa(i+1) + ". " + item.String())
		if item.Description != "" {
			sb.WriteString("\n   " + item.Description)
		}
	}
	return sb.String()
}
