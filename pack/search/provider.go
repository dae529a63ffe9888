package search

import "context"

// SearchItem is a single web search result.
type SearchItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// String renders the item as "title - url".
func (i SearchItem) String() string {
	return i.Title + " - " + i.URL
}

// Provider defines the interface for web search backends.
type Provider interface {
	// Name returns the provider name (e.g., "searxng", "memory").
	Name() string

	// Search returns at most numResults items for query.
	Search(ctx context.Context, query string, numResults int) ([]SearchItem, error)
}
