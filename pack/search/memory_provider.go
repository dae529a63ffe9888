package search

import (
	"context"
	"strings"
	"sync"
)

// MemoryProvider is an in-memory implementation of Provider for testing
// and offline runs.
type MemoryProvider struct {
	mu    sync.RWMutex
	items []SearchItem
}

// NewMemoryProvider creates a provider holding items.
func NewMemoryProvider(items ...SearchItem) *MemoryProvider {
	return &MemoryProvider{items: append([]SearchItem(nil), items...)}
}

// Name returns the provider name.
func (p *MemoryProvider) Name() string {
	return "memory"
}

// Add appends items to the index.
func (p *MemoryProvider) Add(items ...SearchItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, items...)
}

// Search returns items whose title or description contains every query
// word, case-insensitively, in insertion order.
func (p *MemoryProvider) Search(ctx context.Context, query string, numResults int) ([]SearchItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))

	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []SearchItem
	for _, item := range p.items {
		if numResults > 0 && len(out) >= numResults {
			break
		}
		text := strings.ToLower(item.Title + " " + item.Description)
		matched := true
		for _, w := range words {
			if !strings.Contains(text, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, item)
		}
	}
	return out, nil
}
