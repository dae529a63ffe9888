package search

import "errors"

var (
	// ErrNilProvider indicates the pack was built without a provider.
	ErrNilProvider = errors.New("search provider is required")

	// ErrNoEndpoint indicates a remote provider was configured without a URL.
	ErrNoEndpoint = errors.New("search endpoint URL is required")
)
