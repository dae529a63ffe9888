package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/nudge/infrastructure/logging"
)

// Redirect resolution defaults.
const (
	DefaultMaxRedirects    = 5
	DefaultRedirectTimeout = 10 * time.Second
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var errTooManyRedirects = errors.New("too many redirects")

// RedirectResolver follows redirects with HEAD requests to find the final
// URL of a search result.
type RedirectResolver struct {
	client *http.Client
}

// NewRedirectResolver creates a resolver. Zero arguments select the defaults.
func NewRedirectResolver(maxRedirects int, timeout time.Duration) *RedirectResolver {
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	if timeout <= 0 {
		timeout = DefaultRedirectTimeout
	}
	return &RedirectResolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

// Resolve returns the final URL and whether a redirect happened. Any
// failure yields the original URL.
func (r *RedirectResolver) Resolve(ctx context.Context, rawURL string) (string, bool) {
	final, err := r.resolve(ctx, rawURL)
	if err != nil {
		logging.Warn().
			Add(logging.Component("redirect")).
			Add(logging.Str("url", rawURL)).
			Add(logging.ErrorField(err)).
			Msg("redirect resolution failed")
		return rawURL, false
	}
	if final != rawURL {
		logging.Debug().
			Add(logging.Component("redirect")).
			Add(logging.Str("url", rawURL)).
			Add(logging.Str("final_url", final)).
			Msg("url redirected")
		return final, true
	}
	return rawURL, false
}

func (r *RedirectResolver) resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
