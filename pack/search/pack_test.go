package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/pack/search"
)

func TestSearchItem_String(t *testing.T) {
	t.Parallel()

	item := search.SearchItem{Title: "Go", URL: "https://go.dev", Description: "The Go language"}
	if got := item.String(); got != "Go - https://go.dev" {
		t.Errorf("String() = %q", got)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := search.New(nil); !errors.Is(err, search.ErrNilProvider) {
		t.Errorf("New(nil) error = %v, want ErrNilProvider", err)
	}

	p, err := search.New(search.NewMemoryProvider())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tl, ok := p.GetTool(search.WebSearchTool)
	if !ok {
		t.Fatal("web_search tool missing")
	}
	if !tl.Annotations().CanRetry() {
		t.Error("web_search should be retryable")
	}
}

func TestWebSearch(t *testing.T) {
	t.Parallel()

	provider := search.NewMemoryProvider(
		search.SearchItem{Title: "Go release notes", URL: "https://go.dev/doc", Description: "Latest Go release"},
		search.SearchItem{Title: "Rust book", URL: "https://rust-lang.org", Description: "Learn Rust"},
		search.SearchItem{Title: "Go tour", URL: "https://go.dev/tour", Description: "Interactive go tour"},
	)
	p, _ := search.New(provider, search.WithNumResults(5))
	tl, _ := p.GetTool(search.WebSearchTool)

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
		wantErr  error
	}{
		{
			name:     "matches",
			input:    `{"query":"go"}`,
			contains: []string{"1. Go release notes - https://go.dev/doc", "2. Go tour - https://go.dev/tour", "   Latest Go release"},
			excludes: []string{"Rust"},
		},
		{
			name:     "num_results caps",
			input:    `{"query":"go","num_results":1}`,
			contains: []string{"1. Go release notes"},
			excludes: []string{"Go tour"},
		},
		{name: "no results", input: `{"query":"haskell"}`, contains: []string{"No results found for: haskell"}},
		{name: "missing query", input: `{"query":"  "}`, wantErr: tool.ErrInvalidArguments},
		{name: "malformed", input: `{`, wantErr: tool.ErrInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := tl.Execute(context.Background(), json.RawMessage(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			out := result.Observation(0)
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestSearXNGProvider(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("q") != "golang" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"A","url":"https://a.example","content":"first"},
			{"title":"B","url":"https://b.example","content":"second"},
			{"title":"C","url":"https://c.example","content":"third"}
		]}`))
	}))
	defer server.Close()

	provider, err := search.NewSearXNGProvider(search.SearXNGConfig{URL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewSearXNGProvider() error = %v", err)
	}
	if provider.Name() != "searxng" {
		t.Errorf("Name() = %s", provider.Name())
	}

	items, err := provider.Search(context.Background(), "golang", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[1] != (search.SearchItem{Title: "B", URL: "https://b.example", Description: "second"}) {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestSearXNGProvider_Errors(t *testing.T) {
	t.Parallel()

	if _, err := search.NewSearXNGProvider(search.SearXNGConfig{}); !errors.Is(err, search.ErrNoEndpoint) {
		t.Errorf("empty URL error = %v, want ErrNoEndpoint", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, _ := search.NewSearXNGProvider(search.SearXNGConfig{URL: server.URL})
	_, err := provider.Search(context.Background(), "x", 5)
	if err == nil || !strings.Contains(err.Error(), "HTTP 429") {
		t.Errorf("Search() error = %v, want HTTP 429", err)
	}
}

func TestRedirectResolver(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/chain/", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/chain/"))
		if err != nil || n <= 0 {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/chain/%d", n-1), http.StatusFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resolver := search.NewRedirectResolver(0, time.Second)

	tests := []struct {
		name           string
		url            string
		want           string
		wantRedirected bool
	}{
		{"redirected", server.URL + "/hop", server.URL + "/final", true},
		{"direct", server.URL + "/final", server.URL + "/final", false},
		{"five redirects followed", server.URL + "/chain/4", server.URL + "/final", true},
		{"sixth redirect falls back", server.URL + "/chain/5", server.URL + "/chain/5", false},
		{"too many redirects falls back", server.URL + "/loop", server.URL + "/loop", false},
		{"invalid url falls back", "://bad", "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, redirected := resolver.Resolve(context.Background(), tt.url)
			if got != tt.want || redirected != tt.wantRedirected {
				t.Errorf("Resolve() = (%s, %v), want (%s, %v)", got, redirected, tt.want, tt.wantRedirected)
			}
		})
	}
}

func TestWebSearch_ResolvesRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/r", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusMovedPermanently)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := search.NewMemoryProvider(search.SearchItem{Title: "Tracked link", URL: server.URL + "/r"})
	p, _ := search.New(provider, search.WithRedirectResolver(search.NewRedirectResolver(0, 0)))
	tl, _ := p.GetTool(search.WebSearchTool)

	result, err := tl.Execute(context.Background(), json.RawMessage(`{"query":"tracked"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out := result.Observation(0); !strings.Contains(out, server.URL+"/landing") {
		t.Errorf("output should carry the resolved URL:\n%s", out)
	}
}
