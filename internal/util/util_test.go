package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"Lifespan/0.1 (+https://github.com/ppiankov/lifespan)": "Lifespan",
		"curl":  "curl",
		"":      "",
		"A/1 B": "A",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRobotsChecker_DisallowAndCrawlDelay(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: Lifespan\nDisallow: /private\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Lifespan/0.1")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/wiki/List")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !allowed {
		t.Error("Expected /wiki/List to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/page")
	if allowed {
		t.Error("Expected /private/page to be disallowed")
	}

	if robotsHits.Load() != 1 {
		t.Errorf("Expected robots.txt fetched once, got %d", robotsHits.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Lifespan/0.1")
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("Expected allowed with no error, got allowed=%v err=%v", allowed, err)
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "internal.example")

	req, _ := http.NewRequest(http.MethodGet, "https://en.wikipedia.org/wiki/X", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("Expected proxy.local:3128 for https request, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://internal.example/page", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if u != nil {
		t.Errorf("Expected NO_PROXY host to bypass proxy, got %v", u)
	}
}
