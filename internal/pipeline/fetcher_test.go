package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/lifespan/internal/model"
	"github.com/ppiankov/lifespan/internal/util"
)

func noSleep(t *testing.T) {
	t.Helper()
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = origSleep })
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected User-Agent test-agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("ETag", `"abc"`)
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/wiki/List_of_things")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.HTML != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if result.Subject != "List of things" {
		t.Errorf("Expected subject 'List of things', got %q", result.Subject)
	}
	if result.Meta.StatusCode != 200 || result.Meta.ETag != `"abc"` {
		t.Errorf("Unexpected meta: %+v", result.Meta)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.HTML != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if !errors.Is(err, model.ErrFetch) {
		t.Errorf("Expected ErrFetch, got %v", err)
	}

	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected FetchError with status 404, got %v", err)
	}
	// 404 is not retryable, so should fail immediately
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if result.HTML != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetch_MaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "0123456789")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 10, false, "", "", "")
	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected body at the limit to be accepted, got %v", err)
	}
	if result.HTML != "0123456789" {
		t.Errorf("Expected full body, got %q", result.HTML)
	}
}

func TestFetch_OversizedBodyFails(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = fmt.Fprint(w, "0123456789")
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 4, false, "", "", "")
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("Expected error for oversized body, got %q", result.HTML)
	}
	if !errors.Is(err, model.ErrFetch) || !errors.Is(err, errBodyTooLarge) {
		t.Errorf("Expected body-too-large fetch error, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected no retry, got %d attempts", attempts.Load())
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	var pageHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /wiki/\n")
			return
		}
		pageHits.Add(1)
		_, _ = fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	fetcher.WithRobots(util.NewRobotsChecker(server.Client(), "test-agent"))

	_, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/wiki/Page")
	if !errors.Is(err, model.ErrFetch) || !errors.Is(err, errRobotsDisallowed) {
		t.Errorf("Expected robots disallow fetch error, got %v", err)
	}
	if pageHits.Load() != 0 {
		t.Errorf("Expected page never requested, got %d hits", pageHits.Load())
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	transport := &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"503", &model.FetchError{StatusCode: 503, Err: errors.New("unexpected status")}, true},
		{"500", &model.FetchError{StatusCode: 500, Err: errors.New("unexpected status")}, true},
		{"502", &model.FetchError{StatusCode: 502, Err: errors.New("unexpected status")}, true},
		{"429", &model.FetchError{StatusCode: 429, Err: errors.New("unexpected status")}, true},
		{"404", &model.FetchError{StatusCode: 404, Err: errors.New("unexpected status")}, false},
		{"403", &model.FetchError{StatusCode: 403, Err: errors.New("unexpected status")}, false},
		{"connection refused", &model.FetchError{Err: transport}, true},
		{"invalid locator", &model.FetchError{Err: fmt.Errorf("%w: bad", errInvalidLocator)}, false},
		{"robots", &model.FetchError{Err: errRobotsDisallowed}, false},
		{"canceled", &model.FetchError{Err: &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}}, false},
		{"read body", &model.FetchError{StatusCode: 200, Err: errors.New("read body: unexpected EOF")}, false},
		{"body too large", &model.FetchError{StatusCode: 200, Err: errBodyTooLarge}, false},
		{"plain error", errors.New("something"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isRetryableFetchError(tt.err)
			if got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestIsRetryableFetchError_Nil(t *testing.T) {
	if isRetryableFetchError(nil) {
		t.Error("Expected nil error to not be retryable")
	}
}

func TestExtractSubject(t *testing.T) {
	tests := map[string]string{
		"https://en.wikipedia.org/wiki/List_of_presidents_of_the_United_States": "List of presidents of the United States",
		"https://example.com/":                   "example.com",
		"https://example.com/data/table.html":    "table",
		"https://example.com/wiki/Caf%C3%A9_list": "Café list",
	}
	for in, want := range tests {
		if got := extractSubject(in); got != want {
			t.Errorf("extractSubject(%q) = %q, want %q", in, got, want)
		}
	}
}
