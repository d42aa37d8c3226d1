package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/lifespan/internal/model"
	"github.com/ppiankov/lifespan/internal/ratelimit"
	"github.com/ppiankov/lifespan/internal/util"
)

const fetchMaxRetries = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

var (
	errRobotsDisallowed = errors.New("disallowed by robots.txt")
	errInvalidLocator   = errors.New("invalid locator")
	errBodyTooLarge     = errors.New("response body too large")
)

// Fetcher fetches HTML content from URLs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *ratelimit.Limiter
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via --insecure
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// WithRobots makes the fetcher honor robots.txt, including Crawl-delay
func (f *Fetcher) WithRobots(checker *util.RobotsChecker) *Fetcher {
	f.robots = checker
	return f
}

// WithLimiter paces requests per host
func (f *Fetcher) WithLimiter(limiter *ratelimit.Limiter) *Fetcher {
	f.limiter = limiter
	return f
}

// Client returns the underlying HTTP client
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchResult contains the fetched HTML and metadata
type FetchResult struct {
	HTML     string          `json:"html"`
	Meta     model.FetchMeta `json:"meta"`
	Subject  string          `json:"subject"`
	FinalURL string          `json:"final_url"`
}

// Fetch retrieves HTML content from the given URL. Errors are *model.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	fail := func(status int, err error) error {
		return &model.FetchError{URL: rawURL, StatusCode: status, Err: err}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fail(0, fmt.Errorf("%w: %v", errInvalidLocator, err))
		}
		if !allowed {
			return nil, fail(0, errRobotsDisallowed)
		}
		if f.limiter != nil && delay > 0 {
			if u, err := url.Parse(rawURL); err == nil {
				f.limiter.SetCrawlDelay(u.Host, delay)
			}
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fail(0, fmt.Errorf("rate limit: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("%w: create request: %v", errInvalidLocator, err))
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	// Store selected headers
	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	// Read one byte past the limit so an oversized page fails instead of
	// yielding a truncated table
	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fail(resp.StatusCode, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, f.maxBytes))
	}

	finalURL := resp.Request.URL.String()

	return &FetchResult{
		HTML:     string(body),
		Meta:     meta,
		Subject:  extractSubject(finalURL),
		FinalURL: finalURL,
	}, nil
}

// FetchWithRetry retries transient failures (5xx, 429, connection errors)
// with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error

	for attempt := 1; attempt <= fetchMaxRetries; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == fetchMaxRetries {
			break
		}
		if ctx.Err() != nil {
			break
		}
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}

	return nil, lastErr
}

// isRetryableFetchError reports whether another attempt may succeed
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, errRobotsDisallowed) || errors.Is(err, errInvalidLocator) || errors.Is(err, errBodyTooLarge) {
		return false
	}

	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}

	switch {
	case fetchErr.StatusCode == http.StatusTooManyRequests:
		return true
	case fetchErr.StatusCode >= 500:
		return true
	case fetchErr.StatusCode != 0:
		return false
	}

	// No response: transport failures are worth another try
	var urlErr *url.Error
	return errors.As(fetchErr.Err, &urlErr)
}

// extractSubject extracts a human-readable subject from the URL
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	// Extract last path segment
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}

	// De-slugify: replace underscores with spaces
	last = strings.ReplaceAll(last, "_", " ")

	// Remove file extensions
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}
