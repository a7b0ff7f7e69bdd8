// internal/metadata/fetch.go
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/clipsense/clipsense/pkg/types"
)

// Fetcher configuration constants
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultUserAgent    = "ClipSense/1.0 (+https://github.com/clipsense/clipsense)"

	// maxBodyBytes bounds how much of a page is read for metadata parsing.
	// Embedded metadata lives in <head>, so 2 MiB is generous.
	maxBodyBytes = 2 << 20
)

// Fetcher retrieves pages and API payloads with a shared, bounded HTTP client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher with connection pooling and the default
// timeout. The per-call context still bounds each request.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: DefaultUserAgent,
	}
}

// Get performs a GET request and returns the body, bounded to maxBodyBytes.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return body, nil
}

// Target carries everything the extraction chain knows about one URL. The
// page document is fetched at most once and shared by the document-based
// steps; the fetch outcome, success or failure, is memoized.
type Target struct {
	URL        string
	Platform   types.Platform
	PlatformID string

	fetcher *Fetcher

	fetched  bool
	document *goquery.Document
	fetchErr error
}

// NewTarget wraps a URL for extraction.
func NewTarget(url string, platform types.Platform, platformID string, fetcher *Fetcher) *Target {
	return &Target{
		URL:        url,
		Platform:   platform,
		PlatformID: platformID,
		fetcher:    fetcher,
	}
}

// Document fetches and parses the target page on first use. Later calls
// return the memoized document or the memoized failure; the chain never
// re-fetches a page that already failed.
func (t *Target) Document(ctx context.Context) (*goquery.Document, error) {
	if t.fetched {
		return t.document, t.fetchErr
	}
	t.fetched = true

	body, err := t.fetcher.Get(ctx, t.URL)
	if err != nil {
		t.fetchErr = err
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		t.fetchErr = fmt.Errorf("failed to parse HTML: %w", err)
		return nil, t.fetchErr
	}

	t.document = doc
	return doc, nil
}
