// Package lyrics searches lyrics sites through an ordered provider chain.
package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// commonAcceptHeader is the accept header used for all HTTP requests.
	commonAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// defaultHTTPTimeout is the default timeout for HTTP requests.
	defaultHTTPTimeout = 10 * time.Second
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 3
	// maxPageReadSize limits how much of a lyrics page is read.
	maxPageReadSize = 2 << 20
)

var (
	// ErrNotFound is returned by a provider that has no match for the song.
	// Transport failures are returned as ordinary errors.
	ErrNotFound = errors.New("lyrics not found")
	// ErrTooManyRedirects is returned when too many redirects are encountered.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Provider is one lyrics source in the chain.
type Provider interface {
	// Name identifies the provider in statuses, logs, and metrics.
	Name() string
	// Available reports whether the provider can run with the current
	// configuration. Unavailable providers are skipped without an attempt.
	Available() bool
	// Search returns the lyrics text, ErrNotFound when the provider has no
	// match, or a transport error.
	Search(ctx context.Context, title, artist string) (string, error)
}

// newHTTPClient creates a new HTTP client with standard settings and redirect validation.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// fetchDocument fetches a page with browser headers and parses it. A 404 maps
// to ErrNotFound so callers can treat a missing page as a miss.
func fetchDocument(ctx context.Context, client *http.Client, pageURL, serviceName string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Set realistic browser headers.
	req.Header.Set("User-Agent", commonUserAgent)
	req.Header.Set("Accept", commonAcceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", serviceName, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageReadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s page: %w", serviceName, err)
	}
	return doc, nil
}

// readLimitedBody reads a response body with the standard size cap.
func readLimitedBody(resp *http.Response) ([]byte, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxPageReadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
