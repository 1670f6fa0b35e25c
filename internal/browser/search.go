package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"lyricsense/pkg/songref"
)

const (
	// searchEndpoint is the YouTube search results page base URL.
	searchEndpoint = "https://www.youtube.com/results?search_query="
	// searchResultSelector matches the title link of a search result.
	searchResultSelector = `a#video-title`
)

// ErrNoSearchResults reports a search page without any video result.
var ErrNoSearchResults = errors.New("no video results for query")

// SearchFirstVideoID opens a YouTube search results page and returns the
// video ID of the first result.
func (s *Session) SearchFirstVideoID(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("empty search query")
	}

	var href string
	var found bool
	err := s.run(ctx,
		chromedp.Navigate(searchURL(query)),
		chromedp.WaitReady(searchResultSelector, chromedp.ByQuery),
		chromedp.AttributeValue(searchResultSelector, "href", &href, &found, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("search page scrape failed: %w", err)
	}
	if !found || href == "" {
		return "", ErrNoSearchResults
	}

	videoID := videoIDFromHref(href)
	if videoID == "" {
		return "", fmt.Errorf("result link %q carries no video ID", href)
	}

	s.logger.Debug("Search result picked",
		zap.String("query", query),
		zap.String("videoID", videoID),
	)
	return videoID, nil
}

func searchURL(query string) string {
	return searchEndpoint + url.QueryEscape(query)
}

// videoIDFromHref resolves a result link to a video ID. Result hrefs come
// back relative to the site root.
func videoIDFromHref(href string) string {
	if strings.HasPrefix(href, "/") {
		href = "https://www.youtube.com" + href
	}
	return songref.ExtractVideoID(href)
}
