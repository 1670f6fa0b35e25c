package lyrics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lyricsense/internal/core"
	"lyricsense/internal/youtube"
)

const youtubeSearchName = "youtube-search"

// VideoSearcher finds the first video result for a free-text query.
// Implemented by the browser session.
type VideoSearcher interface {
	SearchFirstVideoID(ctx context.Context, query string) (string, error)
}

// YouTubeSearchProvider searches for a lyric video and reads its captions.
// Last in the chain: it only joins when browser automation is enabled, and
// caption text is noisier than a lyrics page.
type YouTubeSearchProvider struct {
	searcher VideoSearcher
	captions core.CaptionSource
	logger   *zap.Logger
}

// NewYouTubeSearchProvider creates the caption-search provider. searcher may
// be nil when browser automation is disabled, which makes the provider
// report itself unavailable.
func NewYouTubeSearchProvider(searcher VideoSearcher, captions core.CaptionSource, logger *zap.Logger) *YouTubeSearchProvider {
	return &YouTubeSearchProvider{
		searcher: searcher,
		captions: captions,
		logger:   logger,
	}
}

// Name implements Provider.
func (y *YouTubeSearchProvider) Name() string { return youtubeSearchName }

// Available implements Provider.
func (y *YouTubeSearchProvider) Available() bool { return y.searcher != nil && y.captions != nil }

// Search implements Provider.
func (y *YouTubeSearchProvider) Search(ctx context.Context, title, artist string) (string, error) {
	var parts []string
	if artist != "" {
		parts = append(parts, artist)
	}
	parts = append(parts, title, "lyrics")
	query := strings.Join(parts, " ")

	videoID, err := y.searcher.SearchFirstVideoID(ctx, query)
	if err != nil {
		return "", fmt.Errorf("video search failed: %w", err)
	}
	if videoID == "" {
		return "", ErrNotFound
	}

	y.logger.Debug("Lyric video located",
		zap.String("query", query),
		zap.String("videoID", videoID),
	)

	segments, err := y.captions.FetchTranscript(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoCaptions) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("caption fetch failed: %w", err)
	}

	text := core.JoinSegments(segments)
	if text == "" {
		return "", ErrNotFound
	}
	return text, nil
}
